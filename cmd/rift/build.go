package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rift/internal/buildpipeline"
	"rift/internal/diag"
	"rift/internal/driver"
	"rift/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [dir|file.mir]",
	Short: "Lower module files to assembly listings",
	Long: `Lower every .mir file in a directory (or a single file) to x86-64
assembly. Without an argument the project root from the nearest
rift.toml is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("output", "", "output directory for .s listings")
	buildCmd.Flags().Int("jobs", 0, "parallel lowering jobs (0 = one per CPU)")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().Bool("degrade-missing", false, "lower unknown names to zero with a warning instead of failing")
	buildCmd.Flags().Bool("no-cache", false, "ignore cached outputs")
}

func runBuild(cmd *cobra.Command, args []string) error {
	req, files, err := resolveBuildRequest(cmd, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to build")
		return nil
	}

	mode, err := readUIMode(mustString(cmd, "ui"))
	if err != nil {
		return err
	}

	var res driver.Result
	if shouldUseTUI(mode) {
		res, err = runBuildWithUI(cmd.Context(), "rift build", files, req)
	} else {
		res, err = driver.CompileAll(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	reportResults(cmd, &res, quiet)

	if timings, _ := cmd.Flags().GetBool("timings"); timings {
		printTimings(cmd, &res)
	}
	if res.Failed() {
		return fmt.Errorf("build failed")
	}
	return nil
}

// resolveBuildRequest combines the argument, the manifest and flags.
// Flags win over manifest values.
func resolveBuildRequest(cmd *cobra.Command, args []string) (*driver.Request, []string, error) {
	target := ""
	if len(args) == 1 {
		target = args[0]
	}

	var req *driver.Request
	var files []string

	switch {
	case target != "" && strings.HasSuffix(target, ".mir"):
		files = []string{target}
		req = &driver.Request{Files: files}
	case target != "":
		var err error
		files, err = project.ListModuleFiles(target)
		if err != nil {
			return nil, nil, err
		}
		req = &driver.Request{Files: files}
	default:
		manifest, ok, err := project.LoadManifest(".")
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, fmt.Errorf("no rift.toml found\nplease specify the module explicitly, e.g.:\n  rift build path/to/modules")
		}
		files, err = project.ListModuleFiles(manifest.Root)
		if err != nil {
			return nil, nil, err
		}
		req = driver.ManifestRequest(manifest, files)
	}

	if out := mustString(cmd, "output"); out != "" {
		req.OutDir = out
	}
	if req.OutDir == "" {
		req.OutDir = "build"
	}
	if jobs, _ := cmd.Flags().GetInt("jobs"); jobs > 0 {
		req.Jobs = jobs
	}
	if degrade, _ := cmd.Flags().GetBool("degrade-missing"); degrade {
		req.DegradeMissing = true
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		req.NoCache = true
	}
	req.MaxDiagnostics, _ = cmd.Flags().GetInt("max-diagnostics")
	return req, files, nil
}

func reportResults(cmd *cobra.Command, res *driver.Result, quiet bool) {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	built := 0
	for i := range res.Results {
		r := &res.Results[i]
		if r.Bag != nil && r.Bag.Len() > 0 {
			diag.Render(errOut, r.Bag.Sorted())
		}
		if r.Failed() {
			fmt.Fprintf(errOut, "%s: %v\n", r.Path, r.Err)
			continue
		}
		built++
		if !quiet {
			fmt.Fprintf(out, "%s -> %s\n", r.Path, r.OutPath)
		}
	}
	if !quiet {
		fmt.Fprintf(out, "built %d file(s)", built)
		if res.Skipped > 0 {
			fmt.Fprintf(out, ", %d up to date", res.Skipped)
		}
		fmt.Fprintln(out)
	}
}

func printTimings(cmd *cobra.Command, res *driver.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "timings:")
	stages := []buildpipeline.Stage{
		buildpipeline.StageLoad,
		buildpipeline.StageValidate,
		buildpipeline.StageLower,
		buildpipeline.StageWrite,
	}
	for _, stage := range stages {
		var total float64
		for i := range res.Results {
			total += res.Results[i].Timings.Duration(stage).Seconds() * 1000
		}
		fmt.Fprintf(out, "  %-10s %8.2f ms\n", stage, total)
	}
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
