package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rift/internal/backend/x86"
	"rift/internal/diag"
	"rift/internal/mir"
	"rift/internal/observ"
	"rift/internal/runtimeglue"
)

var emitCmd = &cobra.Command{
	Use:   "emit-asm <file.mir>",
	Short: "Lower a single module to assembly on stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmit,
}

func init() {
	emitCmd.Flags().Bool("degrade-missing", false, "lower unknown names to zero with a warning instead of failing")
	emitCmd.Flags().Bool("no-glue", false, "omit the runtime glue appended after module code")
}

func runEmit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !strings.HasSuffix(path, ".mir") {
		return fmt.Errorf("expected a .mir file, got %q", path)
	}

	timer := observ.NewTimer()

	phase := timer.Begin("decode")
	mod, err := mir.ReadModuleFile(path)
	if err != nil {
		return err
	}
	timer.End(phase, path)

	phase = timer.Begin("validate")
	if err := mir.Validate(mod); err != nil {
		return err
	}
	timer.End(phase, "")

	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
	degrade, _ := cmd.Flags().GetBool("degrade-missing")
	noGlue, _ := cmd.Flags().GetBool("no-glue")

	opts := x86.Options{DegradeMissing: degrade}
	if !noGlue {
		opts.AppendText = []string{runtimeglue.EntryText(), runtimeglue.StubText()}
	}

	phase = timer.Begin("lower")
	bag := diag.NewBag(maxDiags)
	asm, err := x86.EmitModule(mod, opts, diag.BagReporter{Bag: bag})
	timer.End(phase, fmt.Sprintf("%d func(s)", len(mod.Funcs)))

	if bag.Len() > 0 {
		diag.Render(cmd.ErrOrStderr(), bag.Sorted())
	}
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), asm)
	if timings, _ := cmd.Flags().GetBool("timings"); timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}
