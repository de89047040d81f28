package buildpipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rift/internal/backend/x86"
	"rift/internal/diag"
	"rift/internal/mir"
	"rift/internal/runtimeglue"
)

// CompileOptions configures one file's trip through the pipeline.
type CompileOptions struct {
	// OutDir receives the .s listing; empty keeps it next to the input.
	OutDir string
	// DegradeMissing forwards the compat flag to the backend.
	DegradeMissing bool
	// MaxDiagnostics bounds the per-file diagnostic bag.
	MaxDiagnostics int
	// Progress receives stage events; nil discards them.
	Progress ProgressSink
}

// FileResult is the outcome of compiling one .mir file.
type FileResult struct {
	Path    string
	OutPath string
	Bag     *diag.Bag
	Err     error
	Timings Timings
}

// Failed reports whether the file did not produce output.
func (r *FileResult) Failed() bool { return r.Err != nil }

// OutputPath maps an input .mir path to its .s listing path.
func OutputPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), ".mir") + ".s"
	if outDir == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(outDir, base)
}

// CompileFile runs one module through load, validate, lower and write.
// Every stage reports progress; the first failing stage stops the file.
func CompileFile(path string, opts CompileOptions) FileResult {
	sink := opts.Progress
	if sink == nil {
		sink = NopSink{}
	}
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 100
	}
	res := FileResult{
		Path:    path,
		OutPath: OutputPath(path, opts.OutDir),
		Bag:     diag.NewBag(maxDiag),
	}

	mod, err := runStage(&res, sink, StageLoad, func() (*mir.Module, error) {
		return mir.ReadModuleFile(path)
	})
	if err != nil {
		return res
	}

	if _, err := runStage(&res, sink, StageValidate, func() (struct{}, error) {
		return struct{}{}, mir.Validate(mod)
	}); err != nil {
		return res
	}

	asm, err := runStage(&res, sink, StageLower, func() (string, error) {
		return x86.EmitModule(mod, x86.Options{
			DegradeMissing: opts.DegradeMissing,
			AppendText:     []string{runtimeglue.EntryText(), runtimeglue.StubText()},
		}, diag.BagReporter{Bag: res.Bag})
	})
	if err != nil {
		return res
	}

	_, err = runStage(&res, sink, StageWrite, func() (struct{}, error) {
		if opts.OutDir != "" {
			if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
				return struct{}{}, fmt.Errorf("create output dir: %w", err)
			}
		}
		return struct{}{}, os.WriteFile(res.OutPath, []byte(asm), 0o644)
	})
	if err != nil {
		return res
	}

	sink.OnEvent(Event{File: path, Stage: StageWrite, Status: StatusDone,
		Elapsed: res.Timings.Sum(StageLoad, StageValidate, StageLower, StageWrite)})
	return res
}

// runStage wraps one stage with events and timing.
func runStage[T any](res *FileResult, sink ProgressSink, stage Stage, fn func() (T, error)) (T, error) {
	sink.OnEvent(Event{File: res.Path, Stage: stage, Status: StatusWorking})
	start := time.Now()
	out, err := fn()
	res.Timings.Add(stage, time.Since(start))
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", stage, err)
		sink.OnEvent(Event{File: res.Path, Stage: stage, Status: StatusError, Err: err})
	}
	return out, err
}
