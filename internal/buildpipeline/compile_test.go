package buildpipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rift/internal/mir"
)

func sampleModule() *mir.Module {
	return &mir.Module{
		Name: "demo",
		Funcs: []mir.Func{{
			Name:   "main",
			Result: mir.Type{Kind: mir.TypeInt},
			Blocks: []mir.Block{{ID: 0, Term: mir.Terminator{
				Kind:   mir.TermReturn,
				Return: mir.ReturnTerm{HasValue: true, Value: mir.ConstOperand(mir.IntConst(0))},
			}}},
		}},
	}
}

func TestCompileFileProducesListing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "demo.mir")
	if err := mir.WriteModuleFile(in, sampleModule()); err != nil {
		t.Fatalf("write module: %v", err)
	}

	events := make(chan Event, 64)
	res := CompileFile(in, CompileOptions{
		OutDir:   filepath.Join(dir, "out"),
		Progress: ChannelSink{Ch: events},
	})
	close(events)
	if res.Failed() {
		t.Fatalf("compile failed: %v", res.Err)
	}

	data, err := os.ReadFile(res.OutPath)
	if err != nil {
		t.Fatalf("read listing: %v", err)
	}
	asm := string(data)
	for _, want := range []string{".intel_syntax noprefix", "main:", "_start:", "rt_option_unwrap:"} {
		if !strings.Contains(asm, want) {
			t.Errorf("listing missing %q", want)
		}
	}

	var sawLower, sawDone bool
	for ev := range events {
		if ev.Stage == StageLower && ev.Status == StatusWorking {
			sawLower = true
		}
		if ev.Status == StatusDone {
			sawDone = true
		}
	}
	if !sawLower || !sawDone {
		t.Errorf("event stream incomplete: lower=%v done=%v", sawLower, sawDone)
	}

	if !res.Timings.Has(StageLower) {
		t.Error("no lower timing recorded")
	}
}

func TestCompileFileRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.mir")
	if err := os.WriteFile(in, []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}
	res := CompileFile(in, CompileOptions{OutDir: dir})
	if !res.Failed() {
		t.Fatal("garbage input compiled")
	}
	if !strings.Contains(res.Err.Error(), "load") {
		t.Errorf("err = %v, want load stage failure", res.Err)
	}
}

func TestOutputPath(t *testing.T) {
	if got := OutputPath("/x/a.mir", ""); got != "/x/a.s" {
		t.Errorf("OutputPath sibling = %q", got)
	}
	if got := OutputPath("/x/a.mir", "/out"); got != "/out/a.s" {
		t.Errorf("OutputPath outdir = %q", got)
	}
}
