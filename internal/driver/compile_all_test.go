package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rift/internal/mir"
)

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	mod := &mir.Module{
		Name: name,
		Funcs: []mir.Func{{
			Name:   "main",
			Result: mir.Type{Kind: mir.TypeInt},
			Blocks: []mir.Block{{ID: 0, Term: mir.Terminator{
				Kind:   mir.TermReturn,
				Return: mir.ReturnTerm{HasValue: true, Value: mir.ConstOperand(mir.IntConst(0))},
			}}},
		}},
	}
	path := filepath.Join(dir, name+".mir")
	if err := mir.WriteModuleFile(path, mod); err != nil {
		t.Fatalf("write module: %v", err)
	}
	return path
}

func TestCompileAllProducesEveryListing(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeSample(t, dir, "alpha"),
		writeSample(t, dir, "beta"),
		writeSample(t, dir, "gamma"),
	}
	out := filepath.Join(dir, "out")

	res, err := CompileAll(context.Background(), &Request{Files: files, OutDir: out, Jobs: 2})
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	if res.Failed() {
		t.Fatal("batch reported failure")
	}
	if len(res.Results) != len(files) {
		t.Fatalf("got %d results", len(res.Results))
	}
	for i, r := range res.Results {
		if r.Path != files[i] {
			t.Errorf("result %d out of order: %s", i, r.Path)
		}
		if _, err := os.Stat(r.OutPath); err != nil {
			t.Errorf("missing listing %s: %v", r.OutPath, err)
		}
	}
}

func TestCompileAllSkipsUnchangedInputs(t *testing.T) {
	dir := t.TempDir()
	files := []string{writeSample(t, dir, "alpha")}
	out := filepath.Join(dir, "out")
	req := &Request{Files: files, OutDir: out}

	first, err := CompileAll(context.Background(), req)
	if err != nil || first.Failed() {
		t.Fatalf("first run: err=%v failed=%v", err, first.Failed())
	}
	if first.Skipped != 0 {
		t.Fatalf("first run skipped %d", first.Skipped)
	}

	second, err := CompileAll(context.Background(), req)
	if err != nil || second.Failed() {
		t.Fatalf("second run: err=%v failed=%v", err, second.Failed())
	}
	if second.Skipped != 1 {
		t.Errorf("second run skipped %d, want 1", second.Skipped)
	}

	// Touching the input with new content invalidates the cache.
	writeChanged(t, files[0])
	third, err := CompileAll(context.Background(), req)
	if err != nil || third.Failed() {
		t.Fatalf("third run: err=%v failed=%v", err, third.Failed())
	}
	if third.Skipped != 0 {
		t.Errorf("third run skipped %d, want 0", third.Skipped)
	}
}

func writeChanged(t *testing.T, path string) {
	t.Helper()
	mod := &mir.Module{
		Name: "changed",
		Funcs: []mir.Func{{
			Name:   "main",
			Result: mir.Type{Kind: mir.TypeInt},
			Blocks: []mir.Block{{ID: 0,
				Stmts: []mir.Statement{{
					Dst: mir.LocalPlace("x"),
					Src: mir.RValue{Kind: mir.RValueUse, Use: mir.ConstOperand(mir.IntConst(7))},
				}},
				Term: mir.Terminator{
					Kind:   mir.TermReturn,
					Return: mir.ReturnTerm{HasValue: true, Value: mir.CopyOperand(mir.LocalPlace("x"))},
				},
			}},
		}},
	}
	if err := mir.WriteModuleFile(path, mod); err != nil {
		t.Fatalf("rewrite module: %v", err)
	}
}

func TestCompileAllEmptyBatch(t *testing.T) {
	res, err := CompileAll(context.Background(), &Request{})
	if err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(res.Results) != 0 || res.Skipped != 0 {
		t.Errorf("empty batch result = %+v", res)
	}
}
