package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"rift/internal/mir"
)

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		input string
		want  uiMode
		fails bool
	}{
		{"", uiModeAuto, false},
		{"auto", uiModeAuto, false},
		{"ON", uiModeOn, false},
		{" off ", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.input)
		if tc.fails {
			if err == nil {
				t.Fatalf("readUIMode(%q) accepted, want error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("readUIMode(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("readUIMode(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestInitCreatesProject(t *testing.T) {
	root := filepath.Join(t.TempDir(), "demo")

	var out bytes.Buffer
	initCmd.SetOut(&out)
	defer initCmd.SetOut(nil)

	if err := runInit(initCmd, []string{root}); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	manifest, err := os.ReadFile(filepath.Join(root, "rift.toml"))
	if err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
	if !bytes.Contains(manifest, []byte(`name = "demo"`)) {
		t.Fatalf("manifest lacks project name:\n%s", manifest)
	}

	mod, err := mir.ReadModuleFile(filepath.Join(root, "main.mir"))
	if err != nil {
		t.Fatalf("main.mir does not decode: %v", err)
	}
	if err := mir.Validate(mod); err != nil {
		t.Fatalf("placeholder module invalid: %v", err)
	}
	if _, ok := mod.FuncByName("main"); !ok {
		t.Fatalf("placeholder module has no main")
	}

	if err := runInit(initCmd, []string{root}); err == nil {
		t.Fatalf("second init in %s should fail", root)
	}
}

func TestInspectSummary(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "m.mir")
	if err := mir.WriteModuleFile(path, placeholderModule("m")); err != nil {
		t.Fatalf("write module: %v", err)
	}

	var out bytes.Buffer
	inspectCmd.SetOut(&out)
	defer inspectCmd.SetOut(nil)
	if err := inspectCmd.Flags().Set("summary", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	if err := runInspect(inspectCmd, []string{path}); err != nil {
		t.Fatalf("runInspect: %v", err)
	}
	want := "module m: 1 func(s), 1 block(s), 0 global(s), 0 record(s)\n"
	if out.String() != want {
		t.Fatalf("summary = %q, want %q", out.String(), want)
	}
}
