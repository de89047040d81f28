package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "rift.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[package]\nname = \"demo\"\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Package.Name != "demo" {
		t.Errorf("name = %q", cfg.Package.Name)
	}
	if cfg.Build.Output != "build" {
		t.Errorf("output default = %q, want build", cfg.Build.Output)
	}
	if cfg.Compat.DegradeMissing {
		t.Error("degrade_missing should default to false")
	}
}

func TestLoadConfigCompatFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "demo"

[build]
output = "out"
jobs = 2

[compat]
degrade_missing = true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Compat.DegradeMissing {
		t.Error("degrade_missing not parsed")
	}
	if cfg.Build.Output != "out" || cfg.Build.Jobs != 2 {
		t.Errorf("build section = %+v", cfg.Build)
	}
}

func TestLoadConfigRejectsMissingName(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[package]\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("manifest without package name accepted")
	}
}

func TestFindRiftTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"demo\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := FindRiftToml(nested)
	if err != nil || !ok {
		t.Fatalf("FindRiftToml: ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Errorf("found %q, want it under %q", path, root)
	}
}

func TestListModuleFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mir", "a.mir", "skip.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := ListModuleFiles(dir)
	if err != nil {
		t.Fatalf("ListModuleFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if filepath.Base(files[0]) != "a.mir" || filepath.Base(files[1]) != "b.mir" {
		t.Errorf("order = %v", files)
	}
}
