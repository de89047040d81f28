package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded rift.toml plus where it came from.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the rift.toml schema.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Compat  CompatConfig  `toml:"compat"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	// Output is the directory assembly listings land in, relative to
	// the project root.
	Output string `toml:"output"`
	// Jobs caps lowering parallelism; zero means one worker per CPU.
	Jobs int `toml:"jobs"`
}

type CompatConfig struct {
	// DegradeMissing restores the old behavior of lowering unknown
	// names to a zero placeholder instead of failing the build.
	DegradeMissing bool `toml:"degrade_missing"`
}

// FindRiftToml walks up from startDir to locate rift.toml.
func FindRiftToml(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "rift.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest locates and parses the nearest rift.toml.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindRiftToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig parses one manifest file. [package].name is the only
// required field; [build] and [compat] default to zero values.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if cfg.Build.Output == "" {
		cfg.Build.Output = "build"
	}
	return cfg, nil
}

// OutputDir resolves the configured output directory against the root.
func (m *Manifest) OutputDir() string {
	if m == nil {
		return "build"
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Build.Output))
}
