package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"rift/internal/mir"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new rift project",
	Long: `Initialize a new rift project by creating a project manifest (rift.toml)
and a placeholder module (main.mir). If [path|name] is omitted, initializes
the current directory. If a non-existing name is provided, a directory will be
created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "rift-project"
	}

	manifestPath := filepath.Join(target, "rift.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(defaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	mainPath := filepath.Join(target, "main.mir")
	createdMain := false
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		if err := mir.WriteModuleFile(mainPath, placeholderModule(name)); err != nil {
			return fmt.Errorf("failed to write main.mir: %w", err)
		}
		createdMain = true
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized rift project in %s\n", rel)
	fmt.Fprintf(out, "  - rift.toml\n")
	if createdMain {
		fmt.Fprintf(out, "  - main.mir\n")
	} else {
		fmt.Fprintf(out, "  - main.mir (existing)\n")
	}
	return nil
}

func defaultManifest(name string) string {
	return fmt.Sprintf(`# Rift project manifest
[package]
name = "%s"
version = "0.1.0"

[build]
output = "build"
`, name)
}

// placeholderModule is the smallest thing rift build accepts: a main
// that returns zero.
func placeholderModule(name string) *mir.Module {
	return &mir.Module{
		Name: name,
		Funcs: []mir.Func{
			{
				Name:   "main",
				Result: mir.Type{Kind: mir.TypeInt},
				Blocks: []mir.Block{
					{
						Term: mir.Terminator{
							Kind: mir.TermReturn,
							Return: mir.ReturnTerm{
								HasValue: true,
								Value:    mir.ConstOperand(mir.IntConst(0)),
							},
						},
					},
				},
			},
		},
	}
}
