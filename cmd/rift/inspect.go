package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rift/internal/mir"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mir>",
	Short: "Decode a module and print a readable listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().Bool("summary", false, "print counts instead of the full listing")
}

func runInspect(cmd *cobra.Command, args []string) error {
	mod, err := mir.ReadModuleFile(args[0])
	if err != nil {
		return err
	}
	if err := mir.Validate(mod); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		blocks := 0
		for i := range mod.Funcs {
			blocks += len(mod.Funcs[i].Blocks)
		}
		fmt.Fprintf(out, "module %s: %d func(s), %d block(s), %d global(s), %d record(s)\n",
			mod.Name, len(mod.Funcs), blocks, len(mod.Globals), len(mod.Records))
		return nil
	}
	return mir.Fprint(out, mod)
}
