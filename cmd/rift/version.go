package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rift/internal/version"
)

var (
	versionShowHash bool
	versionShowDate bool
	versionShowFull bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show rift build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		renderVersion(cmd.OutOrStdout())
		return nil
	},
}

func renderVersion(out io.Writer) {
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	fmt.Fprintf(out, "rift %s\n", v)
	if versionShowHash || versionShowFull {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
	}
	if versionShowDate || versionShowFull {
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
	}
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
