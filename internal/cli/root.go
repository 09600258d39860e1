// Package cli provides the Cobra command structure for zortex.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/t-wilkinson/zortex/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root zortex command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "zortex",
		Short: "A parser and checker for Zortex note files",
		Long: `zortex parses Zortex note files into syntax trees.

Zortex is a line-oriented, indentation-sensitive markup for personal notes:
articles with tags, nested headings, labels, lists, fenced code and latex
blocks, and lightweight inline markup. The parser never fails; malformed
input degrades gracefully and surfaces as diagnostics.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
