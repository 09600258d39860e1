// Package main is the entry point for the zortex CLI.
package main

import (
	"errors"
	"os"

	"github.com/t-wilkinson/zortex/internal/cli"
	"github.com/t-wilkinson/zortex/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		// Issue sentinels are just signals for the exit code, not failures.
		if errors.Is(err, cli.ErrIssuesFound) {
			return cli.ExitErrors
		}
		if errors.Is(err, cli.ErrWarningsFound) {
			return cli.ExitWarnings
		}
		logger := logging.Default()
		logger.Error("command failed", logging.FieldError, err)
		return cli.ExitInvalidUsage
	}

	return cli.ExitSuccess
}
