package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/t-wilkinson/zortex/internal/logging"
	"github.com/t-wilkinson/zortex/internal/ui/pretty"
	"github.com/t-wilkinson/zortex/pkg/zxast"
)

// Sentinel errors carrying the exit-code decision out of the check command.
var (
	ErrIssuesFound   = errors.New("issues found")
	ErrWarningsFound = errors.New("warnings found")
)

type checkFlags struct {
	strict bool
	quiet  bool
}

func newCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check Zortex files for parse diagnostics",
		Long: `Check Zortex files and report parse diagnostics.

Directories are walked recursively for .zx and .zortex files. The exit code
reflects what was found: 0 clean, 1 errors, 2 warnings under --strict.

Examples:
  zortex check notes/            # Check a directory
  zortex check todo.zx           # Check a single file
  zortex check --strict notes/   # Warnings fail the check`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as failures")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress per-file output")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, flags *checkFlags) error {
	logger := logging.Default()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strict") {
		cfg.Parser.StrictIndentation = flags.strict
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	files, err := discoverFiles(paths)
	if err != nil {
		return err
	}
	logger.Debug("checking", logging.FieldFiles, len(files))

	colorMode, _ := cmd.Flags().GetString("color")
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, os.Stdout))

	p := newParser(cfg)
	errorCount := 0
	warningCount := 0

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tree, _ := p.Parse(content)

		for _, d := range tree.Diagnostics {
			switch d.Severity {
			case zxast.SeverityError:
				errorCount++
			case zxast.SeverityWarning:
				warningCount++
			}
		}
		if !flags.quiet {
			writeDiagnostics(cmd, styles, path, tree)
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case errorCount > 0:
		fmt.Fprintln(out, styles.FormatSeverity(zxast.SeverityError)+
			fmt.Sprintf(": %d errors, %d warnings in %d files", errorCount, warningCount, len(files)))
		return ErrIssuesFound
	case flags.strict && warningCount > 0:
		fmt.Fprintln(out, styles.FormatSeverity(zxast.SeverityWarning)+
			fmt.Sprintf(": %d warnings in %d files", warningCount, len(files)))
		return ErrWarningsFound
	default:
		if !flags.quiet {
			fmt.Fprintln(out, styles.Success.Render("ok")+
				fmt.Sprintf(": %d files clean", len(files)))
		}
		return nil
	}
}

// discoverFiles expands paths into Zortex files. Directories are walked
// recursively; explicitly named files are taken as-is.
func discoverFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch filepath.Ext(p) {
			case ".zx", ".zortex":
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}
	return files, nil
}
