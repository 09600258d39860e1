package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/t-wilkinson/zortex/internal/logging"
	"github.com/t-wilkinson/zortex/internal/ui/pretty"
	"github.com/t-wilkinson/zortex/pkg/config"
	"github.com/t-wilkinson/zortex/pkg/parser"
	"github.com/t-wilkinson/zortex/pkg/zxast"
)

type parseFlags struct {
	format         string
	strict         bool
	detectLanguage bool
}

func newParseCommand() *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a Zortex file and print its syntax tree",
		Long: `Parse a Zortex file and print the resulting syntax tree.

Reads from stdin when no file is given.

Examples:
  zortex parse notes.zx             # Tree outline
  zortex parse --format json x.zx   # JSON for tooling
  zortex parse --detect-language    # Classify unlabeled code blocks`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "tree", "output format: tree, json, text")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat malformed indentation as an error")
	cmd.Flags().BoolVar(&flags.detectLanguage, "detect-language", false,
		"classify the language of unlabeled code blocks")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, flags *parseFlags) error {
	logger := logging.Default()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Format = config.OutputFormat(flags.format)
	if cmd.Flags().Changed("strict") {
		cfg.Parser.StrictIndentation = flags.strict
	}
	if cmd.Flags().Changed("detect-language") {
		cfg.Parser.DetectLanguage = flags.detectLanguage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path, content, err := readInput(args)
	if err != nil {
		return err
	}

	p := newParser(cfg)
	p.SetLogger(logger)
	tree, _ := p.Parse(content)

	logger.Debug("parsed",
		logging.FieldInput, path,
		logging.FieldBytes, len(content),
		logging.FieldNodes, tree.NodeCount(),
		logging.FieldTokens, len(tree.Tokens),
		logging.FieldDiagnostics, len(tree.Diagnostics),
	)

	colorMode, _ := cmd.Flags().GetString("color")
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, os.Stdout))

	switch cfg.Format {
	case config.FormatJSON:
		return writeJSON(cmd, path, tree)
	case config.FormatText:
		writeDiagnostics(cmd, styles, path, tree)
		return nil
	default:
		styles.RenderTree(cmd.OutOrStdout(), tree)
		writeDiagnostics(cmd, styles, path, tree)
		return nil
	}
}

// newParser builds a parser from the effective config.
func newParser(cfg *config.Config) *parser.Parser {
	opts := parser.Options{
		MaxIndentDepth:    cfg.Parser.MaxIndentDepth,
		StrictIndentation: cfg.Parser.StrictIndentation,
		DetectLanguage:    cfg.Parser.DetectLanguage,
	}
	if opts.MaxIndentDepth == 0 {
		opts.MaxIndentDepth = parser.DefaultMaxIndentDepth
	}
	return parser.New(opts)
}

// loadConfig reads the config file named by the root --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// readInput reads the named file, or stdin when no argument was given.
func readInput(args []string) (string, []byte, error) {
	if len(args) == 0 {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "<stdin>", content, nil
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("read input: %w", err)
	}
	return args[0], content, nil
}

func writeDiagnostics(cmd *cobra.Command, styles *pretty.Styles, path string, tree *zxast.Tree) {
	if len(tree.Diagnostics) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.FormatFileHeader(path, len(tree.Diagnostics)))
	for _, d := range tree.Diagnostics {
		line := ""
		if d.Line >= 1 && d.Line <= tree.Source.LineCount() {
			line = string(tree.Source.LineContent(d.Line))
		}
		fmt.Fprint(out, styles.FormatDiagnostic(path, d, line))
	}
}

// jsonNode is the JSON shape of one syntax node.
type jsonNode struct {
	Kind     string            `json:"kind"`
	Start    int               `json:"start"`
	End      int               `json:"end"`
	Fields   map[string]string `json:"fields,omitempty"`
	Children []jsonNode        `json:"children,omitempty"`
}

type jsonDiagnostic struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

type jsonResult struct {
	Path        string           `json:"path"`
	Root        jsonNode         `json:"root"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

func writeJSON(cmd *cobra.Command, path string, tree *zxast.Tree) error {
	result := jsonResult{
		Path:        path,
		Root:        buildJSONNode(tree, tree.Root()),
		Diagnostics: []jsonDiagnostic{},
	}
	for _, d := range tree.Diagnostics {
		result.Diagnostics = append(result.Diagnostics, jsonDiagnostic{
			Code:     string(d.Code),
			Severity: string(d.Severity),
			Message:  d.Message,
			Line:     d.Line,
			Column:   d.Column,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return nil
}

func buildJSONNode(tree *zxast.Tree, id zxast.NodeID) jsonNode {
	span := tree.Span(id)
	jn := jsonNode{
		Kind:  pretty.NodeKindName(tree.Kind(id)),
		Start: span.StartOffset,
		End:   span.EndOffset,
	}
	for _, field := range []string{"content", "language", "marker", "name", "text", "url"} {
		if v, ok := tree.Field(id, field); ok {
			if jn.Fields == nil {
				jn.Fields = make(map[string]string)
			}
			jn.Fields[field] = v
		}
	}
	for _, child := range tree.Children(id) {
		jn.Children = append(jn.Children, buildJSONNode(tree, child))
	}
	return jn
}
