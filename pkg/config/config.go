// Package config defines the configuration types for the zortex CLI and
// parser. The types are pure data; loading lives in yaml.go.
package config

import "fmt"

// OutputFormat specifies how parse results are rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatTree OutputFormat = "tree"
	FormatJSON OutputFormat = "json"
)

// IsValid returns true if the output format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatTree, FormatJSON:
		return true
	default:
		return false
	}
}

// ParserConfig holds the options forwarded to the parser.
type ParserConfig struct {
	// MaxIndentDepth caps open indentation levels. 0 means the default.
	MaxIndentDepth int `yaml:"max_indent_depth"`

	// StrictIndentation promotes misaligned-indentation warnings to errors.
	StrictIndentation bool `yaml:"strict_indentation"`

	// DetectLanguage classifies unlabeled code blocks.
	DetectLanguage bool `yaml:"detect_language"`
}

// Config is the root configuration.
type Config struct {
	Parser ParserConfig `yaml:"parser"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore"`

	// CLI-level options, never persisted.

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Quiet suppresses everything except errors.
	Quiet bool `yaml:"-"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"-"`

	// NoColor disables colored output.
	NoColor bool `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Parser: ParserConfig{},
		Format: FormatText,
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Parser.MaxIndentDepth < 0 {
		return fmt.Errorf("parser.max_indent_depth must be >= 0, got %d", c.Parser.MaxIndentDepth)
	}
	if c.Parser.MaxIndentDepth > 128 {
		return fmt.Errorf("parser.max_indent_depth must be <= 128, got %d", c.Parser.MaxIndentDepth)
	}
	if c.Format != "" && !c.Format.IsValid() {
		return fmt.Errorf("unknown output format %q", c.Format)
	}
	return nil
}
