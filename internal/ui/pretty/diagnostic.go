package pretty

import (
	"fmt"
	"strings"

	"github.com/t-wilkinson/zortex/pkg/zxast"
)

// FormatDiagnostic formats a single parse diagnostic for terminal output,
// optionally with the offending source line and a caret marker.
func (s *Styles) FormatDiagnostic(path string, diag zxast.Diagnostic, sourceLine string) string {
	var b strings.Builder

	location := fmt.Sprintf("%s:%d:%d",
		s.FilePath.Render(path),
		diag.Line,
		diag.Column,
	)

	b.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(diag.Severity),
		s.Message.Render(diag.Message),
		s.DiagCode.Render("("+string(diag.Code)+")"),
	))

	if sourceLine != "" {
		b.WriteString(s.FormatSourceContext(sourceLine, diag.Column))
	}

	return b.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev zxast.Severity) string {
	switch sev {
	case zxast.SeverityError:
		return s.Error.Render("error")
	case zxast.SeverityWarning:
		return s.Warning.Render("warning")
	case zxast.SeverityInfo:
		return s.Info.Render("info")
	default:
		return string(sev)
	}
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var b strings.Builder
	const indent = "        "

	b.WriteString(indent + s.SourceLine.Render(line) + "\n")
	if column > 0 && column <= len(line)+1 {
		b.WriteString(indent + strings.Repeat(" ", column-1) + s.Caret.Render("^") + "\n")
	}
	return b.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, diagCount int) string {
	header := s.FilePath.Render(path)
	if diagCount > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d diagnostics)", diagCount))
	}
	return header
}
