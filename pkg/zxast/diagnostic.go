package zxast

// DiagCode identifies the category of a parse anomaly.
type DiagCode string

// Diagnostic codes. All are recoverable: the parser always produces a tree.
const (
	// DiagMalformedIndentation: a line's indentation matched no open level;
	// the scanner synthesized a level to realign.
	DiagMalformedIndentation DiagCode = "malformed-indentation"

	// DiagTooDeeplyNested: an indent push would exceed the configured
	// maximum depth; the level was dropped.
	DiagTooDeeplyNested DiagCode = "too-deeply-nested"

	// DiagUnterminatedFence: a code or latex fence was still open at end of
	// input and was closed implicitly.
	DiagUnterminatedFence DiagCode = "unterminated-fence"

	// DiagUnrecognizedLine: a line matched no block production and was kept
	// as a one-line paragraph.
	DiagUnrecognizedLine DiagCode = "unrecognized-line"

	// DiagCorruptSnapshot: a scanner snapshot could not be decoded; the
	// scanner was reset to its base state.
	DiagCorruptSnapshot DiagCode = "corrupt-snapshot"
)

// Severity indicates the importance of a diagnostic.
type Severity string

// Severity levels, mirroring the usual error/warning/info triple.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic represents a single non-fatal anomaly found while parsing.
type Diagnostic struct {
	// Code is the anomaly category.
	Code DiagCode

	// Severity indicates the importance of the diagnostic.
	Severity Severity

	// Message is the human-readable description.
	Message string

	// Span is the byte range the diagnostic refers to.
	Span SourceRange

	// Line is the 1-based line number where the anomaly starts.
	Line int

	// Column is the 1-based column number where the anomaly starts.
	Column int
}

// SourcePosition returns the diagnostic position as a single-point
// SourcePosition, for renderers that work in line/column terms.
func (d *Diagnostic) SourcePosition() SourcePosition {
	return SourcePosition{
		StartLine:   d.Line,
		StartColumn: d.Column,
		EndLine:     d.Line,
		EndColumn:   d.Column,
	}
}
