// Package zxast provides the core syntax tree representation for Zortex
// markup. It defines a lossless, immutable view of a document including:
// - SourceText: the raw content plus line metadata
// - Token stream: every byte classified
// - Tree: an arena of nodes referencing byte spans
// - Diagnostics: non-fatal anomalies attached to a parse
package zxast

import "sort"

// LineInfo holds metadata for a single line in a document.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals
	// EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of input).
	EndOffset int
}

// SourceText is an immutable view of a document's content. Edits never
// mutate a SourceText; Apply produces a new one plus the edit descriptor
// consumed by incremental reparsing.
type SourceText struct {
	content []byte
	lines   []LineInfo
}

// Edit describes a single replacement applied to a SourceText:
// OldLen bytes at StartOffset were replaced by NewLen bytes.
type Edit struct {
	StartOffset int
	OldLen      int
	NewLen      int
}

// NewSourceText creates a SourceText, copying content to ensure immutability.
func NewSourceText(content []byte) *SourceText {
	cp := make([]byte, len(content))
	copy(cp, content)
	return &SourceText{
		content: cp,
		lines:   BuildLines(cp),
	}
}

// Content returns the full document bytes. Callers must not modify it.
func (s *SourceText) Content() []byte {
	return s.content
}

// Len returns the document length in bytes.
func (s *SourceText) Len() int {
	return len(s.content)
}

// Apply produces a new SourceText with the bytes [start, start+oldLen)
// replaced by replacement, plus the edit descriptor. The receiver is left
// untouched. Out-of-range arguments are clamped.
func (s *SourceText) Apply(start, oldLen int, replacement []byte) (*SourceText, Edit) {
	if start < 0 {
		start = 0
	}
	if start > len(s.content) {
		start = len(s.content)
	}
	if oldLen < 0 {
		oldLen = 0
	}
	if start+oldLen > len(s.content) {
		oldLen = len(s.content) - start
	}

	next := make([]byte, 0, len(s.content)-oldLen+len(replacement))
	next = append(next, s.content[:start]...)
	next = append(next, replacement...)
	next = append(next, s.content[start+oldLen:]...)

	return NewSourceText(next), Edit{
		StartOffset: start,
		OldLen:      oldLen,
		NewLen:      len(replacement),
	}
}

// BuildLines constructs line metadata from content.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char == '\n' {
			// Check for CRLF.
			newlineStart := idx
			if idx > 0 && content[idx-1] == '\r' {
				newlineStart = idx - 1
			}

			lines = append(lines, LineInfo{
				StartOffset:  lineStart,
				NewlineStart: newlineStart,
				EndOffset:    idx + 1,
			})
			lineStart = idx + 1
		}
	}

	// Handle last line (may not have trailing newline).
	if lineStart <= len(content) {
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: len(content),
			EndOffset:    len(content),
		})
	}

	return lines
}

// LineCount returns the number of lines in the document.
func (s *SourceText) LineCount() int {
	return len(s.lines)
}

// Line returns the metadata for a 1-based line number.
// Returns the zero LineInfo if out of range.
func (s *SourceText) Line(line int) LineInfo {
	if line < 1 || line > len(s.lines) {
		return LineInfo{}
	}
	return s.lines[line-1]
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes.
// Returns (0, 0) if the offset is out of range.
func (s *SourceText) LineAt(offset int) (int, int) {
	if offset < 0 || len(s.lines) == 0 {
		return 0, 0
	}

	// Handle offset at or past end of content.
	if offset >= len(s.content) {
		last := s.lines[len(s.lines)-1]
		return len(s.lines), offset - last.StartOffset + 1
	}

	// Binary search to find the line containing the offset.
	lineIdx := sort.Search(len(s.lines), func(i int) bool {
		return s.lines[i].EndOffset > offset
	})

	if lineIdx >= len(s.lines) {
		lineIdx = len(s.lines) - 1
	}

	info := s.lines[lineIdx]
	if offset < info.StartOffset {
		return 0, 0
	}

	// 1-based line and column.
	return lineIdx + 1, offset - info.StartOffset + 1
}

// Offset converts 1-based line and column numbers to a byte offset.
// Returns (offset, true) on success, or (0, false) if out of range.
func (s *SourceText) Offset(line, col int) (int, bool) {
	if line < 1 || line > len(s.lines) {
		return 0, false
	}

	info := s.lines[line-1]
	if col < 1 {
		return 0, false
	}

	offset := info.StartOffset + col - 1

	// Allow column to point to end of line (for cursor positioning).
	if offset > info.EndOffset {
		return 0, false
	}

	return offset, true
}

// LineContent returns the content of a 1-based line number, excluding the
// newline. Returns nil if the line number is out of range.
func (s *SourceText) LineContent(line int) []byte {
	if line < 1 || line > len(s.lines) {
		return nil
	}

	info := s.lines[line-1]
	return s.content[info.StartOffset:info.NewlineStart]
}
