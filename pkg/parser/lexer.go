package parser

import (
	"fmt"

	"github.com/t-wilkinson/zortex/pkg/zxast"
)

// lexer performs a single forward pass over Zortex content, producing a
// contiguous token stream covering every byte plus zero-width Indent/Dedent
// tokens from the indent tracker. Line-start constructs are classified
// first, then the remainder of the line is tokenized as inline content.
type lexer struct {
	content   []byte
	pos       int
	line      int
	lineStart int

	tokens      []zxast.Token
	diags       []zxast.Diagnostic
	checkpoints []zxast.Checkpoint

	tracker *IndentTracker
}

// lexResult is everything a lex pass produces.
type lexResult struct {
	tokens      []zxast.Token
	diags       []zxast.Diagnostic
	checkpoints []zxast.Checkpoint

	// finalSnapshot is the tracker state captured just before the end-of-
	// input dedent flush, so a caller can resume appending at EOF.
	finalSnapshot []byte
}

func newLexer(content []byte, tracker *IndentTracker) *lexer {
	return &lexer{
		content: content,
		line:    1,
		tracker: tracker,
		tokens:  make([]zxast.Token, 0, len(content)/4),
	}
}

// newLexerAt resumes lexing at a byte offset, with line numbering and
// tracker state supplied by the caller. offset must be a line start.
func newLexerAt(content []byte, offset, line int, tracker *IndentTracker) *lexer {
	lx := newLexer(content, tracker)
	lx.pos = offset
	lx.lineStart = offset
	lx.line = line
	return lx
}

func (lx *lexer) run() lexResult {
	for lx.pos < len(lx.content) {
		lx.lexLine()
	}

	final := lx.tracker.Serialize()

	// Flush: every open level closes at end of input so that opens and
	// closes balance.
	for n := lx.tracker.CloseAll(); n > 0; n-- {
		lx.emitSynthetic(zxast.TokDedent)
	}
	lx.emitSynthetic(zxast.TokEOF)

	return lexResult{
		tokens:        lx.tokens,
		diags:         lx.diags,
		checkpoints:   lx.checkpoints,
		finalSnapshot: final,
	}
}

// lexLine handles one physical line: indentation, line-start constructs,
// then inline content.
func (lx *lexer) lexLine() {
	lx.lineStart = lx.pos
	start := lx.pos

	for lx.pos < len(lx.content) && lx.content[lx.pos] == ' ' {
		lx.pos++
	}
	indent := lx.pos - start

	// Blank lines never consult or mutate indentation state.
	if lx.pos >= len(lx.content) || lx.content[lx.pos] == '\n' || lx.content[lx.pos] == '\r' {
		if indent > 0 {
			lx.emit(zxast.TokWhitespace, start, lx.pos)
		}
		lx.consumeNewline()
		return
	}

	if indent > 0 {
		lx.emit(zxast.TokWhitespace, start, lx.pos)
	}

	// Drive the indent tracker; it may emit one open, or one close plus
	// queued closes delivered on subsequent calls.
	for {
		ev, flag := lx.tracker.Next(indent)
		switch flag {
		case IndentMisaligned:
			lx.diag(zxast.DiagMalformedIndentation, zxast.SeverityWarning,
				fmt.Sprintf("indentation of %d spaces matches no open level", indent), start)
		case IndentOverflow:
			lx.diag(zxast.DiagTooDeeplyNested, zxast.SeverityWarning,
				fmt.Sprintf("nesting deeper than %d levels; level dropped", lx.tracker.maxDepth), start)
		}
		if ev == IndentNone {
			break
		}
		if ev == IndentOpen {
			lx.emitSynthetic(zxast.TokIndent)
		} else {
			lx.emitSynthetic(zxast.TokDedent)
		}
	}

	// Record a resume point for incremental reparsing: an unindented,
	// non-blank line with no open levels is a candidate block boundary.
	// Dedents the line produced are already in the stream, so a resumed
	// lex starts exactly at this line's first content token.
	if indent == 0 && lx.tracker.AtBase() {
		lx.checkpoints = append(lx.checkpoints, zxast.Checkpoint{
			Offset:     start,
			TokenIndex: len(lx.tokens),
			Snapshot:   lx.tracker.Serialize(),
		})
	}

	lx.lexLineContent(indent)
}

// lexLineContent classifies the first construct of a non-blank line, then
// falls back to inline tokenization.
func (lx *lexer) lexLineContent(indent int) {
	c := lx.content[lx.pos]

	switch c {
	case '@':
		if lx.pos == 0 && lx.peekAt(1) == '@' {
			lx.lexArticleHeader()
			return
		}
		if indent == 0 && lx.peekAt(1) != '@' && !isLineEnd(lx.peekAt(1)) && lx.peekAt(1) != ' ' {
			lx.lexTagLine()
			return
		}
	case '#':
		if lx.lexHeadingMarker() {
			return
		}
	case '-':
		if isLineEnd(lx.peekAt(1)) || lx.peekAt(1) == ' ' {
			lx.emitSingle(zxast.TokDash)
			lx.consumeMarkerSpace()
			lx.lexInline()
			return
		}
	case '`':
		if lx.peekAt(1) == '`' && lx.peekAt(2) == '`' {
			lx.lexFencedBlock(zxast.TokCodeFence)
			return
		}
	case '$':
		if lx.peekAt(1) == '$' && lx.restIsBlank(lx.pos+2) {
			lx.lexFencedBlock(zxast.TokLatexFence)
			return
		}
	default:
		if isDigit(c) && lx.lexOrderedMarker() {
			return
		}
		if isLetter(c) && lx.lexLabel() {
			return
		}
	}

	lx.lexInline()
}

// lexArticleHeader lexes "@@title" on the first line of the document.
func (lx *lexer) lexArticleHeader() {
	lx.emit(zxast.TokArticleMarker, lx.pos, lx.pos+2)
	lx.pos += 2
	lx.lexTextToEOL()
	lx.consumeNewline()
}

// lexTagLine lexes "@name" where name is the rest of the line.
func (lx *lexer) lexTagLine() {
	lx.emitSingle(zxast.TokTagMarker)
	start := lx.pos
	for lx.pos < len(lx.content) && !isLineEnd(lx.content[lx.pos]) {
		lx.pos++
	}
	if lx.pos > start {
		lx.emit(zxast.TokTagName, start, lx.pos)
	}
	lx.consumeNewline()
}

// lexHeadingMarker lexes a run of 1-6 '#' plus the heading text. Returns
// false for 7+ '#', which is not a heading.
func (lx *lexer) lexHeadingMarker() bool {
	start := lx.pos
	count := 0
	for lx.pos < len(lx.content) && lx.content[lx.pos] == '#' && count < 7 {
		lx.pos++
		count++
	}
	if count > 6 {
		lx.pos = start
		return false
	}

	lx.emit(zxast.TokHeadingMarker, start, lx.pos)
	lx.consumeMarkerSpace()
	lx.lexTextToEOL()
	lx.consumeNewline()
	return true
}

// lexOrderedMarker lexes "12." followed by a space or end of line.
// Returns false (restoring position) when the digits are ordinary text,
// e.g. "1.5 miles".
func (lx *lexer) lexOrderedMarker() bool {
	start := lx.pos
	for lx.pos < len(lx.content) && isDigit(lx.content[lx.pos]) {
		lx.pos++
	}
	if lx.pos >= len(lx.content) || lx.content[lx.pos] != '.' {
		lx.pos = start
		return false
	}
	lx.pos++
	if lx.pos < len(lx.content) && lx.content[lx.pos] != ' ' && !isLineEnd(lx.content[lx.pos]) {
		lx.pos = start
		return false
	}

	lx.emit(zxast.TokOrderedMarker, start, lx.pos)
	lx.consumeMarkerSpace()
	lx.lexInline()
	return true
}

// lexLabel lexes "Name: text". The name is letters, digits, and spaces; the
// colon must be followed by a space or end of line so that "http://…" never
// lexes as a label.
func (lx *lexer) lexLabel() bool {
	start := lx.pos
	scan := lx.pos
	for scan < len(lx.content) && isLabelNameChar(lx.content[scan]) {
		scan++
	}
	if scan >= len(lx.content) || lx.content[scan] != ':' {
		return false
	}
	after := byte(0)
	if scan+1 < len(lx.content) {
		after = lx.content[scan+1]
	}
	if after != ' ' && after != 0 && !isLineEnd(after) {
		return false
	}

	lx.emit(zxast.TokLabelName, start, scan)
	lx.pos = scan
	lx.emitSingle(zxast.TokColon)
	lx.lexTextToEOL()
	lx.consumeNewline()
	return true
}

// lexFencedBlock lexes an entire fenced code or latex block: opening fence,
// optional info string, raw content lines, and the closing fence. An
// unterminated fence stops at end of input; the parser flags it.
func (lx *lexer) lexFencedBlock(fence zxast.TokenKind) {
	fenceLen := 3
	if fence == zxast.TokLatexFence {
		fenceLen = 2
	}

	lx.emit(fence, lx.pos, lx.pos+fenceLen)
	lx.pos += fenceLen

	// Info string: the rest of the opening fence line.
	infoStart := lx.pos
	for lx.pos < len(lx.content) && !isLineEnd(lx.content[lx.pos]) {
		lx.pos++
	}
	if lx.pos > infoStart {
		lx.emit(zxast.TokFenceInfo, infoStart, lx.pos)
	}
	lx.consumeNewline()

	for lx.pos < len(lx.content) {
		lineStart := lx.pos

		// Closing fence: optional leading spaces, the fence run, then
		// nothing but whitespace.
		scan := lineStart
		for scan < len(lx.content) && lx.content[scan] == ' ' {
			scan++
		}
		if lx.matchesFence(scan, fence, fenceLen) {
			run := scan
			for run < len(lx.content) && lx.content[run] == lx.content[scan] {
				run++
			}
			if lx.restIsBlank(run) {
				if scan > lineStart {
					lx.emit(zxast.TokWhitespace, lineStart, scan)
					lx.pos = scan
				}
				lx.emit(fence, scan, run)
				lx.pos = run
				lx.lexTrailingWhitespace()
				lx.consumeNewline()
				return
			}
		}

		// Raw content line, taken verbatim.
		for lx.pos < len(lx.content) && !isLineEnd(lx.content[lx.pos]) {
			lx.pos++
		}
		if lx.pos > lineStart {
			lx.emit(zxast.TokText, lineStart, lx.pos)
		}
		lx.consumeNewline()
	}
}

func (lx *lexer) matchesFence(at int, fence zxast.TokenKind, fenceLen int) bool {
	want := byte('`')
	if fence == zxast.TokLatexFence {
		want = '$'
	}
	for i := 0; i < fenceLen; i++ {
		if at+i >= len(lx.content) || lx.content[at+i] != want {
			return false
		}
	}
	return true
}

// lexInline tokenizes inline content until end of line: star runs with
// maximal munch, backtick spans, bracketed link parts, and text runs.
func (lx *lexer) lexInline() {
	for lx.pos < len(lx.content) {
		c := lx.content[lx.pos]
		if isLineEnd(c) {
			lx.consumeNewline()
			return
		}

		switch c {
		case '*':
			lx.lexStarRun()
		case '`':
			lx.emitSingle(zxast.TokBacktick)
			// Inline code content is verbatim up to the next backtick or
			// end of line.
			lx.lexTextUntil('`')
		case '[':
			lx.emitSingle(zxast.TokBracketOpen)
			// Link text is anything except ']'.
			lx.lexTextUntil(']')
		case ']':
			lx.emitSingle(zxast.TokBracketClose)
			if lx.pos < len(lx.content) && lx.content[lx.pos] == '(' {
				lx.emitSingle(zxast.TokParenOpen)
				lx.lexTextUntil(')')
				if lx.pos < len(lx.content) && lx.content[lx.pos] == ')' {
					lx.emitSingle(zxast.TokParenClose)
				}
			}
		default:
			lx.lexTextRun()
		}
	}
}

// lexStarRun emits star delimiters with maximal munch: a run of three is a
// single token, never three singles.
func (lx *lexer) lexStarRun() {
	start := lx.pos
	for lx.pos < len(lx.content) && lx.content[lx.pos] == '*' {
		lx.pos++
	}
	n := lx.pos - start
	at := start
	for n > 0 {
		switch {
		case n >= 3:
			lx.emit(zxast.TokStarStarStar, at, at+3)
			at += 3
			n -= 3
		case n == 2:
			lx.emit(zxast.TokStarStar, at, at+2)
			at += 2
			n -= 2
		default:
			lx.emit(zxast.TokStar, at, at+1)
			at++
			n--
		}
	}
}

// lexTextRun consumes ordinary text until the next character that could
// start a special inline token.
func (lx *lexer) lexTextRun() {
	start := lx.pos
	for lx.pos < len(lx.content) {
		switch lx.content[lx.pos] {
		case '\n', '\r', '*', '`', '[', ']':
			lx.emit(zxast.TokText, start, lx.pos)
			return
		}
		lx.pos++
	}
	lx.emit(zxast.TokText, start, lx.pos)
}

// lexTextUntil consumes verbatim text up to (not including) stop or end of
// line, emitting it as a single text token when non-empty.
func (lx *lexer) lexTextUntil(stop byte) {
	start := lx.pos
	for lx.pos < len(lx.content) && lx.content[lx.pos] != stop && !isLineEnd(lx.content[lx.pos]) {
		lx.pos++
	}
	if lx.pos > start {
		lx.emit(zxast.TokText, start, lx.pos)
	}
}

// lexTextToEOL consumes the rest of the line as one text token.
func (lx *lexer) lexTextToEOL() {
	start := lx.pos
	for lx.pos < len(lx.content) && !isLineEnd(lx.content[lx.pos]) {
		lx.pos++
	}
	if lx.pos > start {
		lx.emit(zxast.TokText, start, lx.pos)
	}
}

// consumeMarkerSpace consumes the single space after a block marker.
func (lx *lexer) consumeMarkerSpace() {
	if lx.pos < len(lx.content) && lx.content[lx.pos] == ' ' {
		start := lx.pos
		for lx.pos < len(lx.content) && lx.content[lx.pos] == ' ' {
			lx.pos++
		}
		lx.emit(zxast.TokWhitespace, start, lx.pos)
	}
}

func (lx *lexer) lexTrailingWhitespace() {
	start := lx.pos
	for lx.pos < len(lx.content) && (lx.content[lx.pos] == ' ' || lx.content[lx.pos] == '\t') {
		lx.pos++
	}
	if lx.pos > start {
		lx.emit(zxast.TokWhitespace, start, lx.pos)
	}
}

// consumeNewline consumes a newline (LF, CRLF, or lone CR).
func (lx *lexer) consumeNewline() {
	if lx.pos >= len(lx.content) {
		return
	}

	start := lx.pos
	switch lx.content[lx.pos] {
	case '\r':
		lx.pos++
		if lx.pos < len(lx.content) && lx.content[lx.pos] == '\n' {
			lx.pos++
		}
	case '\n':
		lx.pos++
	default:
		return
	}

	lx.emit(zxast.TokNewline, start, lx.pos)
	lx.line++
	lx.lineStart = lx.pos
}

// restIsBlank reports whether only spaces and tabs remain between at and
// the end of the line.
func (lx *lexer) restIsBlank(at int) bool {
	for at < len(lx.content) && !isLineEnd(lx.content[at]) {
		if lx.content[at] != ' ' && lx.content[at] != '\t' {
			return false
		}
		at++
	}
	return true
}

func (lx *lexer) peekAt(ahead int) byte {
	if lx.pos+ahead >= len(lx.content) {
		return 0
	}
	return lx.content[lx.pos+ahead]
}

func (lx *lexer) emit(kind zxast.TokenKind, start, end int) {
	lx.tokens = append(lx.tokens, zxast.Token{
		Kind:        kind,
		StartOffset: start,
		EndOffset:   end,
		Line:        lx.line,
		Column:      start - lx.lineStart + 1,
	})
}

func (lx *lexer) emitSingle(kind zxast.TokenKind) {
	lx.emit(kind, lx.pos, lx.pos+1)
	lx.pos++
}

func (lx *lexer) emitSynthetic(kind zxast.TokenKind) {
	lx.emit(kind, lx.pos, lx.pos)
}

func (lx *lexer) diag(code zxast.DiagCode, sev zxast.Severity, msg string, offset int) {
	lx.diags = append(lx.diags, zxast.Diagnostic{
		Code:     code,
		Severity: sev,
		Message:  msg,
		Span:     zxast.SourceRange{StartOffset: offset, EndOffset: lx.pos},
		Line:     lx.line,
		Column:   offset - lx.lineStart + 1,
	})
}

func isLineEnd(b byte) bool {
	return b == '\n' || b == '\r'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isLabelNameChar(b byte) bool {
	return isLetter(b) || isDigit(b) || b == ' '
}
