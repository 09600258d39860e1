package parser

import (
	"fmt"
	"strings"

	"github.com/t-wilkinson/zortex/pkg/zxast"
)

// blockParser consumes the token stream to build the outer document
// structure: article header, tag lines, headings, labels, lists, fenced
// blocks, and paragraphs. It is a hand-written recursive descent over the
// grammar; it never fails — unmatched lines become paragraphs.
type blockParser struct {
	tree    *zxast.Tree
	toks    []zxast.Token
	pos     int
	content []byte
	diags   []zxast.Diagnostic

	// sections is the heading stack: sections[0] is the document root,
	// deeper entries are open heading sections ordered by level.
	sections []section
}

type section struct {
	id    zxast.NodeID
	level int
}

// parseDocument parses the whole token stream into a fresh Document node.
func (p *blockParser) parseDocument() zxast.NodeID {
	root := p.tree.NewNode(zxast.NodeDocument)
	p.sections = []section{{id: root, level: 0}}

	if p.kind() == zxast.TokArticleMarker {
		p.parseArticleHeader(root)
	}
	inHeader := true
	p.parseDocBody(root, inHeader)
	return root
}

// parseDocBody runs the top-level block loop. inHeader is true while only
// article-header and tag-line nodes have been produced, so tag lines are
// still legal.
func (p *blockParser) parseDocBody(root zxast.NodeID, inHeader bool) {
	for {
		switch p.peekAfterWS() {
		case zxast.TokEOF:
			p.skipWS()
			return

		case zxast.TokNewline:
			p.parseBlankLine(p.container())
			inHeader = false

		case zxast.TokTagMarker:
			p.skipWS()
			if inHeader {
				p.parseTagLine(root)
				continue
			}
			p.parseBlock(p.container())

		case zxast.TokHeadingMarker:
			p.skipWS()
			p.parseHeadingSection()
			inHeader = false

		case zxast.TokIndent:
			p.skipWS()
			p.next()
			p.parseNested(p.container())
			inHeader = false

		case zxast.TokDedent:
			// Stray close at the top level; nothing to close.
			p.skipWS()
			p.next()

		default:
			p.skipWS()
			p.parseBlock(p.container())
			inHeader = false
		}
	}
}

// container returns the innermost open heading section (or the root).
func (p *blockParser) container() zxast.NodeID {
	return p.sections[len(p.sections)-1].id
}

// parseHeadingSection parses a heading line and splices it into the section
// stack: pop while the top section's level >= the new level, then open the
// new section under what remains.
func (p *blockParser) parseHeadingSection() {
	id, level := p.parseHeading()
	for len(p.sections) > 1 && p.sections[len(p.sections)-1].level >= level {
		p.sections = p.sections[:len(p.sections)-1]
	}
	p.tree.AppendChild(p.container(), id)
	p.sections = append(p.sections, section{id: id, level: level})
}

// parseBlock parses one non-heading block and appends it to container.
func (p *blockParser) parseBlock(container zxast.NodeID) {
	switch p.kind() {
	case zxast.TokLabelName:
		p.parseLabel(container)
	case zxast.TokDash, zxast.TokOrderedMarker:
		p.parseList(container)
	case zxast.TokCodeFence:
		p.parseFencedBlock(container, zxast.NodeCodeBlock)
	case zxast.TokLatexFence:
		p.parseFencedBlock(container, zxast.NodeLatexBlock)
	case zxast.TokTagMarker:
		// A tag outside the document header is not part of the grammar;
		// keep the line as a paragraph.
		p.diag(zxast.DiagUnrecognizedLine, zxast.SeverityInfo,
			"tag line outside document header treated as paragraph", p.cur())
		p.parseParagraph(container)
	default:
		p.parseParagraph(container)
	}
}

// parseNested parses blocks inside one indentation level, until the
// matching dedent (or end of input) closes it.
func (p *blockParser) parseNested(container zxast.NodeID) {
	for {
		switch p.peekAfterWS() {
		case zxast.TokEOF:
			return
		case zxast.TokDedent:
			p.skipWS()
			p.next()
			return
		case zxast.TokIndent:
			p.skipWS()
			p.next()
			p.parseNested(container)
		case zxast.TokNewline:
			p.parseBlankLine(container)
		case zxast.TokHeadingMarker:
			p.skipWS()
			id, _ := p.parseHeading()
			p.tree.AppendChild(container, id)
		default:
			p.skipWS()
			p.parseBlock(container)
		}
	}
}

// parseArticleHeader parses "@@title" on the first line.
func (p *blockParser) parseArticleHeader(root zxast.NodeID) {
	start := p.cur().StartOffset
	id := p.tree.NewNode(zxast.NodeArticleHeader)
	p.next() // marker

	text := ""
	if p.kind() == zxast.TokText {
		text = strings.TrimSpace(p.text(p.cur()))
		p.next()
	}
	end := p.consumeNewline(start)

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: end}
	n.Attrs = &zxast.Attrs{Text: text}
	p.tree.AppendChild(root, id)
}

// parseTagLine parses "@name".
func (p *blockParser) parseTagLine(root zxast.NodeID) {
	start := p.cur().StartOffset
	id := p.tree.NewNode(zxast.NodeTagLine)
	p.next() // marker

	name := ""
	if p.kind() == zxast.TokTagName {
		name = strings.TrimSpace(p.text(p.cur()))
		p.next()
	}
	end := p.consumeNewline(start)

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: end}
	n.Attrs = &zxast.Attrs{Name: name}
	p.tree.AppendChild(root, id)
}

// parseHeading parses a heading line and returns the node plus its level.
// Section nesting is the caller's concern.
func (p *blockParser) parseHeading() (zxast.NodeID, int) {
	marker := p.cur()
	level := marker.Len()
	start := marker.StartOffset

	id := p.tree.NewNode(zxast.NodeHeading)
	p.next()
	if p.kind() == zxast.TokWhitespace {
		p.next()
	}

	text := ""
	if p.kind() == zxast.TokText {
		text = strings.TrimSpace(p.text(p.cur()))
		p.next()
	}
	end := p.consumeNewline(start)

	attrs := &zxast.Attrs{
		Level:  level,
		Marker: p.text(marker),
		Text:   text,
	}
	// A heading written as "Name: rest" carries the name as its label.
	if name, rest, ok := splitLabel(text); ok {
		attrs.Name = name
		attrs.Text = rest
	}

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: end}
	n.Attrs = attrs
	return id, level
}

// parseLabel parses "Name: text".
func (p *blockParser) parseLabel(container zxast.NodeID) {
	start := p.cur().StartOffset
	name := strings.TrimSpace(p.text(p.cur()))
	id := p.tree.NewNode(zxast.NodeLabel)
	p.next() // label name
	if p.kind() == zxast.TokColon {
		p.next()
	}

	text := ""
	if p.kind() == zxast.TokText {
		text = strings.TrimSpace(p.text(p.cur()))
		p.next()
	}
	end := p.consumeNewline(start)

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: end}
	n.Attrs = &zxast.Attrs{Name: name, Text: text}
	p.tree.AppendChild(container, id)
}

// parseList parses consecutive list items at the current indentation level.
// A blank line or any non-marker line ends the list.
func (p *blockParser) parseList(container zxast.NodeID) {
	id := p.tree.NewNode(zxast.NodeList)
	start := p.cur().StartOffset

	for {
		k := p.peekAfterWS()
		if k != zxast.TokDash && k != zxast.TokOrderedMarker {
			break
		}
		p.skipWS()
		p.parseListItem(id)
	}

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: start}
	p.tree.AppendChild(container, id)
}

// parseListItem parses one item: marker, inline content, and optionally a
// nested indentation level of child blocks.
func (p *blockParser) parseListItem(list zxast.NodeID) {
	marker := p.cur()
	start := marker.StartOffset

	id := p.tree.NewNode(zxast.NodeListItem)
	p.next() // marker
	if p.kind() == zxast.TokWhitespace {
		p.next()
	}

	inlineStart := p.pos
	for !isLineBreakKind(p.kind()) {
		p.next()
	}
	p.parseInlineRange(id, p.toks[inlineStart:p.pos])
	end := p.consumeNewline(start)

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: end}
	n.Attrs = &zxast.Attrs{Marker: p.text(marker)}

	// One indent opens exactly one nested level under this item.
	if p.peekAfterWS() == zxast.TokIndent {
		p.skipWS()
		p.next()
		p.parseNested(id)
	}

	p.tree.AppendChild(list, id)
}

// parseFencedBlock parses a code or latex block from its tokenized form.
// An unterminated fence closes implicitly at end of input.
func (p *blockParser) parseFencedBlock(container zxast.NodeID, kind zxast.NodeKind) {
	open := p.cur()
	start := open.StartOffset
	fenceKind := open.Kind

	id := p.tree.NewNode(kind)
	p.next()

	language := ""
	if p.kind() == zxast.TokFenceInfo {
		language = strings.TrimSpace(p.text(p.cur()))
		p.next()
	}
	if p.kind() == zxast.TokNewline {
		p.next()
	}

	var lines []string
	lineText := ""
	havePending := false
	closed := false

	for !closed {
		switch p.kind() {
		case zxast.TokText:
			lineText = p.text(p.cur())
			havePending = true
			p.next()
		case zxast.TokNewline:
			lines = append(lines, lineText)
			lineText = ""
			havePending = false
			p.next()
		case zxast.TokWhitespace:
			p.next()
		default:
			if p.kind() == fenceKind {
				closed = true
				p.next()
				if p.kind() == zxast.TokWhitespace {
					p.next()
				}
				if p.kind() == zxast.TokNewline {
					p.next()
				}
			} else {
				// End of input (or the dedent flush) inside the fence.
				closed = true
				p.diag(zxast.DiagUnterminatedFence, zxast.SeverityWarning,
					"fence opened here is never closed", open)
			}
		}
	}
	if havePending {
		lines = append(lines, lineText)
	}

	end := start
	if p.pos > 0 {
		end = p.toks[p.pos-1].EndOffset
	}

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: end}
	n.Attrs = &zxast.Attrs{Language: language, ContentLines: lines}
	p.tree.AppendChild(container, id)
}

// parseParagraph collects consecutive paragraph lines until a blank line or
// a line that starts a different block.
func (p *blockParser) parseParagraph(container zxast.NodeID) {
	start := p.cur().StartOffset
	id := p.tree.NewNode(zxast.NodeParagraph)

	// The current line joins unconditionally, whatever tokens it holds;
	// continuation lines must look like inline content.
	p.parseParagraphLine(id)
	for isInlineStartKind(p.peekAfterWS()) {
		p.skipWS()
		p.parseParagraphLine(id)
	}

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: start}
	p.tree.AppendChild(container, id)
}

// parseParagraphLine parses the inline spans of one logical line.
func (p *blockParser) parseParagraphLine(para zxast.NodeID) {
	start := p.cur().StartOffset
	id := p.tree.NewNode(zxast.NodeParagraphLine)

	inlineStart := p.pos
	for !isLineBreakKind(p.kind()) {
		p.next()
	}
	p.parseInlineRange(id, p.toks[inlineStart:p.pos])
	end := p.consumeNewline(start)

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: end}
	p.tree.AppendChild(para, id)
}

// parseBlankLine consumes a blank line into a BlankLine node.
func (p *blockParser) parseBlankLine(container zxast.NodeID) {
	start := p.cur().StartOffset
	p.skipWS()
	id := p.tree.NewNode(zxast.NodeBlankLine)
	end := p.consumeNewline(start)

	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{StartOffset: start, EndOffset: end}
	p.tree.AppendChild(container, id)
}

// consumeNewline consumes a trailing newline token if present and returns
// the end offset of the construct starting at fallback.
func (p *blockParser) consumeNewline(fallback int) int {
	if p.kind() == zxast.TokNewline {
		end := p.cur().EndOffset
		p.next()
		return end
	}
	if p.pos > 0 {
		return p.toks[p.pos-1].EndOffset
	}
	return fallback
}

func (p *blockParser) cur() zxast.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return zxast.Token{Kind: zxast.TokEOF, StartOffset: len(p.content), EndOffset: len(p.content)}
}

func (p *blockParser) kind() zxast.TokenKind {
	return p.cur().Kind
}

func (p *blockParser) next() {
	if p.pos < len(p.toks) {
		p.pos++
	}
}

// skipWS consumes consecutive whitespace tokens.
func (p *blockParser) skipWS() {
	for p.kind() == zxast.TokWhitespace {
		p.next()
	}
}

// peekAfterWS returns the kind of the next non-whitespace token without
// consuming anything.
func (p *blockParser) peekAfterWS() zxast.TokenKind {
	for i := p.pos; i < len(p.toks); i++ {
		if p.toks[i].Kind != zxast.TokWhitespace {
			return p.toks[i].Kind
		}
	}
	return zxast.TokEOF
}

func (p *blockParser) text(tok zxast.Token) string {
	return string(tok.Text(p.content))
}

func (p *blockParser) diag(code zxast.DiagCode, sev zxast.Severity, msg string, tok zxast.Token) {
	p.diags = append(p.diags, zxast.Diagnostic{
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf("%s (line %d)", msg, tok.Line),
		Span:     zxast.SourceRange{StartOffset: tok.StartOffset, EndOffset: tok.EndOffset},
		Line:     tok.Line,
		Column:   tok.Column,
	})
}

// isLineBreakKind reports token kinds that end a logical line's inline run.
func isLineBreakKind(k zxast.TokenKind) bool {
	switch k {
	case zxast.TokNewline, zxast.TokIndent, zxast.TokDedent, zxast.TokEOF:
		return true
	default:
		return false
	}
}

// isInlineStartKind reports token kinds that may begin a paragraph line.
func isInlineStartKind(k zxast.TokenKind) bool {
	switch k {
	case zxast.TokText, zxast.TokStar, zxast.TokStarStar, zxast.TokStarStarStar,
		zxast.TokBacktick, zxast.TokBracketOpen, zxast.TokBracketClose:
		return true
	default:
		return false
	}
}

// splitLabel splits "Name: rest" when the name part is letters, digits, and
// spaces. Used for heading labels. The colon must be followed by a space or
// end of text, the same rule the lexer applies to label lines, so a URL in a
// heading never becomes its label.
func splitLabel(text string) (string, string, bool) {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ':' {
			if i == 0 || !isLetter(text[0]) {
				return "", "", false
			}
			if i+1 < len(text) && text[i+1] != ' ' {
				return "", "", false
			}
			return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:]), true
		}
		if !isLabelNameChar(c) {
			return "", "", false
		}
	}
	return "", "", false
}
