package parser

import (
	"strings"

	"github.com/t-wilkinson/zortex/pkg/zxast"
)

// parseInlineRange parses one line's inline tokens into children of parent.
// Delimiters pair greedily with the next identical delimiter on the line;
// anything unpaired degrades to literal text. Adjacent literal runs merge
// into a single Text node.
func (p *blockParser) parseInlineRange(parent zxast.NodeID, toks []zxast.Token) {
	i := 0
	textStart := -1 // index of the first token in a pending literal run

	flush := func(end int) {
		if textStart < 0 || end <= textStart {
			textStart = -1
			return
		}
		span := zxast.SourceRange{
			StartOffset: toks[textStart].StartOffset,
			EndOffset:   toks[end-1].EndOffset,
		}
		id := p.tree.NewNode(zxast.NodeText)
		n := p.tree.Node(id)
		n.Span = span
		n.Attrs = &zxast.Attrs{Text: string(p.content[span.StartOffset:span.EndOffset])}
		p.tree.AppendChild(parent, id)
		textStart = -1
	}
	literal := func() {
		if textStart < 0 {
			textStart = i
		}
		i++
	}

	for i < len(toks) {
		switch toks[i].Kind {
		case zxast.TokStarStarStar, zxast.TokStarStar, zxast.TokStar:
			j := findNextKind(toks, i+1, toks[i].Kind)
			if j < 0 {
				literal()
				continue
			}
			flush(i)
			var kind zxast.NodeKind
			switch toks[i].Kind {
			case zxast.TokStarStarStar:
				kind = zxast.NodeBoldItalic
			case zxast.TokStarStar:
				kind = zxast.NodeBold
			default:
				kind = zxast.NodeItalic
			}
			id := p.tree.NewNode(kind)
			n := p.tree.Node(id)
			n.Span = zxast.SourceRange{
				StartOffset: toks[i].StartOffset,
				EndOffset:   toks[j].EndOffset,
			}
			p.parseInlineRange(id, toks[i+1:j])
			p.tree.AppendChild(parent, id)
			i = j + 1

		case zxast.TokBacktick:
			j := findNextKind(toks, i+1, zxast.TokBacktick)
			if j < 0 {
				literal()
				continue
			}
			flush(i)
			id := p.tree.NewNode(zxast.NodeInlineCode)
			n := p.tree.Node(id)
			n.Span = zxast.SourceRange{
				StartOffset: toks[i].StartOffset,
				EndOffset:   toks[j].EndOffset,
			}
			// Verbatim: no nested markup inside inline code.
			n.Attrs = &zxast.Attrs{
				Text: string(p.content[toks[i].EndOffset:toks[j].StartOffset]),
			}
			p.tree.AppendChild(parent, id)
			i = j + 1

		case zxast.TokBracketOpen:
			id, end, ok := p.parseLink(toks, i)
			if !ok {
				literal()
				continue
			}
			flush(i)
			p.tree.AppendChild(parent, id)
			i = end + 1

		default:
			literal()
		}
	}
	flush(len(toks))
}

// parseLink matches "[text]" optionally followed by "(url)" starting at
// toks[i]. It returns the node and the index of the last token consumed.
// An unclosed bracket is not a link.
func (p *blockParser) parseLink(toks []zxast.Token, i int) (zxast.NodeID, int, bool) {
	j := i + 1
	text := ""
	if j < len(toks) && toks[j].Kind == zxast.TokText {
		text = p.text(toks[j])
		j++
	}
	if j >= len(toks) || toks[j].Kind != zxast.TokBracketClose {
		return zxast.NilNode, 0, false
	}
	end := j

	url := ""
	hasURL := false
	if j+1 < len(toks) && toks[j+1].Kind == zxast.TokParenOpen {
		k := j + 2
		candidate := ""
		if k < len(toks) && toks[k].Kind == zxast.TokText {
			candidate = p.text(toks[k])
			k++
		}
		// Only a closed paren pair counts; "[a](b" keeps the bare link and
		// leaves the rest as text.
		if k < len(toks) && toks[k].Kind == zxast.TokParenClose {
			url = strings.TrimSpace(candidate)
			hasURL = true
			end = k
		}
	}

	id := p.tree.NewNode(zxast.NodeLink)
	n := p.tree.Node(id)
	n.Span = zxast.SourceRange{
		StartOffset: toks[i].StartOffset,
		EndOffset:   toks[end].EndOffset,
	}
	n.Attrs = &zxast.Attrs{Text: text, URL: url, HasURL: hasURL}
	return id, end, true
}

// findNextKind returns the index of the next token of the given kind at or
// after from, or -1.
func findNextKind(toks []zxast.Token, from int, kind zxast.TokenKind) int {
	for i := from; i < len(toks); i++ {
		if toks[i].Kind == kind {
			return i
		}
	}
	return -1
}
