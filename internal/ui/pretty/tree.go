package pretty

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/t-wilkinson/zortex/pkg/zxast"
)

const defaultTermWidth = 100

// RenderTree writes an indented outline of the syntax tree. Attribute text
// is truncated to fit the terminal width.
func (s *Styles) RenderTree(w io.Writer, t *zxast.Tree) {
	width := terminalWidth(w)
	s.renderNode(w, t, t.Root(), 0, width)
}

func (s *Styles) renderNode(w io.Writer, t *zxast.Tree, id zxast.NodeID, depth, width int) {
	n := t.Node(id)
	if n == nil {
		return
	}

	prefix := strings.Repeat("  ", depth)
	line := prefix + s.Branch.Render("- ") + s.NodeKind.Render(NodeKindName(n.Kind))
	line += s.Dim.Render(fmt.Sprintf(" [%d:%d]", n.Span.StartOffset, n.Span.EndOffset))

	if attrs := summarizeAttrs(t, id); attrs != "" {
		line += " " + s.NodeAttr.Render(truncate(attrs, width-len(prefix)-24))
	}
	fmt.Fprintln(w, line)

	for _, child := range t.Children(id) {
		s.renderNode(w, t, child, depth+1, width)
	}
}

// summarizeAttrs renders the named fields a node defines, in a stable order.
func summarizeAttrs(t *zxast.Tree, id zxast.NodeID) string {
	var parts []string
	for _, field := range []string{"name", "marker", "language", "text", "url"} {
		if v, ok := t.Field(id, field); ok && v != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", field, v))
		}
	}
	return strings.Join(parts, " ")
}

// NodeKindName returns a stable display name for a node kind.
//
//nolint:gocyclo // plain kind-to-name table
func NodeKindName(k zxast.NodeKind) string {
	switch k {
	case zxast.NodeDocument:
		return "Document"
	case zxast.NodeArticleHeader:
		return "ArticleHeader"
	case zxast.NodeTagLine:
		return "TagLine"
	case zxast.NodeHeading:
		return "Heading"
	case zxast.NodeLabel:
		return "Label"
	case zxast.NodeList:
		return "List"
	case zxast.NodeListItem:
		return "ListItem"
	case zxast.NodeCodeBlock:
		return "CodeBlock"
	case zxast.NodeLatexBlock:
		return "LatexBlock"
	case zxast.NodeParagraph:
		return "Paragraph"
	case zxast.NodeParagraphLine:
		return "ParagraphLine"
	case zxast.NodeBlankLine:
		return "BlankLine"
	case zxast.NodeBold:
		return "Bold"
	case zxast.NodeItalic:
		return "Italic"
	case zxast.NodeBoldItalic:
		return "BoldItalic"
	case zxast.NodeInlineCode:
		return "InlineCode"
	case zxast.NodeLink:
		return "Link"
	case zxast.NodeText:
		return "Text"
	default:
		return fmt.Sprintf("NodeKind(%d)", k)
	}
}

func truncate(text string, max int) string {
	if max < 8 {
		max = 8
	}
	if len(text) <= max {
		return text
	}
	return text[:max-3] + "..."
}

// terminalWidth attempts to get the terminal width from the writer.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
