package zxast

//go:generate stringer -type=NodeKind -trimprefix=Node

// NodeKind classifies the type of a syntax tree node.
type NodeKind uint16

// Node kinds for block-level and inline-level Zortex elements.
const (
	NodeDocument NodeKind = iota

	// Block-level nodes.
	NodeArticleHeader
	NodeTagLine
	NodeHeading
	NodeLabel
	NodeList
	NodeListItem
	NodeCodeBlock
	NodeLatexBlock
	NodeParagraph
	NodeParagraphLine
	NodeBlankLine

	// Inline-level nodes.
	NodeBold
	NodeItalic
	NodeBoldItalic
	NodeInlineCode
	NodeLink
	NodeText
)

// NodeID addresses a node inside a Tree's arena.
type NodeID int32

// NilNode is the sentinel for "no node".
const NilNode NodeID = -1

// Node is a single record in the tree arena. Children are arena indices;
// nodes never hold parent references (parent lookup is a reverse index built
// lazily by the Tree).
type Node struct {
	// Kind identifies what type of node this is.
	Kind NodeKind

	// Span is the byte range this node covers in the source.
	Span SourceRange

	// Children are the node's direct children, in document order.
	Children []NodeID

	// Attrs holds the named fields defined for this node kind, nil when the
	// kind defines none.
	Attrs *Attrs
}

// Attrs holds the named fields a node kind may define. Which fields are
// populated depends on the kind: headings carry Level/Marker/Text and an
// optional Name (the heading label), tag lines and labels carry Name,
// links carry Text/URL, code blocks carry Language/ContentLines.
type Attrs struct {
	// Level is the heading level (1-6) for NodeHeading.
	Level int

	// Marker is the marker text ("#"…"######", "-", "3.") for headings and
	// list items.
	Marker string

	// Name is the tag name, label name, or heading label.
	Name string

	// Text is the flat text content for article headers, headings, labels,
	// links, inline code, and text runs.
	Text string

	// URL is the link destination. HasURL distinguishes "[x]()" from "[x]".
	URL    string
	HasURL bool

	// Language is the fence info string of a code block, as written.
	Language string

	// DetectedLanguage is a classifier guess for unlabeled code blocks.
	// Never populated from source text.
	DetectedLanguage string

	// ContentLines are the raw lines between the fences of a code or latex
	// block, without newlines.
	ContentLines []string
}

// IsBlock returns true if this is a block-level node kind.
func (k NodeKind) IsBlock() bool {
	switch k {
	case NodeDocument, NodeArticleHeader, NodeTagLine, NodeHeading, NodeLabel,
		NodeList, NodeListItem, NodeCodeBlock, NodeLatexBlock, NodeParagraph,
		NodeParagraphLine, NodeBlankLine:
		return true
	default:
		return false
	}
}

// IsInline returns true if this is an inline-level node kind.
func (k NodeKind) IsInline() bool {
	switch k {
	case NodeBold, NodeItalic, NodeBoldItalic, NodeInlineCode, NodeLink, NodeText:
		return true
	default:
		return false
	}
}
