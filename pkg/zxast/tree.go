package zxast

import "strings"

// Checkpoint records resumable scanner state at a top-level block boundary.
// Incremental reparsing uses checkpoints to decide how much of an old tree
// can be reused verbatim.
type Checkpoint struct {
	// Offset is the byte offset of the block start.
	Offset int

	// TokenIndex is the index into Tokens of the block's first token.
	TokenIndex int

	// Snapshot is the serialized indent scanner state captured at Offset.
	Snapshot []byte
}

// Tree is the arena of syntax nodes produced by a parse, together with the
// source it was parsed from, the full token stream, and any diagnostics.
// A Tree is immutable once returned by the parser: collaborators only read
// it and must reparse for further edits.
type Tree struct {
	// Source is the document this tree was parsed from.
	Source *SourceText

	// Tokens is the full token stream covering every byte.
	Tokens []Token

	// Diagnostics are the non-fatal anomalies found during the parse.
	Diagnostics []Diagnostic

	// Checkpoints are scanner states at top-level block boundaries, in
	// document order.
	Checkpoints []Checkpoint

	nodes []Node
	root  NodeID

	// parents is the reverse child index, built on first ParentOf call.
	parents []NodeID
}

// NewTree creates an empty tree over the given source.
func NewTree(source *SourceText) *Tree {
	return &Tree{
		Source: source,
		root:   NilNode,
	}
}

// NewNode appends a node of the given kind to the arena and returns its ID.
func (t *Tree) NewNode(kind NodeKind) NodeID {
	t.nodes = append(t.nodes, Node{Kind: kind})
	t.parents = nil
	return NodeID(len(t.nodes) - 1)
}

// Node returns the arena record for id, or nil if id is out of range.
// The parser uses this to populate spans and attributes while building;
// readers must treat the record as immutable.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// NodeCount returns the number of nodes in the arena.
func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

// Root returns the document root, or NilNode for an empty tree.
func (t *Tree) Root() NodeID {
	return t.root
}

// SetRoot sets the document root.
func (t *Tree) SetRoot(id NodeID) {
	t.root = id
}

// AppendChild appends child to parent's child list.
func (t *Tree) AppendChild(parent, child NodeID) {
	p := t.Node(parent)
	if p == nil || t.Node(child) == nil {
		return
	}
	p.Children = append(p.Children, child)
	t.parents = nil
}

// Kind returns the node kind, or NodeDocument for an invalid id.
func (t *Tree) Kind(id NodeID) NodeKind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return NodeDocument
}

// Span returns the byte range the node covers.
func (t *Tree) Span(id NodeID) SourceRange {
	if n := t.Node(id); n != nil {
		return n.Span
	}
	return SourceRange{}
}

// Children returns the node's direct children in document order.
// The returned slice is owned by the tree and must not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// Text returns the source text the node spans.
func (t *Tree) Text(id NodeID) string {
	n := t.Node(id)
	if n == nil || t.Source == nil {
		return ""
	}
	content := t.Source.Content()
	if n.Span.StartOffset < 0 || n.Span.EndOffset > len(content) {
		return ""
	}
	return string(content[n.Span.StartOffset:n.Span.EndOffset])
}

// Field returns the named field of a node. Only the fields a node kind
// defines are populated: content, language, marker, name, text, url.
// Returns ("", false) when the node does not define the field.
func (t *Tree) Field(id NodeID, name string) (string, bool) {
	n := t.Node(id)
	if n == nil || n.Attrs == nil {
		return "", false
	}
	a := n.Attrs

	switch name {
	case "content":
		if n.Kind == NodeCodeBlock || n.Kind == NodeLatexBlock {
			return strings.Join(a.ContentLines, "\n"), true
		}
	case "language":
		if n.Kind == NodeCodeBlock && a.Language != "" {
			return a.Language, true
		}
	case "marker":
		if (n.Kind == NodeHeading || n.Kind == NodeListItem) && a.Marker != "" {
			return a.Marker, true
		}
	case "name":
		if (n.Kind == NodeTagLine || n.Kind == NodeLabel || n.Kind == NodeHeading) && a.Name != "" {
			return a.Name, true
		}
	case "text":
		switch n.Kind {
		case NodeArticleHeader, NodeHeading, NodeLabel, NodeLink, NodeInlineCode, NodeText:
			return a.Text, true
		}
	case "url":
		if n.Kind == NodeLink && a.HasURL {
			return a.URL, true
		}
	}
	return "", false
}

// ParentOf returns the parent of id, or NilNode for the root or an invalid
// id. The reverse index is built lazily on first use.
func (t *Tree) ParentOf(id NodeID) NodeID {
	if id < 0 || int(id) >= len(t.nodes) {
		return NilNode
	}
	if t.parents == nil {
		t.parents = make([]NodeID, len(t.nodes))
		for i := range t.parents {
			t.parents[i] = NilNode
		}
		for parent := range t.nodes {
			for _, child := range t.nodes[parent].Children {
				if child >= 0 && int(child) < len(t.parents) {
					t.parents[child] = NodeID(parent)
				}
			}
		}
	}
	return t.parents[id]
}

// SourcePositionOf returns the line/column range for a node.
func (t *Tree) SourcePositionOf(id NodeID) SourcePosition {
	n := t.Node(id)
	if n == nil || t.Source == nil {
		return SourcePosition{}
	}
	startLine, startCol := t.Source.LineAt(n.Span.StartOffset)
	endLine, endCol := t.Source.LineAt(n.Span.EndOffset)
	return SourcePosition{
		StartLine:   startLine,
		StartColumn: startCol,
		EndLine:     endLine,
		EndColumn:   endCol,
	}
}

// Reconstruct rebuilds the exact source text from the token stream.
// Synthetic tokens contribute nothing, so for any valid parse the result is
// byte-identical to the input.
func (t *Tree) Reconstruct() []byte {
	if t.Source == nil {
		return nil
	}
	content := t.Source.Content()
	out := make([]byte, 0, len(content))
	for _, tok := range t.Tokens {
		out = append(out, tok.Text(content)...)
	}
	return out
}
