package parser

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/t-wilkinson/zortex/pkg/langdetect"
	"github.com/t-wilkinson/zortex/pkg/zxast"
)

// Options configures a Parser.
type Options struct {
	// MaxIndentDepth caps simultaneously open indentation levels.
	// Values outside [1, DefaultMaxIndentDepth] fall back to the default.
	MaxIndentDepth int

	// StrictIndentation upgrades malformed-indentation diagnostics from
	// warnings to errors. The parse itself still recovers.
	StrictIndentation bool

	// DetectLanguage runs a classifier over unlabeled code blocks and
	// records the guess in the DetectedLanguage attribute.
	DetectLanguage bool
}

// DefaultOptions returns the options used by the package-level Parse.
func DefaultOptions() Options {
	return Options{MaxIndentDepth: DefaultMaxIndentDepth}
}

// Parser turns Zortex source into syntax trees. The zero value is not
// usable; construct with New. A Parser is stateless between calls and safe
// for concurrent use.
type Parser struct {
	opts   Options
	logger *log.Logger
}

// New creates a Parser with the given options.
func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

// SetLogger attaches a logger for debug output. Nil disables logging.
func (p *Parser) SetLogger(logger *log.Logger) {
	p.logger = logger
}

// Parse parses content with default options and returns the tree plus the
// final scanner snapshot.
func Parse(content []byte) (*zxast.Tree, []byte) {
	return New(DefaultOptions()).Parse(content)
}

// Parse parses content from scratch. It never fails: malformed input
// degrades to paragraphs and diagnostics. The returned snapshot is the
// scanner state at end of input, before the dedent flush, so appends can
// resume from it.
func (p *Parser) Parse(content []byte) (*zxast.Tree, []byte) {
	src := zxast.NewSourceText(content)
	tracker := NewIndentTrackerWithDepth(p.opts.MaxIndentDepth)
	res := newLexer(src.Content(), tracker).run()

	tree := p.buildTree(src, res, nil, nil)
	return tree, res.finalSnapshot
}

// Reparse parses content after an edit to old's source, reusing the
// unchanged prefix of old where possible. snapshot is the scanner state the
// caller holds for the region ahead of the edit; a corrupt snapshot resets
// the scanner, adds a corrupt-snapshot diagnostic, and falls back to a full
// parse. Reparse with a nil old tree is a full parse.
func (p *Parser) Reparse(old *zxast.Tree, snapshot []byte, edit zxast.Edit, content []byte) (*zxast.Tree, []byte) {
	probe := NewIndentTrackerWithDepth(p.opts.MaxIndentDepth)
	if err := probe.Restore(snapshot); err != nil {
		tree, final := p.Parse(content)
		tree.Diagnostics = append([]zxast.Diagnostic{{
			Code:     zxast.DiagCorruptSnapshot,
			Severity: zxast.SeverityWarning,
			Message:  "scanner snapshot could not be restored; reparsed from scratch",
			Line:     1,
			Column:   1,
		}}, tree.Diagnostics...)
		return tree, final
	}

	if old == nil {
		return p.Parse(content)
	}

	cp, ok := boundaryBefore(old, edit.StartOffset)
	if !ok {
		return p.Parse(content)
	}

	src := zxast.NewSourceText(content)
	tracker := NewIndentTrackerWithDepth(p.opts.MaxIndentDepth)
	if err := tracker.Restore(cp.Snapshot); err != nil {
		// Recorded checkpoints are always valid; defensive fallback only.
		return p.Parse(content)
	}

	prefix := old.Tokens[:cp.TokenIndex]
	line := 1
	if cp.TokenIndex > 0 {
		line = prefix[cp.TokenIndex-1].Line
		if prefix[cp.TokenIndex-1].Kind == zxast.TokNewline {
			line++
		}
	}

	res := newLexerAt(src.Content(), cp.Offset, line, tracker).run()

	if p.logger != nil {
		p.logger.Debug("incremental reparse",
			"boundary", cp.Offset,
			"reused_tokens", len(prefix),
			"relexed_bytes", len(content)-cp.Offset)
	}

	tree := p.buildTree(src, res, old, &cp)
	return tree, res.finalSnapshot
}

// buildTree runs the block parser over the token stream and finishes the
// tree: spans, diagnostics, checkpoints, optional language detection. When
// old and cp are set, the prefix of old before cp is copied instead of
// reparsed.
func (p *Parser) buildTree(src *zxast.SourceText, res lexResult, old *zxast.Tree, cp *zxast.Checkpoint) *zxast.Tree {
	tree := zxast.NewTree(src)

	var tokens []zxast.Token
	var diags []zxast.Diagnostic
	var checkpoints []zxast.Checkpoint
	bp := &blockParser{tree: tree, content: src.Content()}

	if old != nil && cp != nil {
		prefix := old.Tokens[:cp.TokenIndex]
		tokens = make([]zxast.Token, 0, len(prefix)+len(res.tokens))
		tokens = append(tokens, prefix...)
		tokens = append(tokens, res.tokens...)

		for _, d := range old.Diagnostics {
			if d.Span.EndOffset <= cp.Offset && d.Code != zxast.DiagCorruptSnapshot {
				diags = append(diags, d)
			}
		}
		for _, c := range old.Checkpoints {
			if c.Offset < cp.Offset {
				checkpoints = append(checkpoints, c)
			}
		}
		for _, c := range res.checkpoints {
			c.TokenIndex += len(prefix)
			checkpoints = append(checkpoints, c)
		}

		bp.toks = tokens
		bp.pos = cp.TokenIndex
		root := tree.NewNode(zxast.NodeDocument)
		inHeader := copyPrefixChildren(tree, root, old, cp.Offset)
		bp.sections = rebuildSections(tree, root)
		bp.parseDocBody(root, inHeader)
		tree.SetRoot(root)
	} else {
		tokens = res.tokens
		checkpoints = res.checkpoints
		bp.toks = tokens
		tree.SetRoot(bp.parseDocument())
	}

	diags = append(diags, res.diags...)
	diags = append(diags, bp.diags...)

	finalizeSpans(tree, tree.Root())
	if root := tree.Node(tree.Root()); root != nil {
		root.Span = zxast.SourceRange{StartOffset: 0, EndOffset: len(src.Content())}
	}

	if p.opts.StrictIndentation {
		for i := range diags {
			if diags[i].Code == zxast.DiagMalformedIndentation {
				diags[i].Severity = zxast.SeverityError
			}
		}
	}
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Span.StartOffset < diags[j].Span.StartOffset
	})

	tree.Tokens = tokens
	tree.Diagnostics = diags
	tree.Checkpoints = filterCheckpoints(checkpoints, tree)

	if p.opts.DetectLanguage {
		p.detectLanguages(tree)
	}
	return tree
}

// boundaryBefore returns the last checkpoint strictly before the line the
// edit starts on. The boundary line itself is relexed, and block decisions
// made while parsing the prefix peek at most one line ahead, so everything
// they saw must be untouched by the edit. The first checkpoint (offset 0) is
// not a useful boundary: resuming there is a full parse.
func boundaryBefore(old *zxast.Tree, offset int) (zxast.Checkpoint, bool) {
	limit := offset
	if old.Source != nil {
		if line, _ := old.Source.LineAt(offset); line > 0 {
			limit = old.Source.Line(line).StartOffset
		}
	}

	var best zxast.Checkpoint
	found := false
	for _, c := range old.Checkpoints {
		if c.Offset > 0 && c.Offset < limit && c.TokenIndex <= len(old.Tokens) {
			best = c
			found = true
		}
	}
	return best, found
}

// copyPrefixChildren copies old root children that end at or before the
// boundary into dst's root. Returns whether the copied prefix is still all
// document header (article and tags), so the resumed parse can accept more
// tag lines.
func copyPrefixChildren(dst *zxast.Tree, dstRoot zxast.NodeID, old *zxast.Tree, boundary int) bool {
	inHeader := true
	for _, child := range old.Children(old.Root()) {
		span := old.Span(child)
		if span.EndOffset > boundary {
			break
		}
		id := copySubtree(dst, old, child)
		dst.AppendChild(dstRoot, id)
		switch old.Kind(child) {
		case zxast.NodeArticleHeader, zxast.NodeTagLine:
		default:
			inHeader = false
		}
	}
	return inHeader
}

// copySubtree deep-copies a node and its descendants into dst.
func copySubtree(dst *zxast.Tree, src *zxast.Tree, id zxast.NodeID) zxast.NodeID {
	n := src.Node(id)
	nid := dst.NewNode(n.Kind)

	dn := dst.Node(nid)
	dn.Span = n.Span
	if n.Attrs != nil {
		attrs := *n.Attrs
		attrs.ContentLines = append([]string(nil), n.Attrs.ContentLines...)
		dn.Attrs = &attrs
	}

	for _, child := range n.Children {
		cid := copySubtree(dst, src, child)
		dst.AppendChild(nid, cid)
	}
	return nid
}

// rebuildSections reconstructs the open heading stack from the rightmost
// spine of the copied prefix, so resumed blocks attach to the section that
// was open at the boundary.
func rebuildSections(t *zxast.Tree, root zxast.NodeID) []section {
	sections := []section{{id: root, level: 0}}
	cur := root
	for {
		children := t.Children(cur)
		if len(children) == 0 {
			break
		}
		last := children[len(children)-1]
		n := t.Node(last)
		if n.Kind != zxast.NodeHeading || n.Attrs == nil {
			break
		}
		sections = append(sections, section{id: last, level: n.Attrs.Level})
		cur = last
	}
	return sections
}

// finalizeSpans widens every container span to cover its children,
// bottom-up.
func finalizeSpans(t *zxast.Tree, id zxast.NodeID) zxast.SourceRange {
	n := t.Node(id)
	if n == nil {
		return zxast.SourceRange{}
	}
	span := n.Span
	for _, child := range n.Children {
		cs := finalizeSpans(t, child)
		if cs.StartOffset < span.StartOffset {
			span.StartOffset = cs.StartOffset
		}
		if cs.EndOffset > span.EndOffset {
			span.EndOffset = cs.EndOffset
		}
	}
	n.Span = span
	return span
}

// filterCheckpoints keeps only checkpoints that land exactly on a top-level
// block start. Mid-block resume points cannot be used for subtree reuse.
func filterCheckpoints(checkpoints []zxast.Checkpoint, t *zxast.Tree) []zxast.Checkpoint {
	starts := make(map[int]bool)
	for _, child := range t.Children(t.Root()) {
		starts[t.Span(child).StartOffset] = true
	}
	kept := checkpoints[:0]
	for _, c := range checkpoints {
		if starts[c.Offset] {
			kept = append(kept, c)
		}
	}
	return kept
}

// detectLanguages classifies the content of code blocks that carry no
// explicit language. The guess goes in DetectedLanguage, never in the
// language field.
func (p *Parser) detectLanguages(t *zxast.Tree) {
	for _, id := range t.FindByKind(t.Root(), zxast.NodeCodeBlock) {
		n := t.Node(id)
		if n.Attrs == nil || n.Attrs.Language != "" || len(n.Attrs.ContentLines) == 0 {
			continue
		}
		n.Attrs.DetectedLanguage = langdetect.Detect([]byte(strings.Join(n.Attrs.ContentLines, "\n")))
	}
}
