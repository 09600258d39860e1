package parser_test

import (
	"bytes"
	"testing"

	"github.com/t-wilkinson/zortex/pkg/parser"
	"github.com/t-wilkinson/zortex/pkg/zxast"
)

// FuzzParse fuzzes the full parser with random input.
func FuzzParse(f *testing.F) {
	// Add seed corpus.
	seeds := []string{
		"",
		"Hello, world!",
		"@@Article Title",
		"@@Notes\n@work\n@personal\n",
		"# Heading",
		"###### Deep heading",
		"####### not a heading",
		"Project: Zortex",
		"Key: value\nOther: thing\n",
		"- list\n- items",
		"1. first\n2. second",
		"- a\n  - b\n    - c\n- d\n",
		"- a\n   - misaligned\n  - recovered\n",
		"```\ncode\n```",
		"```lua\nprint(1)\n```\n",
		"```\nunterminated",
		"$$\nE = mc^2\n$$\n",
		"*emphasis* and **strong** and ***both***",
		"**unmatched",
		"`code` and [link](url) and [bare]",
		"line1\nline2",
		"line1\r\nline2\r\n",
		"   \n\n  \n",
		"@@T\n@tag\n\n# A\nStatus: x\n- i\n  - j\n\n```go\nf()\n```\npara\n",
	}

	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		// Parse never panics and never fails.
		tree, snapshot := parser.Parse(data)
		if tree == nil {
			t.Fatal("expected non-nil tree")
		}

		// Tokens cover every byte.
		if !zxast.ValidateTokens(tree.Tokens, len(data)) {
			t.Errorf("tokens do not cover input of length %d", len(data))
		}

		// The token stream reconstructs the input exactly.
		if got := tree.Reconstruct(); !bytes.Equal(got, data) {
			t.Errorf("reconstruct mismatch: got %q, want %q", got, data)
		}

		// The root is a document covering the whole input.
		if tree.Kind(tree.Root()) != zxast.NodeDocument {
			t.Errorf("root kind = %v, want NodeDocument", tree.Kind(tree.Root()))
		}

		// Every span is sane and inside the input.
		err := tree.Walk(tree.Root(), func(id zxast.NodeID) error {
			span := tree.Span(id)
			if span.StartOffset < 0 || span.EndOffset > len(data) || span.StartOffset > span.EndOffset {
				t.Errorf("node %d has invalid span %+v", id, span)
			}
			return nil
		})
		if err != nil {
			t.Errorf("walk error: %v", err)
		}

		// The returned snapshot restores cleanly.
		if restoreErr := parser.NewIndentTracker().Restore(snapshot); restoreErr != nil {
			t.Errorf("final snapshot does not restore: %v", restoreErr)
		}
	})
}

// FuzzReparse verifies that incremental reparsing after an edit produces the
// same tree a full parse of the edited content would.
func FuzzReparse(f *testing.F) {
	// Seeds are (original, edit offset, replaced length, replacement).
	f.Add([]byte("@@T\n\n# A\nalpha\n\n# B\nbeta\n"), 20, 4, "gamma")
	f.Add([]byte("# A\n- a\n  - b\n\npara\n"), 15, 4, "text")
	f.Add([]byte("a\nb\nc\n"), 2, 1, "- item")
	f.Add([]byte("Key: value\n"), 5, 5, "other")
	f.Add([]byte("```\ncode\n```\n"), 4, 4, "more")
	f.Add([]byte(""), 0, 0, "@@New\n")

	f.Fuzz(func(t *testing.T, original []byte, start, oldLen int, replacement string) {
		p := parser.New(parser.DefaultOptions())
		oldTree, oldSnapshot := p.Parse(original)

		src := zxast.NewSourceText(original)
		next, edit := src.Apply(start, oldLen, []byte(replacement))

		fresh, _ := p.Parse(next.Content())
		incr, _ := p.Reparse(oldTree, oldSnapshot, edit, next.Content())

		if !bytes.Equal(incr.Reconstruct(), next.Content()) {
			t.Errorf("incremental reconstruct mismatch for edit %+v", edit)
		}
		if !zxast.ValidateTokens(incr.Tokens, next.Len()) {
			t.Errorf("incremental tokens do not cover input for edit %+v", edit)
		}
		if !sameShape(fresh, incr, fresh.Root(), incr.Root()) {
			t.Errorf("incremental tree differs from full parse for edit %+v", edit)
		}
	})
}

func TestSameShape(t *testing.T) {
	t.Parallel()

	a, _ := parser.Parse([]byte("```lua\nx\n```\n"))
	b, _ := parser.Parse([]byte("```lua\nx\n```\n"))
	if !sameShape(a, b, a.Root(), b.Root()) {
		t.Error("identical parses must compare equal")
	}

	// Same spans, different language attribute.
	c, _ := parser.Parse([]byte("```tcl\nx\n```\n"))
	if sameShape(a, c, a.Root(), c.Root()) {
		t.Error("differing language attributes must not compare equal")
	}

	// Same spans, different fence content.
	d, _ := parser.Parse([]byte("```lua\ny\n```\n"))
	if sameShape(a, d, a.Root(), d.Root()) {
		t.Error("differing content lines must not compare equal")
	}
}

// sameShape compares two trees node by node: kind, span, attributes, and
// child structure.
func sameShape(a, b *zxast.Tree, aID, bID zxast.NodeID) bool {
	an, bn := a.Node(aID), b.Node(bID)
	if an == nil || bn == nil {
		return an == bn
	}
	if an.Kind != bn.Kind || an.Span != bn.Span {
		return false
	}
	if (an.Attrs == nil) != (bn.Attrs == nil) {
		return false
	}
	if an.Attrs != nil {
		aa, ba := an.Attrs, bn.Attrs
		if aa.Level != ba.Level || aa.Marker != ba.Marker || aa.Name != ba.Name ||
			aa.Text != ba.Text || aa.URL != ba.URL || aa.HasURL != ba.HasURL ||
			aa.Language != ba.Language || aa.DetectedLanguage != ba.DetectedLanguage {
			return false
		}
		if len(aa.ContentLines) != len(ba.ContentLines) {
			return false
		}
		for i := range aa.ContentLines {
			if aa.ContentLines[i] != ba.ContentLines[i] {
				return false
			}
		}
	}
	if len(an.Children) != len(bn.Children) {
		return false
	}
	for i := range an.Children {
		if !sameShape(a, b, an.Children[i], bn.Children[i]) {
			return false
		}
	}
	return true
}
