package parser

import (
	"testing"

	"github.com/t-wilkinson/zortex/pkg/zxast"
)

func lexAll(content string) lexResult {
	return newLexer([]byte(content), NewIndentTracker()).run()
}

func kindsOf(tokens []zxast.Token) []zxast.TokenKind {
	kinds := make([]zxast.TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func assertKinds(t *testing.T, content string, want []zxast.TokenKind) {
	t.Helper()

	res := lexAll(content)
	got := kindsOf(res.tokens)
	if len(got) != len(want) {
		t.Fatalf("%q: expected %d tokens %v, got %d: %v", content, len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%q: token %d: expected %v, got %v", content, i, want[i], got[i])
		}
	}
	if !zxast.ValidateTokens(res.tokens, len(content)) {
		t.Errorf("%q: token stream does not cover the input", content)
	}
}

func TestLexer_LineStartConstructs(t *testing.T) {
	t.Parallel()

	assertKinds(t, "@@Notes\n", []zxast.TokenKind{
		zxast.TokArticleMarker, zxast.TokText, zxast.TokNewline, zxast.TokEOF,
	})
	assertKinds(t, "@work\n", []zxast.TokenKind{
		zxast.TokTagMarker, zxast.TokTagName, zxast.TokNewline, zxast.TokEOF,
	})
	assertKinds(t, "## Topic\n", []zxast.TokenKind{
		zxast.TokHeadingMarker, zxast.TokWhitespace, zxast.TokText, zxast.TokNewline, zxast.TokEOF,
	})
	assertKinds(t, "Key: value\n", []zxast.TokenKind{
		zxast.TokLabelName, zxast.TokColon, zxast.TokText, zxast.TokNewline, zxast.TokEOF,
	})
	assertKinds(t, "- item\n", []zxast.TokenKind{
		zxast.TokDash, zxast.TokWhitespace, zxast.TokText, zxast.TokNewline, zxast.TokEOF,
	})
	assertKinds(t, "12. item\n", []zxast.TokenKind{
		zxast.TokOrderedMarker, zxast.TokWhitespace, zxast.TokText, zxast.TokNewline, zxast.TokEOF,
	})
}

func TestLexer_NotQuiteMarkers(t *testing.T) {
	t.Parallel()

	// 7+ hashes, decimals, and URLs are plain text lines.
	assertKinds(t, "####### too deep\n", []zxast.TokenKind{
		zxast.TokText, zxast.TokNewline, zxast.TokEOF,
	})
	assertKinds(t, "1.5 miles\n", []zxast.TokenKind{
		zxast.TokText, zxast.TokNewline, zxast.TokEOF,
	})
	assertKinds(t, "http://example.com\n", []zxast.TokenKind{
		zxast.TokText, zxast.TokNewline, zxast.TokEOF,
	})
	// A dash glued to text is not a list marker.
	assertKinds(t, "-dash\n", []zxast.TokenKind{
		zxast.TokText, zxast.TokNewline, zxast.TokEOF,
	})
}

func TestLexer_IndentTokens(t *testing.T) {
	t.Parallel()

	assertKinds(t, "- a\n  - b\n- c\n", []zxast.TokenKind{
		zxast.TokDash, zxast.TokWhitespace, zxast.TokText, zxast.TokNewline,
		zxast.TokWhitespace, zxast.TokIndent,
		zxast.TokDash, zxast.TokWhitespace, zxast.TokText, zxast.TokNewline,
		zxast.TokDedent,
		zxast.TokDash, zxast.TokWhitespace, zxast.TokText, zxast.TokNewline,
		zxast.TokEOF,
	})
}

func TestLexer_DedentsFlushAtEOF(t *testing.T) {
	t.Parallel()

	res := lexAll("a\n  b\n    c")
	opens, closes := 0, 0
	for _, tok := range res.tokens {
		switch tok.Kind {
		case zxast.TokIndent:
			opens++
		case zxast.TokDedent:
			closes++
		}
	}
	if opens != 2 || closes != 2 {
		t.Errorf("expected 2 opens and 2 closes, got %d and %d", opens, closes)
	}
}

func TestLexer_BlankLinesSkipIndentation(t *testing.T) {
	t.Parallel()

	// The indented blank line must not open or close anything.
	res := lexAll("- a\n  - b\n      \n  - c\n")
	opens, closes := 0, 0
	for _, tok := range res.tokens {
		switch tok.Kind {
		case zxast.TokIndent:
			opens++
		case zxast.TokDedent:
			closes++
		}
	}
	if opens != 1 {
		t.Errorf("expected 1 open, got %d", opens)
	}
	if closes != 1 {
		t.Errorf("expected 1 close from the EOF flush, got %d", closes)
	}
}

func TestLexer_FencedBlocks(t *testing.T) {
	t.Parallel()

	assertKinds(t, "```lua\nprint(1)\n```\n", []zxast.TokenKind{
		zxast.TokCodeFence, zxast.TokFenceInfo, zxast.TokNewline,
		zxast.TokText, zxast.TokNewline,
		zxast.TokCodeFence, zxast.TokNewline,
		zxast.TokEOF,
	})
	assertKinds(t, "$$\nE = mc^2\n$$\n", []zxast.TokenKind{
		zxast.TokLatexFence, zxast.TokNewline,
		zxast.TokText, zxast.TokNewline,
		zxast.TokLatexFence, zxast.TokNewline,
		zxast.TokEOF,
	})

	// Markers inside the fence stay raw text.
	assertKinds(t, "```\n# not a heading\n- not a list\n```\n", []zxast.TokenKind{
		zxast.TokCodeFence, zxast.TokNewline,
		zxast.TokText, zxast.TokNewline,
		zxast.TokText, zxast.TokNewline,
		zxast.TokCodeFence, zxast.TokNewline,
		zxast.TokEOF,
	})
}

func TestLexer_InlineTokens(t *testing.T) {
	t.Parallel()

	assertKinds(t, "***a*** **b** *c*\n", []zxast.TokenKind{
		zxast.TokStarStarStar, zxast.TokText, zxast.TokStarStarStar, zxast.TokText,
		zxast.TokStarStar, zxast.TokText, zxast.TokStarStar, zxast.TokText,
		zxast.TokStar, zxast.TokText, zxast.TokStar,
		zxast.TokNewline, zxast.TokEOF,
	})
	assertKinds(t, "x `code` y\n", []zxast.TokenKind{
		zxast.TokText, zxast.TokBacktick, zxast.TokText, zxast.TokBacktick, zxast.TokText,
		zxast.TokNewline, zxast.TokEOF,
	})
	assertKinds(t, "see [Example](http://x.dev)\n", []zxast.TokenKind{
		zxast.TokText, zxast.TokBracketOpen, zxast.TokText, zxast.TokBracketClose,
		zxast.TokParenOpen, zxast.TokText, zxast.TokParenClose,
		zxast.TokNewline, zxast.TokEOF,
	})
}

func TestLexer_CRLF(t *testing.T) {
	t.Parallel()

	res := lexAll("a\r\nb\r\n")
	if !zxast.ValidateTokens(res.tokens, len("a\r\nb\r\n")) {
		t.Fatal("token stream does not cover CRLF input")
	}

	content := []byte("a\r\nb\r\n")
	for _, tok := range res.tokens {
		if tok.Kind == zxast.TokNewline {
			if got := string(tok.Text(content)); got != "\r\n" {
				t.Errorf("expected CRLF newline token, got %q", got)
			}
		}
	}
}

func TestLexer_Checkpoints(t *testing.T) {
	t.Parallel()

	res := lexAll("@@T\nalpha\n  beta\ngamma\n")

	// Unindented non-blank lines at base state: "@@T", "alpha", and
	// "gamma". "gamma" qualifies because the close it triggers lands in the
	// stream before the checkpoint.
	var offsets []int
	for _, cp := range res.checkpoints {
		offsets = append(offsets, cp.Offset)
	}
	want := []int{0, 4, 17}
	if len(offsets) != len(want) {
		t.Fatalf("expected checkpoints at %v, got %v", want, offsets)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("checkpoint %d: expected offset %d, got %d", i, want[i], offsets[i])
		}
	}

	// Every recorded snapshot restores cleanly.
	for _, cp := range res.checkpoints {
		tr := NewIndentTracker()
		if err := tr.Restore(cp.Snapshot); err != nil {
			t.Errorf("checkpoint at %d: snapshot does not restore: %v", cp.Offset, err)
		}
		if !tr.AtBase() {
			t.Errorf("checkpoint at %d: expected base-state snapshot", cp.Offset)
		}
	}
}

func TestLexer_FinalSnapshotResumes(t *testing.T) {
	t.Parallel()

	res := lexAll("a\n  b\n")

	// The final snapshot is taken before the EOF flush, with the level
	// still open, so appending can continue where the document left off.
	tr := NewIndentTracker()
	if err := tr.Restore(res.finalSnapshot); err != nil {
		t.Fatalf("final snapshot does not restore: %v", err)
	}
	if tr.Depth() != 2 || tr.Top() != 2 {
		t.Errorf("expected depth 2 top 2, got depth %d top %d", tr.Depth(), tr.Top())
	}
}

func TestLexer_MisalignedIndentDiagnostic(t *testing.T) {
	t.Parallel()

	res := lexAll("- a\n    - b\n  - c\n")

	found := false
	for _, d := range res.diags {
		if d.Code == zxast.DiagMalformedIndentation {
			found = true
			if d.Line != 3 {
				t.Errorf("expected diagnostic on line 3, got %d", d.Line)
			}
		}
	}
	if !found {
		t.Error("expected a malformed-indentation diagnostic")
	}
	if !zxast.ValidateTokens(res.tokens, len("- a\n    - b\n  - c\n")) {
		t.Error("recovered stream must still cover the input")
	}
}
