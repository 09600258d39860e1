package zxast

//go:generate stringer -type=TokenKind -trimprefix=Tok

// TokenKind classifies the type of a token in Zortex source.
type TokenKind uint16

// Token kinds cover every byte in the source, classifying Zortex syntax
// elements. Indent, Dedent, and EOF are synthetic zero-width tokens.
const (
	TokText TokenKind = iota
	TokWhitespace
	TokNewline

	TokArticleMarker // '@@' at line start
	TokTagMarker     // '@' at line start
	TokTagName       // name after a tag marker
	TokHeadingMarker // '#' through '######'
	TokColon         // ':' after a label name
	TokLabelName     // 'name' before a label colon
	TokDash          // '-' list marker
	TokOrderedMarker // '1.', '23.', etc.
	TokCodeFence     // '```'
	TokFenceInfo     // language identifier after an opening fence
	TokLatexFence    // '$$'
	TokStar          // '*'
	TokStarStar      // '**'
	TokStarStarStar  // '***'
	TokBacktick      // '`'
	TokBracketOpen   // '['
	TokBracketClose  // ']'
	TokParenOpen     // '('
	TokParenClose    // ')'

	TokIndent // zero-width: indentation level opened
	TokDedent // zero-width: indentation level closed
	TokEOF    // zero-width: end of input
)

// Token represents a classified span of bytes in the source.
// Real tokens are contiguous and non-overlapping, covering [0, len(content));
// synthetic tokens (Indent, Dedent, EOF) have StartOffset == EndOffset.
type Token struct {
	// Kind classifies what this token represents.
	Kind TokenKind

	// StartOffset is the byte index where this token begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where this token ends (exclusive).
	EndOffset int

	// Line is the 1-based line number of the token start.
	Line int

	// Column is the 1-based byte column of the token start.
	Column int
}

// Text returns the source text of this token from the given content.
func (t Token) Text(content []byte) []byte {
	if t.StartOffset < 0 || t.EndOffset > len(content) || t.StartOffset > t.EndOffset {
		return nil
	}
	return content[t.StartOffset:t.EndOffset]
}

// Len returns the length of this token in bytes.
func (t Token) Len() int {
	return t.EndOffset - t.StartOffset
}

// IsSynthetic returns true for zero-width tokens that carry structure but no
// source bytes.
func (t Token) IsSynthetic() bool {
	switch t.Kind {
	case TokIndent, TokDedent, TokEOF:
		return true
	default:
		return false
	}
}

// ValidateTokens checks that a token slice is valid:
// - Non-synthetic tokens are contiguous and non-overlapping.
// - Together they cover the full content range [0, contentLen).
// - Synthetic tokens sit exactly at the current coverage position.
// Returns true if valid, false otherwise.
func ValidateTokens(tokens []Token, contentLen int) bool {
	pos := 0
	for _, tok := range tokens {
		if tok.IsSynthetic() {
			if tok.StartOffset != pos || tok.EndOffset != pos {
				return false
			}
			continue
		}
		if tok.StartOffset != pos || tok.EndOffset < tok.StartOffset {
			return false
		}
		pos = tok.EndOffset
	}
	return pos == contentLen
}
