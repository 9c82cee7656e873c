package lex

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, src string) []Token {
	t.Helper()
	l := NewFromString(src)
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		toks = append(toks, tok)
	}
	return toks
}

// CharList text is Unicode-normalized into Normalized, leaving Text
// (the literal source slice) untouched; a composed and a decomposed
// spelling of the same character sequence must normalize to the same
// string even though their raw Text differs.
func TestNormalizedTextConvergesComposedAndDecomposed(t *testing.T) {
	composed := allTokens(t, "\"caf\u00e9\"")    // single precomposed e-acute rune
	decomposed := allTokens(t, "\"cafe\u0301\"") // "e" + combining acute accent
	require.Len(t, composed, 1)
	require.Len(t, decomposed, 1)
	assert.Equal(t, CharList, composed[0].Type)
	assert.Equal(t, CharList, decomposed[0].Type)
	assert.NotEqual(t, composed[0].Text, decomposed[0].Text)
	assert.Equal(t, composed[0].Normalized, decomposed[0].Normalized)
}

// spec §8 scenario: "3.14.1" lexes to Number("3.14"), Period("."), Number("1").
func TestDotFloatAmbiguity(t *testing.T) {
	toks := allTokens(t, "3.14.1")
	require.Len(t, toks, 3)
	assert.Equal(t, Number, toks[0].Type)
	assert.Equal(t, "3.14", toks[0].Text)
	assert.Equal(t, Period, toks[1].Type)
	assert.Equal(t, ".", toks[1].Text)
	assert.Equal(t, Number, toks[2].Type)
	assert.Equal(t, "1", toks[2].Text)
}

// spec §8 scenario: an integer range "1..5" lexes to Number, Range, Number.
func TestRangeLexesAsThreeTokens(t *testing.T) {
	toks := allTokens(t, "1..5")
	require.Len(t, toks, 3)
	assert.Equal(t, Number, toks[0].Type)
	assert.Equal(t, "1", toks[0].Text)
	assert.Equal(t, Range, toks[1].Type)
	assert.Equal(t, "..", toks[1].Text)
	assert.Equal(t, Number, toks[2].Type)
	assert.Equal(t, "5", toks[2].Text)
}

// spec §8 scenario: triple-quoted char list with embedded single quotes.
func TestTripleQuotedCharList(t *testing.T) {
	src := `"""Hello "sub quote" World!"""`
	toks := allTokens(t, src)
	require.Len(t, toks, 1)
	assert.Equal(t, CharList, toks[0].Type)
	assert.Equal(t, src, toks[0].Text)
}

func TestEmptyCharList(t *testing.T) {
	toks := allTokens(t, `""`)
	require.Len(t, toks, 1)
	assert.Equal(t, CharList, toks[0].Type)
	assert.Equal(t, `""`, toks[0].Text)
}

func TestSingleQuotedCharList(t *testing.T) {
	toks := allTokens(t, `"hi"`)
	require.Len(t, toks, 1)
	assert.Equal(t, CharList, toks[0].Type)
	assert.Equal(t, `"hi"`, toks[0].Text)
}

// value.1 is a member access, not a malformed float (spec §9).
func TestMemberAccessNotFloat(t *testing.T) {
	toks := allTokens(t, "value.1")
	require.Len(t, toks, 3)
	assert.Equal(t, Identifier, toks[0].Type)
	assert.Equal(t, Period, toks[1].Type)
	assert.Equal(t, Number, toks[2].Type)
}

// Testable property 1: token text concatenation reconstructs the input.
func TestTokenRoundTrip(t *testing.T) {
	cases := []string{
		"5 == 5 + 5",
		"10 , 20 , 30",
		"10 20 30",
		"value.1",
		"3.14.1",
		"1..5",
		":sym foo_bar `infix` 123",
	}
	for _, src := range cases {
		toks := allTokens(t, src)
		var rebuilt string
		for _, tok := range toks {
			rebuilt += tok.Text
		}
		assert.Equal(t, src, rebuilt, "round trip for %q", src)
	}
}

// Testable property 2: token positions are lexicographically
// non-decreasing.
func TestPositionMonotonicity(t *testing.T) {
	toks := allTokens(t, "foo bar\nbaz\n\nqux")
	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1], toks[i]
		assert.True(t,
			prev.Row < cur.Row || (prev.Row == cur.Row && prev.Column <= cur.Column),
			"token %d (%v) should not precede token %d (%v)", i-1, prev, i, cur)
	}
}

// Testable property 3: every operator lexeme lexes alone to exactly
// one token of its registered type.
func TestOperatorLongestMatch(t *testing.T) {
	for _, entry := range defaultOperators {
		toks := allTokens(t, entry.lexeme)
		require.Len(t, toks, 1, "lexeme %q", entry.lexeme)
		assert.Equal(t, entry.typ, toks[0].Type, "lexeme %q", entry.lexeme)
		assert.Equal(t, entry.lexeme, toks[0].Text)
	}
}

func TestSymbolToken(t *testing.T) {
	toks := allTokens(t, ":cat")
	require.Len(t, toks, 1)
	assert.Equal(t, Symbol, toks[0].Type)
}

func TestSubexpressionSplitsLeadingWhitespace(t *testing.T) {
	toks := allTokens(t, "a   \n\nb")
	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, Whitespace)
	assert.Contains(t, types, Subexpression)
}

func TestUnterminatedCharList(t *testing.T) {
	l := NewFromString(`"unterminated`)
	_, err := l.NextToken()
	require.Error(t, err)
	var cerr *CompilerError
	require.ErrorAs(t, err, &cerr)
}
