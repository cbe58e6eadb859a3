package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatnamdeo/osfl/internal/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	lx := New([]byte(src), DefaultConfig("test.osfl"))
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF || tok.Kind == token.Error {
			break
		}
	}
	return toks
}

func TestLexerLocationsAreOneBased(t *testing.T) {
	toks := tokenize(t, "x")
	require.Len(t, toks, 2)
	assert.Equal(t, 1, toks[0].Location.Line)
	assert.Equal(t, 1, toks[0].Location.Column)
}

func TestLexerEOFEmptyLexeme(t *testing.T) {
	toks := tokenize(t, "")
	require.Len(t, toks, 1)
	assert.Equal(t, token.EOF, toks[0].Kind)
	assert.Empty(t, toks[0].Lexeme)
}

func TestLexerIntegerBases(t *testing.T) {
	for _, c := range []struct {
		src  string
		want int64
	}{
		{"0", 0}, {"0x0", 0}, {"0b0", 0}, {"0o0", 0},
		{"42", 42}, {"0x2a", 42}, {"0b101010", 42}, {"0o52", 42},
		{"1_000", 1000},
	} {
		toks := tokenize(t, c.src)
		require.Equal(t, token.Int, toks[0].Kind, c.src)
		assert.Equal(t, c.want, toks[0].Value.Int, c.src)
	}
}

func TestLexerFloat(t *testing.T) {
	toks := tokenize(t, "3.14")
	require.Equal(t, token.Float, toks[0].Kind)
	assert.InDelta(t, 3.14, toks[0].Value.Flt, 1e-9)

	toks = tokenize(t, "1.5e2")
	require.Equal(t, token.Float, toks[0].Kind)
	assert.InDelta(t, 150.0, toks[0].Value.Flt, 1e-9)
}

func TestLexerStringEscapes(t *testing.T) {
	toks := tokenize(t, `"a\nb\tc\\d\"e"`)
	require.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, "a\nb\tc\\d\"e", toks[0].Value.Str)
}

func TestLexerInvalidEscape(t *testing.T) {
	toks := tokenize(t, `"\q"`)
	require.Equal(t, token.Error, toks[0].Kind)
	assert.Equal(t, InvalidEscape, lexerLastKindOf(t, `"\q"`))
}

func lexerLastKindOf(t *testing.T, src string) ErrorKind {
	t.Helper()
	lx := New([]byte(src), DefaultConfig("test.osfl"))
	for {
		tok := lx.Next()
		if tok.Kind == token.Error || tok.Kind == token.EOF {
			return lx.LastError().Kind
		}
	}
}

func TestLexerStringBoundary(t *testing.T) {
	ok := `"` + repeat("a", 63) + `"`
	toks := tokenize(t, ok)
	require.Equal(t, token.String, toks[0].Kind)

	bad := `"` + repeat("a", 64) + `"`
	toks = tokenize(t, bad)
	require.Equal(t, token.Error, toks[0].Kind)
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func TestLexerDocstring(t *testing.T) {
	toks := tokenize(t, `"""hello
world"""`)
	require.Equal(t, token.Docstring, toks[0].Kind)
	assert.Contains(t, toks[0].Value.Str, "hello")
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	toks := tokenize(t, "func foo return")
	require.Len(t, toks, 4)
	assert.Equal(t, token.KwFunc, toks[0].Kind)
	assert.Equal(t, token.Identifier, toks[1].Kind)
	assert.Equal(t, token.KwReturn, toks[2].Kind)
}

func TestLexerBooleans(t *testing.T) {
	toks := tokenize(t, "true false")
	require.Equal(t, token.Boolean, toks[0].Kind)
	assert.True(t, toks[0].Value.Bool)
	assert.False(t, toks[1].Value.Bool)
}

func TestLexerComments(t *testing.T) {
	toks := tokenize(t, "1 // comment\n2")
	require.Len(t, toks, 3)
	assert.Equal(t, token.Int, toks[0].Kind)
	assert.Equal(t, token.Int, toks[1].Kind)
}

func TestLexerUnterminatedBlockComment(t *testing.T) {
	toks := tokenize(t, "/* never closes")
	require.Equal(t, token.Error, toks[0].Kind)
}

func TestLexerRegexVsDivision(t *testing.T) {
	toks := tokenize(t, "a / b")
	require.Len(t, toks, 4)
	assert.Equal(t, token.Slash, toks[1].Kind)

	toks = tokenize(t, "x = /abc/")
	require.Equal(t, token.Regex, toks[2].Kind)
	assert.Equal(t, "abc", toks[2].Value.Str)
}

func TestLexerInterpolation(t *testing.T) {
	toks := tokenize(t, `"a${x}b"`)
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []token.Kind{
		token.String, token.InterpolationStart, token.Identifier,
		token.InterpolationEnd, token.String, token.EOF,
	}, kinds)
	assert.Equal(t, "a", toks[0].Value.Str)
	assert.Equal(t, "b", toks[4].Value.Str)
}

func TestLexerNewlineTracking(t *testing.T) {
	lx := New([]byte("1\n2"), Config{FileName: "f", TabWidth: 4, SkipWhitespace: true, TrackLineEndings: true})
	tok := lx.Next()
	assert.Equal(t, 1, tok.Location.Line)
	tok = lx.Next()
	assert.Equal(t, token.Newline, tok.Kind)
	tok = lx.Next()
	assert.Equal(t, 2, tok.Location.Line)
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	lx := New([]byte("1 2"), DefaultConfig("f"))
	p1 := lx.Peek()
	p2 := lx.Peek()
	assert.Equal(t, p1, p2)
	n1 := lx.Next()
	assert.Equal(t, p1, n1)
	n2 := lx.Next()
	assert.Equal(t, int64(2), n2.Value.Int)
}
