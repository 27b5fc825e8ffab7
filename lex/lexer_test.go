package lex_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gofish/lex"
	"github.com/dekarrin/gofish/regexast"
)

type tokType int

const (
	tokDigit tokType = iota
	tokWS
	tokIf
	tokID
)

func mustScanAll(t *testing.T, lx *lex.LexicalAnalyzer[tokType], input string) []lex.Lexeme[tokType] {
	t.Helper()
	sc := lx.NewScanner(lex.NewBytesReader([]byte(input)))
	var out []lex.Lexeme[tokType]
	for {
		lexeme, err := sc.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, lexeme)
	}
	return out
}

// S1 — integer lexer: DIGIT = [0-9]+ (id 1), WS = ' '+ (id 2).
func TestLexicalAnalyzer_IntegerLexer(t *testing.T) {
	digit := regexast.Plus{Inner: regexast.CharRange('0', '9')}
	ws := regexast.Plus{Inner: regexast.Literal{Symbol: ' '}}

	lx, err := lex.NewLexicalAnalyzer([]lex.PatternDescriptor[tokType]{
		{Pattern: digit, Type: tokDigit},
		{Pattern: ws, Type: tokWS},
	})
	require.NoError(t, err)

	got := mustScanAll(t, lx, "12 345")
	require.Len(t, got, 3)
	assert.Equal(t, lex.Lexeme[tokType]{Type: tokDigit, Text: "12"}, got[0])
	assert.Equal(t, lex.Lexeme[tokType]{Type: tokWS, Text: " "}, got[1])
	assert.Equal(t, lex.Lexeme[tokType]{Type: tokDigit, Text: "345"}, got[2])
}

// S2 — keyword vs identifier priority: registration order decides the tie.
func TestLexicalAnalyzer_KeywordVsIdentifierPriority(t *testing.T) {
	kw := regexast.Str("if")
	id := regexast.Plus{Inner: regexast.CharRange('a', 'z')}
	ws := regexast.Plus{Inner: regexast.Literal{Symbol: ' '}}

	t.Run("keyword registered first wins the tie", func(t *testing.T) {
		lx, err := lex.NewLexicalAnalyzer([]lex.PatternDescriptor[tokType]{
			{Pattern: kw, Type: tokIf},
			{Pattern: id, Type: tokID},
			{Pattern: ws, Type: tokWS},
		})
		require.NoError(t, err)

		got := mustScanAll(t, lx, "if ifx")
		require.Len(t, got, 3)
		assert.Equal(t, lex.Lexeme[tokType]{Type: tokIf, Text: "if"}, got[0])
		assert.Equal(t, lex.Lexeme[tokType]{Type: tokWS, Text: " "}, got[1])
		assert.Equal(t, lex.Lexeme[tokType]{Type: tokID, Text: "ifx"}, got[2])
	})

	t.Run("swapping registration order flips the tie", func(t *testing.T) {
		lx, err := lex.NewLexicalAnalyzer([]lex.PatternDescriptor[tokType]{
			{Pattern: id, Type: tokID},
			{Pattern: kw, Type: tokIf},
			{Pattern: ws, Type: tokWS},
		})
		require.NoError(t, err)

		got := mustScanAll(t, lx, "if ifx")
		require.Len(t, got, 3)
		assert.Equal(t, lex.Lexeme[tokType]{Type: tokID, Text: "if"}, got[0])
		assert.Equal(t, lex.Lexeme[tokType]{Type: tokWS, Text: " "}, got[1])
		assert.Equal(t, lex.Lexeme[tokType]{Type: tokID, Text: "ifx"}, got[2])
	})
}

func TestLexicalAnalyzer_NoMatchIsLexError(t *testing.T) {
	digit := regexast.Plus{Inner: regexast.CharRange('0', '9')}
	lx, err := lex.NewLexicalAnalyzer([]lex.PatternDescriptor[tokType]{
		{Pattern: digit, Type: tokDigit},
	})
	require.NoError(t, err)

	sc := lx.NewScanner(lex.NewBytesReader([]byte("12x")))
	first, err := sc.Next()
	require.NoError(t, err)
	assert.Equal(t, "12", first.Text)

	_, err = sc.Next()
	assert.Error(t, err)
}
