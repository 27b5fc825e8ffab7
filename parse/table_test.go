package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gofish/grammar"
	"github.com/dekarrin/gofish/handle"
	"github.com/dekarrin/gofish/parse"
)

// S3 — balanced parentheses: S -> ( S ) | ε
func TestParse_BalancedParens(t *testing.T) {
	g := grammar.New()
	lparen := g.AddTerm("(")
	rparen := g.AddTerm(")")
	s := g.AddNonterm("S")
	g.SetStart(s)
	g.AddRule(s, []grammar.GrammarSymbol{grammar.Term(lparen), grammar.NT(s), grammar.Term(rparen)}, nil, 0)
	g.AddRule(s, nil, nil, 1)
	require.NoError(t, g.Validate())

	augProd, augNT := g.Augment()
	table, err := parse.Build(g, augProd, augNT)
	require.NoError(t, err)

	reduce := func(production int, children []string) (string, error) {
		result := ""
		for _, c := range children {
			result += c
		}
		return result, nil
	}

	t.Run("accepts well-nested input", func(t *testing.T) {
		seq := []parse.Token{
			{Terminal: lparen, Text: "("},
			{Terminal: lparen, Text: "("},
			{Terminal: rparen, Text: ")"},
			{Terminal: rparen, Text: ")"},
		}
		i := 0
		next := func() (parse.Token, string, error) {
			if i >= len(seq) {
				return parse.Token{EndOfInput: true}, "", nil
			}
			tok := seq[i]
			i++
			return tok, tok.Text, nil
		}
		result, err := parse.Run(table, next, reduce)
		require.NoError(t, err)
		assert.Equal(t, "(())", result)
	})

	t.Run("rejects unbalanced input", func(t *testing.T) {
		seq := []parse.Token{
			{Terminal: lparen, Text: "("},
			{Terminal: lparen, Text: "("},
			{Terminal: rparen, Text: ")"},
		}
		i := 0
		next := func() (parse.Token, string, error) {
			if i >= len(seq) {
				return parse.Token{EndOfInput: true}, "", nil
			}
			tok := seq[i]
			i++
			return tok, tok.Text, nil
		}
		_, err := parse.Run(table, next, reduce)
		assert.Error(t, err)
	})
}

// S5 — shift/reduce resolved by associativity: E -> E - E | n, "-" is Left.
func TestParse_LeftAssociativeSubtraction(t *testing.T) {
	g := grammar.New()
	minus := g.AddTerm("-")
	num := g.AddTerm("n")
	e := g.AddNonterm("E")
	g.SetStart(e)

	minusBinding := g.AddBinding([]handle.Handle[grammar.Terminal]{minus}, grammar.Left)
	g.AddRule(e, []grammar.GrammarSymbol{grammar.NT(e), grammar.Term(minus), grammar.NT(e)}, &minusBinding, 0)
	g.AddRule(e, []grammar.GrammarSymbol{grammar.Term(num)}, nil, 1)
	require.NoError(t, g.Validate())

	augProd, augNT := g.Augment()
	table, err := parse.Build(g, augProd, augNT)
	require.NoError(t, err)

	reduce := func(production int, children []string) (string, error) {
		switch production {
		case 0:
			return "(" + children[0] + "-" + children[2] + ")", nil
		case 1:
			return children[0], nil
		}
		t.Fatalf("unexpected production %d", production)
		return "", nil
	}

	seq := []parse.Token{
		{Terminal: num, Text: "1"}, {Terminal: minus, Text: "-"},
		{Terminal: num, Text: "2"}, {Terminal: minus, Text: "-"},
		{Terminal: num, Text: "3"},
	}
	i := 0
	next := func() (parse.Token, string, error) {
		if i >= len(seq) {
			return parse.Token{EndOfInput: true}, "", nil
		}
		tok := seq[i]
		i++
		return tok, tok.Text, nil
	}
	result, err := parse.Run(table, next, reduce)
	require.NoError(t, err)
	assert.Equal(t, "((1-2)-3)", result)
}

// S6 — reduce/reduce resolved by registration order: A -> x and B -> x both
// reachable from the same state on the same lookahead; A (registered first)
// wins, and the table records a diagnostic about the suppressed alternative.
func TestParse_ReduceReduceRegistrationOrder(t *testing.T) {
	g := grammar.New()
	x := g.AddTerm("x")
	s := g.AddNonterm("S")
	a := g.AddNonterm("A")
	b := g.AddNonterm("B")
	g.SetStart(s)

	g.AddRule(s, []grammar.GrammarSymbol{grammar.NT(a)}, nil, 0)
	g.AddRule(s, []grammar.GrammarSymbol{grammar.NT(b)}, nil, 1)
	g.AddRule(a, []grammar.GrammarSymbol{grammar.Term(x)}, nil, 2)
	g.AddRule(b, []grammar.GrammarSymbol{grammar.Term(x)}, nil, 3)
	require.NoError(t, g.Validate())

	augProd, augNT := g.Augment()
	table, err := parse.Build(g, augProd, augNT)
	require.NoError(t, err)
	require.NotEmpty(t, table.Conflicts)

	reduce := func(production int, children []string) (string, error) {
		switch production {
		case 0:
			return "S(" + children[0] + ")", nil
		case 1:
			return "S(" + children[0] + ")", nil
		case 2:
			return "A", nil
		case 3:
			return "B", nil
		}
		t.Fatalf("unexpected production %d", production)
		return "", nil
	}

	seq := []parse.Token{{Terminal: x, Text: "x"}}
	i := 0
	next := func() (parse.Token, string, error) {
		if i >= len(seq) {
			return parse.Token{EndOfInput: true}, "", nil
		}
		tok := seq[i]
		i++
		return tok, tok.Text, nil
	}
	result, err := parse.Run(table, next, reduce)
	require.NoError(t, err)
	assert.Equal(t, "S(A)", result)
}
