package build_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gofish/build"
	"github.com/dekarrin/gofish/grammar"
	"github.com/dekarrin/gofish/handle"
	"github.com/dekarrin/gofish/lex"
	"github.com/dekarrin/gofish/regexast"
)

type arithToken int

const (
	tokNumber arithToken = iota
	tokPlus
	tokTimes
	tokWS
)

func digitPattern() regexast.Node {
	return regexast.Plus{Inner: regexast.CharRange('0', '9')}
}

// S4 — arithmetic precedence: E -> E + E | E * E | n, "+" left-assoc low,
// "*" left-assoc high (spec.md property 7). Parsing "1+2*3+4" must yield
// ((1+(2*3))+4) = 11, which only happens if the shift/reduce conflicts
// between the two E -> E op E productions are resolved by precedence and
// associativity rather than left to grammar structure.
func TestBuilder_ArithmeticPrecedence(t *testing.T) {
	leaf := func(tok arithToken, text string) (int, error) {
		if tok != tokNumber {
			return 0, nil
		}
		return strconv.Atoi(text)
	}
	b := build.NewBuilder[arithToken, int](leaf)

	number := b.NewTerminal("NUMBER")
	plus := b.NewTerminal("+")
	times := b.NewTerminal("*")
	ws := b.NewTerminal("WS")

	b.RegisterLexeme(digitPattern(), tokNumber, number)
	b.RegisterLexeme(regexast.Str("+"), tokPlus, plus)
	b.RegisterLexeme(regexast.Str("*"), tokTimes, times)
	b.RegisterLexeme(regexast.Plus{Inner: regexast.Literal{Symbol: ' '}}, tokWS, ws)

	// Precedence is registration order (spec.md §4.G): register "+" first so
	// "*" outranks it.
	lowBinding := b.RegisterBinding([]handle.Handle[grammar.Terminal]{plus}, grammar.Left)
	highBinding := b.RegisterBinding([]handle.Handle[grammar.Terminal]{times}, grammar.Left)

	e := b.NewNonterminal("E")
	b.SetStart(e)

	b.RegisterRule(e, []grammar.GrammarSymbol{grammar.NT(e), grammar.Term(plus), grammar.NT(e)}, &lowBinding,
		func(children []int) (int, error) { return children[0] + children[2], nil })
	b.RegisterRule(e, []grammar.GrammarSymbol{grammar.NT(e), grammar.Term(times), grammar.NT(e)}, &highBinding,
		func(children []int) (int, error) { return children[0] * children[2], nil })
	b.RegisterRule(e, []grammar.GrammarSymbol{grammar.Term(number)}, nil,
		func(children []int) (int, error) { return children[0], nil })

	tr, diag, err := b.Build()
	require.NoError(t, err)
	assert.NotEmpty(t, diag.Conflicts, "ambiguous grammar must resolve shift/reduce conflicts via precedence")

	skip := func(tok arithToken) bool { return tok == tokWS }
	result, err := tr.Translate(lex.NewBytesReader([]byte("1+2*3+4")), skip)
	require.NoError(t, err)
	assert.Equal(t, 11, result)
}
