package regexast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/gofish/automaton"
	"github.com/dekarrin/gofish/regexast"
)

// acceptsExactly runs n's compiled NFA (via ε-closure + move, no DFA step
// involved) over s and reports whether some run ends in an accept state —
// the NFA-level definition subset-construction soundness is checked against
// in automaton/dfa_test.go.
func acceptsExactly(n regexast.Node, s string) bool {
	b, entry, exit := regexast.Compile(n)
	b.SetAccept(exit, true)
	nfa := b.Build(entry)

	cur := nfa.EpsilonClosure(nfa.Start())
	for i := 0; i < len(s); i++ {
		moved := nfa.Move(cur, automaton.InputSymbol(s[i]))
		cur = nfa.EpsilonClosureOfSet(moved)
		if cur.Len() == 0 {
			return false
		}
	}
	for _, st := range cur.Elements() {
		if nfa.IsAccepting(st) {
			return true
		}
	}
	return false
}

func TestCompile_Literal(t *testing.T) {
	b, entry, exit := regexast.Compile(regexast.Literal{Symbol: 'a'})
	b.SetAccept(exit, true)
	nfa := b.Build(entry)

	cur := nfa.EpsilonClosure(nfa.Start())
	moved := nfa.EpsilonClosureOfSet(nfa.Move(cur, automaton.InputSymbol('a')))
	accepted := false
	for _, st := range moved.Elements() {
		if nfa.IsAccepting(st) {
			accepted = true
		}
	}
	assert.True(t, accepted)
}

func TestCompile_ConcatAltStarPlusOptional(t *testing.T) {
	check := func(n regexast.Node, accept, reject []string) {
		b, entry, exit := regexast.Compile(n)
		b.SetAccept(exit, true)
		nfa := b.Build(entry)
		run := func(s string) bool {
			cur := nfa.EpsilonClosure(nfa.Start())
			for i := 0; i < len(s); i++ {
				moved := nfa.Move(cur, automaton.InputSymbol(s[i]))
				cur = nfa.EpsilonClosureOfSet(moved)
				if cur.Len() == 0 {
					return false
				}
			}
			for _, st := range cur.Elements() {
				if nfa.IsAccepting(st) {
					return true
				}
			}
			return false
		}
		for _, s := range accept {
			assert.True(t, run(s), "expected %q to be accepted", s)
		}
		for _, s := range reject {
			assert.False(t, run(s), "expected %q to be rejected", s)
		}
	}

	check(regexast.Str("cat"), []string{"cat"}, []string{"ca", "cats", ""})
	check(regexast.Alts(regexast.Str("cat"), regexast.Str("dog")), []string{"cat", "dog"}, []string{"cog"})
	check(regexast.Star{Inner: regexast.Literal{Symbol: 'a'}}, []string{"", "a", "aaaa"}, []string{"b", "aab"})
	check(regexast.Plus{Inner: regexast.Literal{Symbol: 'a'}}, []string{"a", "aaaa"}, []string{"", "aab"})
	check(regexast.Optional{Inner: regexast.Literal{Symbol: 'a'}}, []string{"", "a"}, []string{"aa"})
}

func TestCharRange(t *testing.T) {
	n := regexast.Plus{Inner: regexast.CharRange('0', '9')}
	assert.True(t, acceptsExactly(n, "0"))
	assert.True(t, acceptsExactly(n, "12345"))
	assert.False(t, acceptsExactly(n, ""))
	assert.False(t, acceptsExactly(n, "12a"))
}

func TestSeqAndAlts_EmptyArgs(t *testing.T) {
	assert.Equal(t, regexast.Empty{}, regexast.Seq())
	assert.Equal(t, regexast.Empty{}, regexast.Alts())
}
