package automaton_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gofish/automaton"
	"github.com/dekarrin/gofish/regexast"
)

// runDFA walks ld from its start state over s, returning the label of the
// final state. Totality of the transition function is asserted separately.
func runDFA(t *testing.T, ld *automaton.LabeledDFA, s string) automaton.LabelID {
	t.Helper()
	state := ld.DFA.Start()
	for i := 0; i < len(s); i++ {
		state = ld.DFA.Step(state, automaton.InputSymbol(s[i]))
	}
	return ld.GetLabel(state)
}

// buildDFA compiles n into a minimized, labeled DFA the way the lexer build
// path does, with a single pattern so its label distinguishes "matched" from
// "not matched".
func buildDFA(t *testing.T, n regexast.Node) *automaton.LabeledDFA {
	t.Helper()
	b := automaton.NewNFABuilder()
	start := b.NewState()
	entry, exit := regexast.CompileInto(b, n)
	b.Link(start, entry, automaton.Epsilon)
	b.SetAccept(exit, true)
	b.SetLabel(exit, automaton.LabelForPattern(0))

	nfa := b.Build(start)
	dfa, subsetOf := nfa.ToDFA()
	labeled := automaton.NewLabeledDFA(dfa)
	labeled.LabelFromNFA(nfa, subsetOf)
	return labeled.Minimize()
}

func TestToDFA_SubsetConstructionSoundness(t *testing.T) {
	// (a|b)*abb, the canonical dragon-book example: accepts exactly the
	// strings over {a,b} ending in "abb".
	ab := regexast.Alts(regexast.Literal{Symbol: 'a'}, regexast.Literal{Symbol: 'b'})
	n := regexast.Seq(regexast.Star{Inner: ab}, regexast.Str("abb"))
	ld := buildDFA(t, n)

	accepting := []string{"abb", "aabb", "babb", "ababb"}
	rejecting := []string{"", "a", "ab", "abbb", "abab"}

	for _, s := range accepting {
		assert.NotEqual(t, automaton.LabelNone, runDFA(t, ld, s), "expected %q to match", s)
	}
	for _, s := range rejecting {
		assert.Equal(t, automaton.LabelNone, runDFA(t, ld, s), "expected %q not to match", s)
	}
}

func TestToDFA_TotalTransitionFunction(t *testing.T) {
	ld := buildDFA(t, regexast.Str("ab"))
	dead, ok := ld.LocateDeadState()
	require.True(t, ok)
	for _, s := range ld.DFA.States() {
		for b := 0; b <= automaton.MaxByte; b++ {
			if b == 'a' || b == 'b' {
				continue
			}
			// Every byte the pattern never uses must lead to the dead state.
			// A transition ToDFA left unfilled would read back as the zero
			// handle, the start state's, instead.
			assert.Equal(t, dead, ld.DFA.Step(s, automaton.InputSymbol(b)))
		}
	}
	require.NoError(t, ld.DFA.Validate())
}

func TestMinimize_PreservesLanguageAndDeadState(t *testing.T) {
	ld := buildDFA(t, regexast.Str("if"))

	assert.NotEqual(t, automaton.LabelNone, runDFA(t, ld, "if"))
	assert.Equal(t, automaton.LabelNone, runDFA(t, ld, "i"))
	assert.Equal(t, automaton.LabelNone, runDFA(t, ld, "iff"))

	dead, ok := ld.LocateDeadState()
	require.True(t, ok, "minimized lexer DFA must have exactly one dead state")

	// the dead state self-loops on every symbol.
	for b := 0; b <= automaton.MaxByte; b++ {
		assert.Equal(t, dead, ld.DFA.Step(dead, automaton.InputSymbol(b)))
	}
}

func TestMinimize_MergesEquivalentStates(t *testing.T) {
	// "a" | "b" each lead to their own accepting state pre-minimization, but
	// those two states are behaviorally identical (same label, same total
	// transition row to the dead state), so minimization must merge them.
	n := regexast.Alts(regexast.Literal{Symbol: 'a'}, regexast.Literal{Symbol: 'b'})
	unminimized := func() *automaton.LabeledDFA {
		b := automaton.NewNFABuilder()
		start := b.NewState()
		entry, exit := regexast.CompileInto(b, n)
		b.Link(start, entry, automaton.Epsilon)
		b.SetAccept(exit, true)
		b.SetLabel(exit, automaton.LabelForPattern(0))
		nfa := b.Build(start)
		dfa, subsetOf := nfa.ToDFA()
		labeled := automaton.NewLabeledDFA(dfa)
		labeled.LabelFromNFA(nfa, subsetOf)
		return labeled
	}()
	minimized := unminimized.Minimize()

	assert.Less(t, len(minimized.DFA.States()), len(unminimized.DFA.States()))
	assert.NotEqual(t, automaton.LabelNone, runDFA(t, minimized, "a"))
	assert.NotEqual(t, automaton.LabelNone, runDFA(t, minimized, "b"))
	assert.Equal(t, automaton.LabelNone, runDFA(t, minimized, "c"))
}

func TestLabelFromNFA_EarliestPatternWins(t *testing.T) {
	b := automaton.NewNFABuilder()
	start := b.NewState()

	kwEntry, kwExit := regexast.CompileInto(b, regexast.Str("if"))
	b.Link(start, kwEntry, automaton.Epsilon)
	b.SetAccept(kwExit, true)
	b.SetLabel(kwExit, automaton.LabelForPattern(0))

	idEntry, idExit := regexast.CompileInto(b, regexast.Plus{Inner: regexast.CharRange('a', 'z')})
	b.Link(start, idEntry, automaton.Epsilon)
	b.SetAccept(idExit, true)
	b.SetLabel(idExit, automaton.LabelForPattern(1))

	nfa := b.Build(start)
	dfa, subsetOf := nfa.ToDFA()
	labeled := automaton.NewLabeledDFA(dfa)
	labeled.LabelFromNFA(nfa, subsetOf)
	minimized := labeled.Minimize()

	assert.Equal(t, automaton.LabelForPattern(0), runDFA(t, minimized, "if"))
	assert.Equal(t, automaton.LabelForPattern(1), runDFA(t, minimized, "ifx"))
}
