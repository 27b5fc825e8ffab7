package automaton

import "github.com/dekarrin/gofish/handle"

// NFAState is a single state of an NFA under construction: a set of outgoing
// edges keyed by input symbol (Epsilon for ε-edges), each of which may fan
// out to multiple target states (that's what makes it nondeterministic), and
// an accept flag plus an opaque label attached by whoever is building the
// NFA (the lexer attaches a pattern-priority label here; the LR item-set
// construction attaches nothing).
type NFAState struct {
	transitions map[InputSymbol][]handle.Handle[NFAState]
	accept      bool
	label       LabelID
}

// NFABuilder assembles an ε-NFA one state/transition at a time. This is the
// mutable side of automaton construction; once Build is called the result is
// read-only, matching the lifecycle spec.md §3 and §5 describe (arenas and
// automata are built once, then frozen).
type NFABuilder struct {
	states *handle.Vec[NFAState]
}

// NewNFABuilder returns an empty builder.
func NewNFABuilder() *NFABuilder {
	return &NFABuilder{states: handle.NewVec[NFAState]()}
}

// NewState adds a fresh, non-accepting state with no transitions and returns
// its handle.
func (b *NFABuilder) NewState() handle.Handle[NFAState] {
	return b.states.Insert(NFAState{transitions: make(map[InputSymbol][]handle.Handle[NFAState])})
}

// SetAccept marks state as accepting (or not).
func (b *NFABuilder) SetAccept(state handle.Handle[NFAState], accept bool) {
	st := b.states.Get(state)
	st.accept = accept
	b.states.Set(state, st)
}

// SetLabel attaches label to state. Used by the lexer build path to mark
// which pattern a given NFA accept-state belongs to; unused by the grammar
// item-set construction path.
func (b *NFABuilder) SetLabel(state handle.Handle[NFAState], label LabelID) {
	st := b.states.Get(state)
	st.label = label
	b.states.Set(state, st)
}

// Link adds a transition from -> to on sym. Pass Epsilon for an ε-edge.
// Multiple calls with the same (from, sym) add parallel edges, which is the
// whole point of building a nondeterministic automaton.
func (b *NFABuilder) Link(from, to handle.Handle[NFAState], sym InputSymbol) {
	st := b.states.Get(from)
	st.transitions[sym] = append(st.transitions[sym], to)
	b.states.Set(from, st)
}

// Build freezes the builder into an immutable NFA rooted at start.
func (b *NFABuilder) Build(start handle.Handle[NFAState]) *NFA {
	return &NFA{states: b.states, start: start}
}

// NFA is an immutable ε-NFA: a handle-indexed state arena plus a designated
// start state.
type NFA struct {
	states *handle.Vec[NFAState]
	start  handle.Handle[NFAState]
}

// Start returns the NFA's start state.
func (n *NFA) Start() handle.Handle[NFAState] {
	return n.start
}

// States returns every state handle in the NFA.
func (n *NFA) States() []handle.Handle[NFAState] {
	return n.states.Handles()
}

// IsAccepting reports whether s is an accept state.
func (n *NFA) IsAccepting(s handle.Handle[NFAState]) bool {
	return n.states.Get(s).accept
}

// Label returns the label attached to s (LabelNone if never set).
func (n *NFA) Label(s handle.Handle[NFAState]) LabelID {
	return n.states.Get(s).label
}

// EpsilonClosure returns the least set of states reachable from start by
// zero or more ε-edges, start included.
func (n *NFA) EpsilonClosure(start handle.Handle[NFAState]) handle.Set[NFAState] {
	closure := handle.NewSet[NFAState]()
	stack := []handle.Handle[NFAState]{start}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if closure.Has(s) {
			continue
		}
		closure.Add(s)
		for _, next := range n.states.Get(s).transitions[Epsilon] {
			if !closure.Has(next) {
				stack = append(stack, next)
			}
		}
	}
	return closure
}

// EpsilonClosureOfSet is EpsilonClosure extended over a whole set of starting
// states, as used by subset construction when following a move set.
func (n *NFA) EpsilonClosureOfSet(states handle.Set[NFAState]) handle.Set[NFAState] {
	closure := handle.NewSet[NFAState]()
	for _, s := range states.Elements() {
		closure.AddAll(n.EpsilonClosure(s))
	}
	return closure
}

// Move returns the set of states reachable from some state in states by
// exactly one transition on sym (the purple-dragon-book MOVE(T, a)
// function). sym must not be Epsilon.
func (n *NFA) Move(states handle.Set[NFAState], sym InputSymbol) handle.Set[NFAState] {
	moved := handle.NewSet[NFAState]()
	for _, s := range states.Elements() {
		for _, next := range n.states.Get(s).transitions[sym] {
			moved.Add(next)
		}
	}
	return moved
}

// InputSymbols returns every non-epsilon symbol that appears on some
// transition of the NFA.
func (n *NFA) InputSymbols() []InputSymbol {
	seen := make(map[InputSymbol]bool)
	var out []InputSymbol
	for _, s := range n.states.Handles() {
		for sym := range n.states.Get(s).transitions {
			if sym == Epsilon {
				continue
			}
			if !seen[sym] {
				seen[sym] = true
				out = append(out, sym)
			}
		}
	}
	return out
}

// minLabel returns the minimum non-zero label among the NFA states in set,
// or LabelNone if none of them carry a label. This is the mechanism spec.md
// §4.D specifies for earliest-pattern-wins: when several accepting NFA
// states merge into one DFA state during subset construction, the smallest
// label (i.e. the earliest-registered pattern) wins.
func (n *NFA) minLabel(set handle.Set[NFAState]) LabelID {
	best := LabelNone
	for _, s := range set.Elements() {
		l := n.states.Get(s).label
		if l == LabelNone {
			continue
		}
		if best == LabelNone || l < best {
			best = l
		}
	}
	return best
}
