package automaton

import (
	"fmt"

	"github.com/dekarrin/gofish/handle"
)

// DFAState holds a total transition function restricted to this one state:
// every real symbol (0..MaxByte) maps to some target state, including
// possibly the dead state.
type DFAState struct {
	transitions map[InputSymbol]handle.Handle[DFAState]
}

// DFA is a deterministic finite automaton over InputSymbol: a handle-indexed
// state arena, one designated start state, and (once ToDFA below has run)
// exactly one dead state reachable by transition from anywhere matching
// cannot-extend-further.
type DFA struct {
	states *handle.Vec[DFAState]
	start  handle.Handle[DFAState]
}

// Start returns the DFA's initial state.
func (d *DFA) Start() handle.Handle[DFAState] {
	return d.start
}

// States returns every state handle.
func (d *DFA) States() []handle.Handle[DFAState] {
	return d.states.Handles()
}

// Step applies the transition function: δ(state, sym).
func (d *DFA) Step(state handle.Handle[DFAState], sym InputSymbol) handle.Handle[DFAState] {
	return d.states.Get(state).transitions[sym]
}

// ToDFA runs the subset construction (purple dragon book algorithm 3.20) on
// n, producing a deterministic automaton plus, for every produced DFA state,
// the set of NFA states it is the ε-closed union of — callers (the lexer
// build path) use that second return value to compute accept labels via
// NFA.minLabel before ever calling Minimize, since minimization must be told
// about labels up front to avoid merging states that a caller considers
// distinguishable.
//
// A unique dead state is created lazily the first time some (state, symbol)
// pair has no NFA successor, and is reused for every subsequent empty move;
// it self-loops on every symbol and is never an accept state.
func (n *NFA) ToDFA() (*DFA, *handle.Map[DFAState, handle.Set[NFAState]]) {
	dfa := &DFA{states: handle.NewVec[DFAState]()}
	subsetOf := handle.NewMap[DFAState, handle.Set[NFAState]]()

	byKey := make(map[string]handle.Handle[DFAState])
	var deadState handle.Handle[DFAState]
	haveDead := false

	symbols := n.InputSymbols()

	var queue []handle.Handle[DFAState]

	internState := func(nfaSet handle.Set[NFAState]) handle.Handle[DFAState] {
		key := nfaSet.Key()
		if h, ok := byKey[key]; ok {
			return h
		}
		h := dfa.states.Insert(DFAState{transitions: make(map[InputSymbol]handle.Handle[DFAState])})
		byKey[key] = h
		subsetOf.Set(h, nfaSet)
		queue = append(queue, h)
		return h
	}

	getDeadState := func() handle.Handle[DFAState] {
		if haveDead {
			return deadState
		}
		deadState = dfa.states.Insert(DFAState{transitions: make(map[InputSymbol]handle.Handle[DFAState])})
		subsetOf.Set(deadState, handle.NewSet[NFAState]())
		haveDead = true
		// Self-loop over the full real-byte alphabet, not just the symbols
		// the NFA happens to use: a dead state with gaps in its transition
		// table is not total, and LocateDeadState requires every transition
		// to self-loop.
		dst := dfa.states.Get(deadState)
		for _, sym := range allRealSymbols() {
			dst.transitions[sym] = deadState
		}
		dfa.states.Set(deadState, dst)
		return deadState
	}

	startSet := n.EpsilonClosure(n.start)
	dfa.start = internState(startSet)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curSet, _ := subsetOf.Get(cur)

		st := dfa.states.Get(cur)
		for _, sym := range symbols {
			moved := n.EpsilonClosureOfSet(n.Move(curSet, sym))
			var target handle.Handle[DFAState]
			if moved.Len() == 0 {
				target = getDeadState()
			} else {
				target = internState(moved)
			}
			st.transitions[sym] = target
		}
		dfa.states.Set(cur, st)
	}

	// Every DFA state must have a total transition function even over
	// symbols that appear nowhere in the NFA (e.g. a lexer combining several
	// patterns that between them don't use every byte value): fill any gaps
	// with the dead state, creating it now if subset construction never
	// needed it (e.g. a single-symbol-literal pattern with no alternation).
	allSymbols := allRealSymbols()
	for _, s := range dfa.states.Handles() {
		st := dfa.states.Get(s)
		dirty := false
		for _, sym := range allSymbols {
			if _, ok := st.transitions[sym]; !ok {
				st.transitions[sym] = getDeadState()
				dirty = true
			}
		}
		if dirty {
			dfa.states.Set(s, st)
		}
	}
	if !haveDead {
		getDeadState()
	}

	return dfa, subsetOf
}

func allRealSymbols() []InputSymbol {
	out := make([]InputSymbol, 0, MaxByte+1)
	for b := 0; b <= MaxByte; b++ {
		out = append(out, InputSymbol(b))
	}
	return out
}

// LabeledDFA is a DFA plus an accept-label assignment per state, as specified
// by spec.md §3's LabeledDFA. It is what the lexical analyzer actually runs.
type LabeledDFA struct {
	DFA    *DFA
	labels *handle.Map[DFAState, LabelID]
}

// NewLabeledDFA wraps dfa with all states initially unlabeled (LabelNone).
func NewLabeledDFA(dfa *DFA) *LabeledDFA {
	return &LabeledDFA{DFA: dfa, labels: handle.NewMap[DFAState, LabelID]()}
}

// Label sets the label for s.
func (ld *LabeledDFA) Label(s handle.Handle[DFAState], l LabelID) {
	ld.labels.Set(s, l)
}

// GetLabel returns the label for s (LabelNone if never set).
func (ld *LabeledDFA) GetLabel(s handle.Handle[DFAState]) LabelID {
	l, _ := ld.labels.Get(s)
	return l
}

// LabelFromNFA labels every DFA state produced by ToDFA according to the
// minimum non-zero label among its constituent NFA states, implementing
// spec.md §4.D's earliest-pattern-wins rule. subsetOf is the second return
// value of NFA.ToDFA.
func (ld *LabeledDFA) LabelFromNFA(n *NFA, subsetOf *handle.Map[DFAState, handle.Set[NFAState]]) {
	for _, s := range ld.DFA.States() {
		nfaSet, ok := subsetOf.Get(s)
		if !ok {
			continue
		}
		ld.Label(s, n.minLabel(nfaSet))
	}
}

// LocateDeadState returns the unique state whose transitions all self-loop
// and whose label is LabelNone, per spec.md §3/§4.D/§8 property 3. Returns
// false if no such state exists, which is a construction-time invariant
// violation for any minimized lexer DFA.
func (ld *LabeledDFA) LocateDeadState() (handle.Handle[DFAState], bool) {
	for _, s := range ld.DFA.States() {
		if ld.GetLabel(s) != LabelNone {
			continue
		}
		st := ld.DFA.states.Get(s)
		allSelf := true
		for _, target := range st.transitions {
			if target != s {
				allSelf = false
				break
			}
		}
		if allSelf && len(st.transitions) > 0 {
			return s, true
		}
	}
	var none handle.Handle[DFAState]
	return none, false
}

// Minimize performs Hopcroft-style partition refinement, producing a new
// LabeledDFA with the same language and the same per-string labels (spec.md
// §8 property 2). The initial partition separates states by (label, isDead)
// so that minimization never merges two states a caller considers
// distinguishable by accept label, and never accidentally merges the dead
// state into a non-dead partition.
func (ld *LabeledDFA) Minimize() *LabeledDFA {
	states := ld.DFA.States()
	deadState, haveDead := ld.LocateDeadState()

	// initial partition: group by (label, isDead)
	type partKey struct {
		label  LabelID
		isDead bool
	}
	groups := make(map[partKey][]handle.Handle[DFAState])
	stateGroup := make(map[handle.Handle[DFAState]]partKey)
	for _, s := range states {
		k := partKey{label: ld.GetLabel(s), isDead: haveDead && s == deadState}
		groups[k] = append(groups[k], s)
		stateGroup[s] = k
	}

	// partition IDs must be stable across refinement rounds for the
	// signature-based splitting below; assign each group a small int id.
	type partition struct {
		id      int
		members []handle.Handle[DFAState]
	}
	var parts []*partition
	partOf := make(map[handle.Handle[DFAState]]int)
	nextID := 0
	for _, members := range groups {
		p := &partition{id: nextID, members: members}
		for _, s := range members {
			partOf[s] = p.id
		}
		parts = append(parts, p)
		nextID++
	}

	symbols := allRealSymbols()

	changed := true
	for changed {
		changed = false
		var newParts []*partition
		newPartOf := make(map[handle.Handle[DFAState]]int)
		newID := 0

		for _, p := range parts {
			// split p by the signature (target partition per symbol) of
			// each of its members
			sig := make(map[string][]handle.Handle[DFAState])
			var sigOrder []string
			for _, s := range p.members {
				st := ld.DFA.states.Get(s)
				buf := make([]byte, 0, len(symbols)*4)
				for _, sym := range symbols {
					target := st.transitions[sym]
					tp := partOf[target]
					buf = append(buf, byte(tp), byte(tp>>8), byte(tp>>16), byte(tp>>24))
				}
				key := string(buf)
				if _, ok := sig[key]; !ok {
					sigOrder = append(sigOrder, key)
				}
				sig[key] = append(sig[key], s)
			}
			if len(sig) > 1 {
				changed = true
			}
			for _, key := range sigOrder {
				members := sig[key]
				np := &partition{id: newID, members: members}
				for _, s := range members {
					newPartOf[s] = newID
				}
				newParts = append(newParts, np)
				newID++
			}
		}

		parts = newParts
		partOf = newPartOf
	}

	// build the minimized DFA: one state per final partition
	minDFA := &DFA{states: handle.NewVec[DFAState]()}
	repHandle := make(map[int]handle.Handle[DFAState])
	for _, p := range parts {
		repHandle[p.id] = minDFA.states.Insert(DFAState{transitions: make(map[InputSymbol]handle.Handle[DFAState])})
	}
	minLabeled := NewLabeledDFA(minDFA)
	for _, p := range parts {
		rep := p.members[0]
		h := repHandle[p.id]
		minLabeled.Label(h, ld.GetLabel(rep))
		st := ld.DFA.states.Get(rep)
		mst := minDFA.states.Get(h)
		for _, sym := range symbols {
			target := st.transitions[sym]
			mst.transitions[sym] = repHandle[partOf[target]]
		}
		minDFA.states.Set(h, mst)
	}
	minDFA.start = repHandle[partOf[ld.DFA.start]]

	return minLabeled
}

// Validate checks the structural invariants spec.md §3 requires of a DFA:
// every state reachable from the start state, and every transition target
// actually exists in the arena.
func (d *DFA) Validate() error {
	reachable := handle.NewSet[DFAState]()
	stack := []handle.Handle[DFAState]{d.start}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable.Has(s) {
			continue
		}
		reachable.Add(s)
		st := d.states.Get(s)
		for _, target := range st.transitions {
			if target.Index() >= d.states.Len() {
				return fmt.Errorf("automaton: DFA state %s has a transition to nonexistent state %s", s, target)
			}
			if !reachable.Has(target) {
				stack = append(stack, target)
			}
		}
	}
	if reachable.Len() != d.states.Len() {
		return fmt.Errorf("automaton: %d of %d DFA states are unreachable from the start state", d.states.Len()-reachable.Len(), d.states.Len())
	}
	return nil
}
