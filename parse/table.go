// Package parse builds the canonical LALR(1) ACTION/GOTO table (spec.md
// §4.F-G) and drives it (spec.md §4.H). Item-set construction follows the
// teacher's internal/ictiobus/parse/lalr.go shape (canonical LR(1)
// automaton, then merge states sharing a core) generalized from
// string-keyed grammar symbols to grammar.Grammar's handle-keyed ones.
package parse

import (
	"fmt"
	"sort"

	"github.com/dekarrin/gofish/gofisherr"
	"github.com/dekarrin/gofish/grammar"
	"github.com/dekarrin/gofish/handle"
)

// lookahead is a single LR(1) lookahead: either a real terminal or the
// distinguished end-of-input marker, which is not itself a grammar.Terminal
// handle (spec.md §3).
type lookahead struct {
	term handle.Handle[grammar.Terminal]
	eoi  bool
}

func (la lookahead) less(o lookahead) bool {
	if la.eoi != o.eoi {
		return o.eoi
	}
	return la.term < o.term
}

type itemKey struct {
	prod int
	dot  int
	la   lookahead
}

type itemSet map[itemKey]bool

func (s itemSet) add(k itemKey) bool {
	if s[k] {
		return false
	}
	s[k] = true
	return true
}

func (s itemSet) sortedKeys() []itemKey {
	out := make([]itemKey, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.prod != b.prod {
			return a.prod < b.prod
		}
		if a.dot != b.dot {
			return a.dot < b.dot
		}
		return a.la.less(b.la)
	})
	return out
}

// coreKey identifies an item set's LR(0) core (production+dot pairs only,
// ignoring lookaheads) — the equivalence class LALR(1) construction merges
// canonical LR(1) states by.
func coreKey(s itemSet) string {
	seen := make(map[[2]int]bool)
	var core [][2]int
	for k := range s {
		pd := [2]int{k.prod, k.dot}
		if !seen[pd] {
			seen[pd] = true
			core = append(core, pd)
		}
	}
	sort.Slice(core, func(i, j int) bool {
		if core[i][0] != core[j][0] {
			return core[i][0] < core[j][0]
		}
		return core[i][1] < core[j][1]
	})
	buf := make([]byte, 0, len(core)*8)
	for _, pd := range core {
		buf = appendInt(buf, pd[0])
		buf = append(buf, ':')
		buf = appendInt(buf, pd[1])
		buf = append(buf, ',')
	}
	return string(buf)
}

func appendInt(buf []byte, v int) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var tmp [12]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		tmp[i] = '-'
	}
	return append(buf, tmp[i:]...)
}

// closure computes the LR(1) closure of an item set (spec.md §4.F step 1):
// repeatedly expand [A -> alpha . B beta, a] by adding [B -> . gamma, b] for
// every production B -> gamma and every b in FIRST(beta a).
func closure(g *grammar.Grammar, start itemSet) itemSet {
	out := make(itemSet, len(start))
	var queue []itemKey
	for k := range start {
		out[k] = true
		queue = append(queue, k)
	}

	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]

		prod := g.Production(k.prod)
		if k.dot >= len(prod.RHS) {
			continue
		}
		sym := prod.RHS[k.dot]
		if sym.Kind != grammar.SymNonterminal {
			continue
		}

		beta := prod.RHS[k.dot+1:]
		las := lookaheadsFor(g, beta, k.la)

		for _, pi := range g.ProductionsFor(sym.NT) {
			for _, la := range las {
				nk := itemKey{prod: pi, dot: 0, la: la}
				if !out[nk] {
					out[nk] = true
					queue = append(queue, nk)
				}
			}
		}
	}
	return out
}

// lookaheadsFor computes FIRST(beta . la) as a slice of concrete lookaheads:
// FIRST(beta), plus la itself if beta is nullable.
func lookaheadsFor(g *grammar.Grammar, beta []grammar.GrammarSymbol, la lookahead) []lookahead {
	firstSet, nullable := g.FIRST(beta)
	out := make([]lookahead, 0, firstSet.Len()+1)
	for _, t := range firstSet.Elements() {
		out = append(out, lookahead{term: t})
	}
	if nullable {
		out = append(out, la)
	}
	return out
}

// gotoSet computes goto(items, sym): closure of every item advanceable over
// sym.
func gotoSet(g *grammar.Grammar, items itemSet, sym grammar.GrammarSymbol) itemSet {
	moved := make(itemSet)
	for k := range items {
		prod := g.Production(k.prod)
		if k.dot >= len(prod.RHS) {
			continue
		}
		if !prod.RHS[k.dot].Equal(sym) {
			continue
		}
		moved[itemKey{prod: k.prod, dot: k.dot + 1, la: k.la}] = true
	}
	if len(moved) == 0 {
		return nil
	}
	return closure(g, moved)
}

// ActionType distinguishes the four ACTION table entries of spec.md §3.
type ActionType int

const (
	ActionError ActionType = iota
	ActionShift
	ActionReduce
	ActionAccept
)

// Action is one ACTION table cell.
type Action struct {
	Type       ActionType
	State      int // target state, for ActionShift
	Production int // production index, for ActionReduce
}

// Table is the compiled ACTION/GOTO table (spec.md §3 "Parse table").
type Table struct {
	g          *grammar.Grammar
	start      int
	action     []map[handle.Handle[grammar.Terminal]]Action
	actionEOI  []Action
	gotoTable  []map[handle.Handle[grammar.Nonterminal]]int
	numStates  int
	Conflicts  []string // non-fatal build-time diagnostics: one note per resolved shift/reduce or reduce/reduce conflict (spec.md §4.G)
}

// Start returns the table's initial state.
func (t *Table) Start() int {
	return t.start
}

// NumStates returns the number of states in the merged LALR(1) automaton.
func (t *Table) NumStates() int {
	return t.numStates
}

// Action returns the ACTION table entry for (state, terminal).
func (t *Table) Action(state int, term handle.Handle[grammar.Terminal]) Action {
	if a, ok := t.action[state][term]; ok {
		return a
	}
	return Action{Type: ActionError}
}

// ActionEOI returns the ACTION table entry for (state, $).
func (t *Table) ActionEOI(state int) Action {
	return t.actionEOI[state]
}

// Goto returns the GOTO table entry for (state, nonterminal).
func (t *Table) Goto(state int, nt handle.Handle[grammar.Nonterminal]) (int, bool) {
	s, ok := t.gotoTable[state][nt]
	return s, ok
}

// Build constructs the canonical LALR(1) table for g, which must already be
// augmented (grammar.Grammar.Augment) and validated. augProd/augNT are
// Augment's return values.
func Build(g *grammar.Grammar, augProd int, augNT handle.Handle[grammar.Nonterminal]) (*Table, error) {
	startItem := itemKey{prod: augProd, dot: 0, la: lookahead{eoi: true}}
	startSet := closure(g, itemSet{startItem: true})

	type canonState struct {
		items itemSet
		trans map[string]int // symbolKey -> canonical state index
	}
	var canon []*canonState
	indexOf := make(map[string]int)

	symKey := func(sym grammar.GrammarSymbol) string {
		if sym.Kind == grammar.SymTerminal {
			return fmt.Sprintf("t%d", sym.Term.Index())
		}
		return fmt.Sprintf("n%d", sym.NT.Index())
	}

	intern := func(items itemSet) int {
		key := itemSet(items).key()
		if i, ok := indexOf[key]; ok {
			return i
		}
		i := len(canon)
		indexOf[key] = i
		canon = append(canon, &canonState{items: items, trans: make(map[string]int)})
		return i
	}

	startIdx := intern(startSet)
	var worklist = []int{startIdx}

	allSymbols := allGrammarSymbols(g)

	for len(worklist) > 0 {
		idx := worklist[0]
		worklist = worklist[1:]
		cur := canon[idx]

		for _, sym := range allSymbols {
			moved := gotoSet(g, cur.items, sym)
			if len(moved) == 0 {
				continue
			}
			key := symKey(sym)
			if _, ok := cur.trans[key]; ok {
				continue
			}
			before := len(canon)
			target := intern(moved)
			cur.trans[key] = target
			if target >= before {
				worklist = append(worklist, target)
			}
		}
	}

	// Merge canonical states sharing an LR(0) core into LALR(1) states.
	mergedOf := make([]int, len(canon))
	var mergedCore []string
	coreIndex := make(map[string]int)
	for i, cs := range canon {
		ck := coreKey(cs.items)
		mi, ok := coreIndex[ck]
		if !ok {
			mi = len(mergedCore)
			coreIndex[ck] = mi
			mergedCore = append(mergedCore, ck)
		}
		mergedOf[i] = mi
	}

	numMerged := len(mergedCore)
	mergedItems := make([]itemSet, numMerged)
	for i, cs := range canon {
		mi := mergedOf[i]
		if mergedItems[mi] == nil {
			mergedItems[mi] = make(itemSet)
		}
		for k := range cs.items {
			mergedItems[mi][k] = true
		}
	}

	tbl := &Table{
		g:         g,
		start:     mergedOf[startIdx],
		action:    make([]map[handle.Handle[grammar.Terminal]]Action, numMerged),
		actionEOI: make([]Action, numMerged),
		gotoTable: make([]map[handle.Handle[grammar.Nonterminal]]int, numMerged),
		numStates: numMerged,
	}
	for i := range tbl.action {
		tbl.action[i] = make(map[handle.Handle[grammar.Terminal]]Action)
		tbl.gotoTable[i] = make(map[handle.Handle[grammar.Nonterminal]]int)
	}

	setAction := func(state int, term handle.Handle[grammar.Terminal], a Action) error {
		if existing, ok := tbl.action[state][term]; ok && existing != a {
			resolved, note, err := resolveConflict(g, existing, a, term)
			if err != nil {
				return err
			}
			if note != "" {
				tbl.Conflicts = append(tbl.Conflicts, note)
			}
			tbl.action[state][term] = resolved
			return nil
		}
		tbl.action[state][term] = a
		return nil
	}
	setActionEOI := func(state int, a Action) error {
		existing := tbl.actionEOI[state]
		if existing.Type != ActionError && existing != a {
			// Shift never appears on the end-of-input column (nothing
			// follows $ to shift), so only reduce/reduce and accept/reduce
			// can land here; resolveConflict's shift/reduce branch is
			// unreachable for this call site.
			resolved, note, err := resolveConflict(g, existing, a, handle.Handle[grammar.Terminal](0))
			if err != nil {
				return err
			}
			if note != "" {
				tbl.Conflicts = append(tbl.Conflicts, note)
			}
			tbl.actionEOI[state] = resolved
			return nil
		}
		tbl.actionEOI[state] = a
		return nil
	}

	// shifts and gotos, from any representative canonical state per merged
	// state (transitions agree across all members of a valid LALR(1) core).
	for i, cs := range canon {
		mi := mergedOf[i]
		for key, targetCanon := range cs.trans {
			targetMerged := mergedOf[targetCanon]
			if key[0] == 't' {
				var termIdx int
				fmt.Sscanf(key[1:], "%d", &termIdx)
				term := handle.FromIndex[grammar.Terminal](termIdx)
				if err := setAction(mi, term, Action{Type: ActionShift, State: targetMerged}); err != nil {
					return nil, err
				}
			} else {
				var ntIdx int
				fmt.Sscanf(key[1:], "%d", &ntIdx)
				nt := handle.FromIndex[grammar.Nonterminal](ntIdx)
				tbl.gotoTable[mi][nt] = targetMerged
			}
		}
	}

	// reduces and accept, from the merged item sets (lookaheads already
	// unioned across the merge).
	for mi := 0; mi < numMerged; mi++ {
		for k := range mergedItems[mi] {
			prod := g.Production(k.prod)
			if k.dot < len(prod.RHS) {
				continue
			}
			if k.prod == augProd {
				if k.la.eoi {
					if err := setActionEOI(mi, Action{Type: ActionAccept}); err != nil {
						return nil, err
					}
				}
				continue
			}
			act := Action{Type: ActionReduce, Production: k.prod}
			if k.la.eoi {
				if err := setActionEOI(mi, act); err != nil {
					return nil, err
				}
			} else {
				if err := setAction(mi, k.la.term, act); err != nil {
					return nil, err
				}
			}
		}
	}

	return tbl, nil
}

func allGrammarSymbols(g *grammar.Grammar) []grammar.GrammarSymbol {
	var out []grammar.GrammarSymbol
	for _, t := range g.Terminals() {
		out = append(out, grammar.Term(t))
	}
	for _, nt := range g.Nonterminals() {
		out = append(out, grammar.NT(nt))
	}
	return out
}

// resolveConflict applies spec.md §4.G's conflict-resolution rules. term is
// only meaningful when the conflict is over a real terminal (it's the zero
// handle for the end-of-input column, which is fine: bindings never apply
// to end-of-input).
func resolveConflict(g *grammar.Grammar, a, b Action, term handle.Handle[grammar.Terminal]) (resolved Action, note string, err error) {
	shift, reduce, ok := splitShiftReduce(a, b)
	if ok {
		return resolveShiftReduce(g, shift, reduce, term)
	}

	if a.Type == ActionReduce && b.Type == ActionReduce {
		// earliest-registered production wins (spec.md §4.G "Reduce/reduce").
		winner, loser := a, b
		if b.Production < a.Production {
			winner, loser = b, a
		}
		note = fmt.Sprintf("reduce/reduce conflict: production %d chosen over %d", winner.Production, loser.Production)
		return winner, note, nil
	}

	return Action{}, "", gofisherr.NewGrammarConflict(-1, fmt.Sprintf("unresolvable conflict between %v and %v", a, b))
}

func splitShiftReduce(a, b Action) (shift, reduce Action, ok bool) {
	if a.Type == ActionShift && b.Type == ActionReduce {
		return a, b, true
	}
	if b.Type == ActionShift && a.Type == ActionReduce {
		return b, a, true
	}
	return Action{}, Action{}, false
}

func resolveShiftReduce(g *grammar.Grammar, shift, reduce Action, term handle.Handle[grammar.Terminal]) (Action, string, error) {
	prod := g.Production(reduce.Production)
	shiftNote := fmt.Sprintf("shift/reduce conflict on %q: shift chosen over production %d", g.TerminalName(term), reduce.Production)
	reduceNote := fmt.Sprintf("shift/reduce conflict on %q: production %d chosen over shift", g.TerminalName(term), reduce.Production)

	prodBinding := prod.Binding
	if prodBinding == nil {
		prodBinding = rightmostTerminalBinding(g, prod)
	}
	termBinding := terminalBinding(g, term)

	if prodBinding == nil || termBinding == nil {
		// no precedence information: default to shift (spec.md §4.G).
		return shift, shiftNote, nil
	}

	pProd := g.BindingPrecedence(*prodBinding)
	pTerm := g.BindingPrecedence(*termBinding)

	if pProd > pTerm {
		return reduce, reduceNote, nil
	}
	if pTerm > pProd {
		return shift, shiftNote, nil
	}

	switch g.GetBinding(*prodBinding).Assoc {
	case grammar.Left:
		return reduce, reduceNote, nil
	case grammar.Right:
		return shift, shiftNote, nil
	default:
		return Action{}, "", gofisherr.NewGrammarConflict(-1, fmt.Sprintf("nonassociative operator %q used associatively", g.TerminalName(term)))
	}
}

// rightmostTerminalBinding finds the binding of the rightmost terminal in a
// production's RHS, the fallback spec.md §4.G names when the production has
// no explicit Binding annotation.
func rightmostTerminalBinding(g *grammar.Grammar, prod grammar.Production) *handle.Handle[grammar.Binding] {
	for i := len(prod.RHS) - 1; i >= 0; i-- {
		if prod.RHS[i].Kind == grammar.SymTerminal {
			if b := terminalBinding(g, prod.RHS[i].Term); b != nil {
				return b
			}
			return nil
		}
	}
	return nil
}

func terminalBinding(g *grammar.Grammar, term handle.Handle[grammar.Terminal]) *handle.Handle[grammar.Binding] {
	// Bindings are few; a grammar of any realistic test size makes a linear
	// scan over them cheaper than maintaining a reverse index.
	for _, i := range g.Bindings() {
		b := g.GetBinding(i)
		if b.Terminals.Has(term) {
			h := i
			return &h
		}
	}
	return nil
}

func (s itemSet) key() string {
	keys := itemSet(s).sortedKeys()
	buf := make([]byte, 0, len(keys)*12)
	for _, k := range keys {
		buf = appendInt(buf, k.prod)
		buf = append(buf, ':')
		buf = appendInt(buf, k.dot)
		buf = append(buf, ':')
		if k.la.eoi {
			buf = append(buf, '$')
		} else {
			buf = appendInt(buf, k.la.term.Index())
		}
		buf = append(buf, ',')
	}
	return string(buf)
}
