// Package grammar implements the context-free grammar model of spec.md §3:
// disjoint terminal/nonterminal handle arenas, a tagged GrammarSymbol union,
// productions carrying an optional precedence Binding and a HandlerId tag,
// and FIRST/FOLLOW set computation over that model. It follows the shape of
// the teacher's internal/ictiobus/grammar package (Grammar.AddTerm/AddRule,
// FIRST/FOLLOW, Validate), generalized from string-keyed symbols to
// handle-keyed ones per spec.md's arena discipline.
package grammar

import (
	"fmt"
	"sort"

	"github.com/dekarrin/gofish/handle"
)

// Terminal is one lexical token kind a grammar can reference.
type Terminal struct {
	Name string
}

// Nonterminal is one grammar symbol a production's left-hand side can be.
type Nonterminal struct {
	Name string
}

// Associativity is a Binding's tie-breaking rule for same-precedence
// shift/reduce conflicts (spec.md §4.G).
type Associativity int

const (
	NonAssoc Associativity = iota
	Left
	Right
)

func (a Associativity) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "nonassoc"
	}
}

// Binding groups a set of terminals under one associativity. Bindings are
// linearly ordered by registration order (their handle's arena index),
// lowest first; the most recently registered binding has the highest
// precedence (spec.md §4.G "Precedence ordering").
type Binding struct {
	Terminals handle.Set[Terminal]
	Assoc     Associativity
}

// HandlerId is the opaque tag a production carries identifying which
// reduction handler the translator should invoke for it (spec.md §3).
type HandlerId int

// SymbolKind distinguishes the two cases of GrammarSymbol.
type SymbolKind int

const (
	SymTerminal SymbolKind = iota
	SymNonterminal
)

// GrammarSymbol is the tagged union `Terminal(h) | Nonterminal(h)` spec.md §3
// specifies: every production's RHS is a slice of these.
type GrammarSymbol struct {
	Kind SymbolKind
	Term handle.Handle[Terminal]
	NT   handle.Handle[Nonterminal]
}

// Term wraps a terminal handle as a GrammarSymbol.
func Term(h handle.Handle[Terminal]) GrammarSymbol {
	return GrammarSymbol{Kind: SymTerminal, Term: h}
}

// NT wraps a nonterminal handle as a GrammarSymbol.
func NT(h handle.Handle[Nonterminal]) GrammarSymbol {
	return GrammarSymbol{Kind: SymNonterminal, NT: h}
}

func (s GrammarSymbol) IsTerminal() bool {
	return s.Kind == SymTerminal
}

func (s GrammarSymbol) Equal(o GrammarSymbol) bool {
	if s.Kind != o.Kind {
		return false
	}
	if s.Kind == SymTerminal {
		return s.Term == o.Term
	}
	return s.NT == o.NT
}

// Production is `lhs -> rhs` with an optional precedence Binding and a
// handler tag (spec.md §3).
type Production struct {
	LHS     handle.Handle[Nonterminal]
	RHS     []GrammarSymbol
	Binding *handle.Handle[Binding]
	Tag     HandlerId
}

// Grammar is the full model: terminal/nonterminal arenas, registered
// bindings, productions in registration order, and a designated start
// symbol. It is mutable while being assembled (via build.Builder) and
// treated as read-only once passed to the parser generator, matching the
// build-once/read-many lifecycle of spec.md §3's "Lifecycles" note.
type Grammar struct {
	terminals    *handle.Vec[Terminal]
	nonterminals *handle.Vec[Nonterminal]
	bindings     *handle.Vec[Binding]
	productions  []Production
	start        handle.Handle[Nonterminal]
	hasStart     bool

	firstCache map[handle.Handle[Nonterminal]]firstResult
}

type firstResult struct {
	set      handle.Set[Terminal]
	nullable bool
}

// New returns an empty grammar.
func New() *Grammar {
	return &Grammar{
		terminals:    handle.NewVec[Terminal](),
		nonterminals: handle.NewVec[Nonterminal](),
		bindings:     handle.NewVec[Binding](),
	}
}

// AddTerm registers a new terminal symbol.
func (g *Grammar) AddTerm(name string) handle.Handle[Terminal] {
	g.firstCache = nil
	return g.terminals.Insert(Terminal{Name: name})
}

// AddNonterm registers a new nonterminal symbol.
func (g *Grammar) AddNonterm(name string) handle.Handle[Nonterminal] {
	g.firstCache = nil
	return g.nonterminals.Insert(Nonterminal{Name: name})
}

// AddBinding registers a new precedence binding over the given terminals.
// Registration order sets precedence: each call produces a binding with
// higher precedence than every binding registered before it.
func (g *Grammar) AddBinding(terms []handle.Handle[Terminal], assoc Associativity) handle.Handle[Binding] {
	set := handle.NewSet(terms...)
	return g.bindings.Insert(Binding{Terminals: set, Assoc: assoc})
}

// AddRule registers one production. binding may be nil.
func (g *Grammar) AddRule(lhs handle.Handle[Nonterminal], rhs []GrammarSymbol, binding *handle.Handle[Binding], tag HandlerId) int {
	g.firstCache = nil
	g.productions = append(g.productions, Production{LHS: lhs, RHS: rhs, Binding: binding, Tag: tag})
	return len(g.productions) - 1
}

// SetStart designates the grammar's start symbol.
func (g *Grammar) SetStart(nt handle.Handle[Nonterminal]) {
	g.start = nt
	g.hasStart = true
}

// Start returns the designated start symbol.
func (g *Grammar) Start() (handle.Handle[Nonterminal], bool) {
	return g.start, g.hasStart
}

// Terminals returns every registered terminal handle, in registration order.
func (g *Grammar) Terminals() []handle.Handle[Terminal] {
	return g.terminals.Handles()
}

// Nonterminals returns every registered nonterminal handle, in registration
// order.
func (g *Grammar) Nonterminals() []handle.Handle[Nonterminal] {
	return g.nonterminals.Handles()
}

// TerminalName returns the display name of a terminal.
func (g *Grammar) TerminalName(h handle.Handle[Terminal]) string {
	return g.terminals.Get(h).Name
}

// NonterminalName returns the display name of a nonterminal.
func (g *Grammar) NonterminalName(h handle.Handle[Nonterminal]) string {
	return g.nonterminals.Get(h).Name
}

// GetBinding returns a registered binding by handle.
func (g *Grammar) GetBinding(h handle.Handle[Binding]) Binding {
	return g.bindings.Get(h)
}

// Bindings returns every registered binding handle, in registration order.
func (g *Grammar) Bindings() []handle.Handle[Binding] {
	return g.bindings.Handles()
}

// BindingPrecedence returns h's precedence rank: higher is tighter-binding.
// Precedence is simply the binding's registration index, since bindings
// registered later always outrank ones registered earlier (spec.md §4.G).
func (g *Grammar) BindingPrecedence(h handle.Handle[Binding]) int {
	return h.Index()
}

// Productions returns every registered production, in registration order
// (production index order, used as the reduce/reduce earliest-wins tie
// breaker).
func (g *Grammar) Productions() []Production {
	return g.productions
}

// Production returns the i'th registered production.
func (g *Grammar) Production(i int) Production {
	return g.productions[i]
}

// ProductionsFor returns the indices of every production whose LHS is nt, in
// registration order.
func (g *Grammar) ProductionsFor(nt handle.Handle[Nonterminal]) []int {
	var out []int
	for i, p := range g.productions {
		if p.LHS == nt {
			out = append(out, i)
		}
	}
	return out
}

// Augment adds the canonical augmenting production the LALR(1) generator
// needs (spec.md §3 "one augmenting production S' -> S $"): a fresh start
// nonterminal whose only production is the old start symbol, then rebinds
// Start to it. Returns the new production's index and the fresh
// nonterminal. Must be called exactly once, after the caller has finished
// registering rules and has called SetStart.
func (g *Grammar) Augment() (prodIndex int, augmented handle.Handle[Nonterminal]) {
	if !g.hasStart {
		panic("grammar: Augment called before SetStart")
	}
	oldStart := g.start
	augmented = g.AddNonterm("$accept")
	prodIndex = g.AddRule(augmented, []GrammarSymbol{NT(oldStart)}, nil, -1)
	g.SetStart(augmented)
	return prodIndex, augmented
}

// Validate checks the structural invariants a grammar must satisfy before
// table generation: a start symbol is set, every nonterminal has at least
// one production, and every nonterminal is reachable from the start symbol.
func (g *Grammar) Validate() error {
	if !g.hasStart {
		return fmt.Errorf("grammar: no start symbol set")
	}
	for _, nt := range g.nonterminals.Handles() {
		if len(g.ProductionsFor(nt)) == 0 {
			return fmt.Errorf("grammar: nonterminal %q has no productions (empty language)", g.NonterminalName(nt))
		}
	}

	reachable := make(map[handle.Handle[Nonterminal]]bool)
	var visit func(nt handle.Handle[Nonterminal])
	visit = func(nt handle.Handle[Nonterminal]) {
		if reachable[nt] {
			return
		}
		reachable[nt] = true
		for _, i := range g.ProductionsFor(nt) {
			for _, sym := range g.productions[i].RHS {
				if sym.Kind == SymNonterminal {
					visit(sym.NT)
				}
			}
		}
	}
	visit(g.start)

	var unreached []string
	for _, nt := range g.nonterminals.Handles() {
		if !reachable[nt] {
			unreached = append(unreached, g.NonterminalName(nt))
		}
	}
	if len(unreached) > 0 {
		sort.Strings(unreached)
		return fmt.Errorf("grammar: unreachable nonterminal(s) from start symbol: %v", unreached)
	}
	return nil
}

// FIRST computes FIRST(symbols) for a sequence of grammar symbols: the set
// of terminals that can begin some string the sequence derives, plus
// whether the whole sequence can derive the empty string.
func (g *Grammar) FIRST(symbols []GrammarSymbol) (set handle.Set[Terminal], nullable bool) {
	g.ensureFirstSets()
	set = handle.NewSet[Terminal]()
	nullable = true
	for _, sym := range symbols {
		var symSet handle.Set[Terminal]
		var symNullable bool
		if sym.Kind == SymTerminal {
			symSet = handle.NewSet[Terminal]()
			symSet.Add(sym.Term)
			symNullable = false
		} else {
			r := g.firstCache[sym.NT]
			symSet, symNullable = r.set, r.nullable
		}
		set = set.Union(symSet)
		if !symNullable {
			nullable = false
			break
		}
	}
	return set, nullable
}

// ensureFirstSets computes FIRST(nt) for every nonterminal to a global fixed
// point, the way FOLLOW below does, rather than recursing per nonterminal: a
// per-nonterminal recursion with a cycle guard only sees a partial fixpoint
// for mutually-recursive nonterminals (A's FIRST depends on B's depends on
// A's), so it must not be cached as final. Iterating production-by-production
// until nothing changes avoids that, at the cost of recomputing from scratch
// whenever the grammar is mutated (AddTerm/AddNonterm/AddRule clear
// g.firstCache).
func (g *Grammar) ensureFirstSets() {
	if g.firstCache != nil {
		return
	}

	first := make(map[handle.Handle[Nonterminal]]handle.Set[Terminal])
	nullable := make(map[handle.Handle[Nonterminal]]bool)
	for _, nt := range g.nonterminals.Handles() {
		first[nt] = handle.NewSet[Terminal]()
	}

	changed := true
	for changed {
		changed = false
		for _, p := range g.productions {
			seqNullable := len(p.RHS) == 0
			for _, sym := range p.RHS {
				var symSet handle.Set[Terminal]
				var symNullable bool
				if sym.Kind == SymTerminal {
					symSet = handle.NewSet[Terminal]()
					symSet.Add(sym.Term)
					symNullable = false
				} else {
					symSet = first[sym.NT]
					symNullable = nullable[sym.NT]
				}
				before := first[p.LHS].Len()
				first[p.LHS] = first[p.LHS].Union(symSet)
				if first[p.LHS].Len() != before {
					changed = true
				}
				if !symNullable {
					seqNullable = false
					break
				}
				seqNullable = true
			}
			if seqNullable && !nullable[p.LHS] {
				nullable[p.LHS] = true
				changed = true
			}
		}
	}

	g.firstCache = make(map[handle.Handle[Nonterminal]]firstResult, len(first))
	for nt, set := range first {
		g.firstCache[nt] = firstResult{set: set, nullable: nullable[nt]}
	}
}

// FOLLOW computes FOLLOW(nt): the set of terminals that can immediately
// follow nt in some derivation from the start symbol. The end-of-input
// marker is not a Terminal handle in this model; callers needing FOLLOW(S)
// to include end-of-input (the grammar's augmenting production) add it
// themselves, per spec.md §3's note that `$` is only a terminal in the
// FOLLOW of the start symbol.
func (g *Grammar) FOLLOW(nt handle.Handle[Nonterminal]) handle.Set[Terminal] {
	follow := make(map[handle.Handle[Nonterminal]]handle.Set[Terminal])
	for _, n := range g.nonterminals.Handles() {
		follow[n] = handle.NewSet[Terminal]()
	}

	changed := true
	for changed {
		changed = false
		for _, p := range g.productions {
			for i, sym := range p.RHS {
				if sym.Kind != SymNonterminal {
					continue
				}
				rest := p.RHS[i+1:]
				restFirst, restNullable := g.FIRST(rest)
				before := follow[sym.NT].Len()
				follow[sym.NT] = follow[sym.NT].Union(restFirst)
				if restNullable {
					follow[sym.NT] = follow[sym.NT].Union(follow[p.LHS])
				}
				if follow[sym.NT].Len() != before {
					changed = true
				}
			}
		}
	}

	return follow[nt]
}
