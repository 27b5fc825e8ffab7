package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gofish/handle"
)

// LR0Item is a production with a dot position: Production is the
// production's index in Grammar.Productions(), and Dot is how many RHS
// symbols precede the dot.
// Handle-keyed sibling of the teacher's internal/ictiobus/grammar.LR0Item,
// which spells the same thing out as NonTerminal/Left/Right string slices;
// here the dot position is an index into Production.RHS instead of
// splitting the symbol slice in two, since the RHS itself never needs to be
// copied to move the dot.
type LR0Item struct {
	Production int // index into Grammar.Productions()
	Dot        int
}

// AtEnd reports whether the dot has reached the end of the production
// (nothing left to shift).
func (it LR0Item) AtEnd(g *Grammar) bool {
	return it.Dot >= len(g.Production(it.Production).RHS)
}

// NextSymbol returns the symbol immediately after the dot, and whether one
// exists.
func (it LR0Item) NextSymbol(g *Grammar) (GrammarSymbol, bool) {
	rhs := g.Production(it.Production).RHS
	if it.Dot >= len(rhs) {
		return GrammarSymbol{}, false
	}
	return rhs[it.Dot], true
}

// Advance returns the item with the dot moved one symbol to the right.
func (it LR0Item) Advance() LR0Item {
	return LR0Item{Production: it.Production, Dot: it.Dot + 1}
}

func (it LR0Item) String(g *Grammar) string {
	p := g.Production(it.Production)
	var sb strings.Builder
	sb.WriteString(g.NonterminalName(p.LHS))
	sb.WriteString(" -> ")
	for i, sym := range p.RHS {
		if i == it.Dot {
			sb.WriteString(". ")
		}
		sb.WriteString(symbolString(g, sym))
		sb.WriteString(" ")
	}
	if it.Dot == len(p.RHS) {
		sb.WriteString(".")
	}
	return strings.TrimRight(sb.String(), " ")
}

func symbolString(g *Grammar, s GrammarSymbol) string {
	if s.Kind == SymTerminal {
		return g.TerminalName(s.Term)
	}
	return g.NonterminalName(s.NT)
}

// LR1Item is an LR0Item annotated with a single lookahead terminal, the unit
// of canonical LR(1)/LALR(1) item sets (spec.md §4.F). The parse package
// builds its item sets from its own unexported item type of the same shape,
// not from LR1Item.
// EndOfInput marks the distinguished `$` lookahead, which is not a real
// Terminal handle (it only ever appears in the augmented start production's
// FOLLOW set, per spec.md §3).
type LR1Item struct {
	LR0Item
	Lookahead  handle.Handle[Terminal] // meaningless if EndOfInput
	EndOfInput bool
}

func (it LR1Item) String(g *Grammar) string {
	la := "$"
	if !it.EndOfInput {
		la = g.TerminalName(it.Lookahead)
	}
	return fmt.Sprintf("[%s, %s]", it.LR0Item.String(g), la)
}
