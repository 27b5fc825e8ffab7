// Package build is the public assembly surface spec.md §6 names: new_terminal,
// new_nonterminal, register_lexeme, register_binding, register_rule,
// set_start, build. It owns no algorithm of its own — it wires grammar,
// lex, parse, and translate together in the order spec.md's component
// design requires (validate the grammar, compile the lexer, augment the
// grammar, build the LALR(1) table, assemble the translator) and reports
// Diagnostics for anything the construction had to resolve or warn about.
package build

import (
	"github.com/dekarrin/gofish/grammar"
	"github.com/dekarrin/gofish/handle"
	"github.com/dekarrin/gofish/lex"
	"github.com/dekarrin/gofish/parse"
	"github.com/dekarrin/gofish/regexast"
	"github.com/dekarrin/gofish/translate"
)

// Builder assembles a grammar, a lexicon, and a set of reduction handlers
// into a Translator. T is the lexer's token-type value; S is the
// translator's satellite value.
type Builder[T comparable, S any] struct {
	g        *grammar.Grammar
	patterns []lex.PatternDescriptor[T]
	termOf   map[T]handle.Handle[grammar.Terminal]
	handlers map[int]translate.Handler[S]
	leaf     translate.LeafSatellite[T, S]
}

// NewBuilder returns an empty Builder. leaf converts a shifted lexeme into
// the satellite value rule handlers will see for that leaf (spec.md §4.H).
func NewBuilder[T comparable, S any](leaf translate.LeafSatellite[T, S]) *Builder[T, S] {
	return &Builder[T, S]{
		g:        grammar.New(),
		termOf:   make(map[T]handle.Handle[grammar.Terminal]),
		handlers: make(map[int]translate.Handler[S]),
		leaf:     leaf,
	}
}

// NewTerminal registers a new grammar terminal.
func (b *Builder[T, S]) NewTerminal(name string) handle.Handle[grammar.Terminal] {
	return b.g.AddTerm(name)
}

// NewNonterminal registers a new grammar nonterminal.
func (b *Builder[T, S]) NewNonterminal(name string) handle.Handle[grammar.Nonterminal] {
	return b.g.AddNonterm(name)
}

// RegisterLexeme registers a lexical pattern producing tokenType when
// matched, bound to the grammar terminal term. All patterns are matched
// together through one DFA and the longest match wins; registration order is
// lex's earliest-pattern-wins priority order for equal-length matches
// (spec.md §4.D) — register the more specific pattern (a keyword)
// before the more general one (an identifier class) to win ties, per
// scenario S2.
func (b *Builder[T, S]) RegisterLexeme(pattern regexast.Node, tokenType T, term handle.Handle[grammar.Terminal]) {
	b.patterns = append(b.patterns, lex.PatternDescriptor[T]{Pattern: pattern, Type: tokenType})
	b.termOf[tokenType] = term
}

// RegisterBinding registers a new precedence binding. Bindings registered
// later outrank ones registered earlier (spec.md §4.G).
func (b *Builder[T, S]) RegisterBinding(terms []handle.Handle[grammar.Terminal], assoc grammar.Associativity) handle.Handle[grammar.Binding] {
	return b.g.AddBinding(terms, assoc)
}

// RegisterRule registers one production lhs -> rhs, with an optional
// precedence binding and a reduction handler. The production's HandlerId
// tag is assigned to match its registration index, so the driver's reduce
// dispatch and the builder's own bookkeeping always agree.
func (b *Builder[T, S]) RegisterRule(lhs handle.Handle[grammar.Nonterminal], rhs []grammar.GrammarSymbol, binding *handle.Handle[grammar.Binding], handler translate.Handler[S]) int {
	tag := grammar.HandlerId(len(b.g.Productions()))
	idx := b.g.AddRule(lhs, rhs, binding, tag)
	b.handlers[int(tag)] = handler
	return idx
}

// SetStart designates the grammar's start symbol.
func (b *Builder[T, S]) SetStart(nt handle.Handle[grammar.Nonterminal]) {
	b.g.SetStart(nt)
}

// Build validates the grammar, compiles the lexer, constructs the LALR(1)
// table, and assembles the resulting Translator. Returns Diagnostics
// describing any conflicts the table construction had to resolve.
func (b *Builder[T, S]) Build() (*translate.Translator[T, S], Diagnostics, error) {
	var diag Diagnostics

	if err := b.g.Validate(); err != nil {
		return nil, diag, err
	}

	lx, err := lex.NewLexicalAnalyzer(b.patterns)
	if err != nil {
		return nil, diag, err
	}

	augProd, augNT := b.g.Augment()
	table, err := parse.Build(b.g, augProd, augNT)
	if err != nil {
		return nil, diag, err
	}
	diag.Conflicts = table.Conflicts
	diag.States = table.NumStates()

	tr := translate.New(lx, table, b.handlers, b.termOf, b.leaf)
	return tr, diag, nil
}
