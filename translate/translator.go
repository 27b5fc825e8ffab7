// Package translate implements the bottom-up reduction fold spec.md §4.H
// specifies: a HandlerId-keyed vector of reduction handlers, invoked by the
// LR driver as each production reduces. This is a deliberately simpler model
// than the teacher's internal/ictiobus/translation package, which implements
// a full synthesized/inherited attribute-grammar SDD engine with an explicit
// dependency graph (translation.go, relnodes.go, graph.go); spec.md §4.H only
// asks for "handlers are pure from the driver's perspective: they receive
// the children's satellites and return one", so this package keeps the
// teacher's handler-registered-by-tag idiom and drops the attribute
// dependency graph it doesn't need.
package translate

import (
	"fmt"
	"io"

	"github.com/dekarrin/gofish/gofisherr"
	"github.com/dekarrin/gofish/grammar"
	"github.com/dekarrin/gofish/handle"
	"github.com/dekarrin/gofish/lex"
	"github.com/dekarrin/gofish/parse"
)

// Handler computes a reduction's satellite value from its children's
// satellites, in left-to-right RHS order. S is the caller's chosen
// satellite type (e.g. an AST node, or a plain value for calculator-style
// grammars like spec.md's property 7 scenario).
type Handler[S any] func(children []S) (S, error)

// LeafSatellite builds the satellite value a shifted terminal carries from
// its scanned lexeme text — the leaf case of the bottom-up fold, where
// spec.md §4.H's "satellite_of(lookahead)" is a caller-supplied conversion
// (e.g. parsing a NUMBER lexeme's text into an int for an arithmetic
// grammar's handlers to consume).
type LeafSatellite[T any, S any] func(tokenType T, text string) (S, error)

// Translator is a compiled, read-only (§3 "Lifecycles") bundle of a
// LexicalAnalyzer, a parse Table, and a handler registered per production —
// everything build.Builder.Build returns. It is safe to share across
// goroutines for concurrent, independent Translate calls, each of which
// owns its own Scanner and driver stacks (spec.md §5).
type Translator[T comparable, S any] struct {
	lx            *lex.LexicalAnalyzer[T]
	table         *parse.Table
	handlers      map[int]Handler[S]
	tokenTerminal map[T]handle.Handle[grammar.Terminal]
	leaf          LeafSatellite[T, S]
}

// New assembles a Translator. handlers must have an entry for every
// production index the grammar defines (other than the augmenting
// production, which the driver handles itself via Accept). termOf maps each
// token type value the lexer produces to the grammar terminal it denotes.
// leaf converts a shifted lexeme into the satellite value handlers see for
// that leaf.
func New[T comparable, S any](
	lx *lex.LexicalAnalyzer[T],
	table *parse.Table,
	handlers map[int]Handler[S],
	termOf map[T]handle.Handle[grammar.Terminal],
	leaf LeafSatellite[T, S],
) *Translator[T, S] {
	return &Translator[T, S]{lx: lx, table: table, handlers: handlers, tokenTerminal: termOf, leaf: leaf}
}

// Translate drives the parse table over the token stream scanned from r,
// pulling one lexeme at a time as the driver needs its next lookahead, and
// invokes registered handlers bottom-up as productions reduce (spec.md
// §4.H). skip reports whether a scanned
// lexeme's token type should be discarded rather than fed to the parser
// (whitespace/comment patterns registered like any other lexeme, per
// scenarios S1/S2, then filtered here instead of at the DFA level).
func (tr *Translator[T, S]) Translate(r lex.Reader, skip func(T) bool) (S, error) {
	var zero S
	sc := tr.lx.NewScanner(r)
	offset := 0

	next := func() (parse.Token, S, error) {
		for {
			lexeme, err := sc.Next()
			if err == io.EOF {
				return parse.Token{EndOfInput: true, Offset: offset}, zero, nil
			}
			if err != nil {
				return parse.Token{}, zero, err
			}
			offset += len(lexeme.Text)

			if skip != nil && skip(lexeme.Type) {
				continue
			}
			term, ok := tr.tokenTerminal[lexeme.Type]
			if !ok {
				return parse.Token{}, zero, fmt.Errorf("translate: lexeme type %v has no registered grammar terminal", lexeme.Type)
			}
			sat, err := tr.leaf(lexeme.Type, lexeme.Text)
			if err != nil {
				return parse.Token{}, zero, err
			}
			return parse.Token{Terminal: term, Text: lexeme.Text, Offset: offset}, sat, nil
		}
	}

	reduce := func(handlerID int, children []S) (S, error) {
		h, ok := tr.handlers[handlerID]
		if !ok {
			return zero, gofisherr.NewGrammarConflict(-1, fmt.Sprintf("no handler registered for HandlerId %d", handlerID))
		}
		return h(children)
	}

	return parse.Run(tr.table, next, reduce)
}
