package lex

import (
	"io"
	"unicode/utf8"

	"github.com/dekarrin/gofish/automaton"
	"github.com/dekarrin/gofish/gofisherr"
	"github.com/dekarrin/gofish/handle"
	"github.com/dekarrin/gofish/regexast"
)

// PatternDescriptor registers one lexeme pattern with the token value it
// produces when matched. Patterns are prioritized by registration order:
// when two patterns both match the longest possible prefix, the one
// registered earlier wins (spec.md §4.D).
type PatternDescriptor[T any] struct {
	Pattern regexast.Node
	Type    T
}

// LexicalAnalyzer is an immutable, compiled lexer: the minimized DFA plus the
// token value each accept label maps back to. It carries no per-scan state of
// its own (spec.md §5 names the reader position as the only mutable state a
// lex does keep, and that lives on Scanner instead), so one LexicalAnalyzer
// can back any number of concurrent Scanners.
type LexicalAnalyzer[T any] struct {
	dfa         *automaton.LabeledDFA
	dead        handle.Handle[automaton.DFAState]
	typeOfLabel map[automaton.LabelID]T
	accel       *LiteralAccelerator
}

// NewLexicalAnalyzer compiles descriptors into a single minimized DFA,
// following spec.md §4.A-D: every pattern is compiled into one shared
// NFABuilder (Thompson's construction, regexast.CompileInto), wired from a
// common start state by ε-edges, then run through subset construction and
// Hopcroft minimization. Patterns whose Node is a plain literal string are
// also registered with a LiteralAccelerator, exposed via Accelerator() as a
// caller-facing helper for prefiltering keyword positions; the scan loop
// itself always drives the DFA byte by byte.
func NewLexicalAnalyzer[T any](descriptors []PatternDescriptor[T]) (*LexicalAnalyzer[T], error) {
	builder := automaton.NewNFABuilder()
	start := builder.NewState()

	typeOfLabel := make(map[automaton.LabelID]T, len(descriptors))
	var literals []string

	for i, d := range descriptors {
		entry, exit := regexast.CompileInto(builder, d.Pattern)
		builder.Link(start, entry, automaton.Epsilon)
		builder.SetAccept(exit, true)
		label := automaton.LabelForPattern(i)
		builder.SetLabel(exit, label)
		typeOfLabel[label] = d.Type

		if lit, ok := literalString(d.Pattern); ok {
			literals = append(literals, lit)
		}
	}

	nfa := builder.Build(start)
	dfa, subsetOf := nfa.ToDFA()
	labeled := automaton.NewLabeledDFA(dfa)
	labeled.LabelFromNFA(nfa, subsetOf)
	minimized := labeled.Minimize()

	dead, ok := minimized.LocateDeadState()
	if !ok {
		// Every minimized lexer DFA has exactly one dead state (spec.md §3/§8
		// property 3); its absence means subset construction or minimization
		// has a bug, not a bad caller input, so this fails loudly instead of
		// being wrapped as an ordinary error.
		panic("lex: minimized DFA has no dead state")
	}

	accel, err := NewLiteralAccelerator(literals)
	if err != nil {
		return nil, err
	}

	return &LexicalAnalyzer[T]{
		dfa:         minimized,
		dead:        dead,
		typeOfLabel: typeOfLabel,
		accel:       accel,
	}, nil
}

// literalString reports whether n is, structurally, nothing but a
// concatenation of single-byte Literal nodes (what regexast.Str builds),
// and if so returns the string it spells out. Alt/Star/Optional/Plus nodes
// disqualify a pattern from the accelerator, since a literal-only prefilter
// can't represent them.
func literalString(n regexast.Node) (string, bool) {
	var buf []byte
	var walk func(regexast.Node) bool
	walk = func(n regexast.Node) bool {
		switch v := n.(type) {
		case regexast.Empty:
			return true
		case regexast.Literal:
			buf = append(buf, v.Symbol)
			return true
		case regexast.Concat:
			return walk(v.Left) && walk(v.Right)
		default:
			return false
		}
	}
	if !walk(n) || len(buf) == 0 {
		return "", false
	}
	return string(buf), true
}

// Lexeme is one scanned token: the registered pattern's type value, plus the
// exact source text matched.
type Lexeme[T any] struct {
	Type T
	Text string
}

// Scanner drives repeated Next calls over a single Reader, the per-scan
// mutable state spec.md §5 calls out (stream offset, tail position). A
// LexicalAnalyzer is shared and read-only; a Scanner is not safe for
// concurrent use.
type Scanner[T any] struct {
	lx     *LexicalAnalyzer[T]
	r      Reader
	offset int
}

// NewScanner returns a Scanner reading from r.
func (lx *LexicalAnalyzer[T]) NewScanner(r Reader) *Scanner[T] {
	return &Scanner[T]{lx: lx, r: r}
}

// Accelerator exposes the literal-only prefilter built alongside the DFA, for
// callers scanning a fully-buffered input who want to skip ahead between
// keyword candidates instead of driving the DFA one byte at a time (e.g. a
// build-time check of which registered keywords occur anywhere in a source
// file). Returns nil if no registered pattern was a plain literal.
func (lx *LexicalAnalyzer[T]) Accelerator() *LiteralAccelerator {
	return lx.accel
}

// Next scans and returns the next lexeme, implementing spec.md §4.E exactly:
// walk the DFA recording the most recent accept state's tail, stop at the
// dead state or end of input, and on stop either emit the lexeme at the
// recorded tail or report failure. Returns io.EOF once the reader is
// genuinely exhausted with nothing left to match.
func (sc *Scanner[T]) Next() (Lexeme[T], error) {
	lx := sc.lx
	state := lx.dfa.DFA.Start()
	lastAccept := automaton.LabelNone
	bytesRead := 0

	for {
		label := lx.dfa.GetLabel(state)
		if label != automaton.LabelNone {
			lastAccept = label
			sc.r.SetTail()
		}

		b, ok := sc.r.ReadNext()
		if !ok {
			break
		}
		bytesRead++

		if b == 0xFF {
			state = lx.dead
			break
		}

		next := lx.dfa.DFA.Step(state, automaton.InputSymbol(b))
		state = next
		if next == lx.dead {
			break
		}
	}

	if lastAccept == automaton.LabelNone {
		if bytesRead == 0 {
			return Lexeme[T]{}, io.EOF
		}
		failByte := byte(0)
		seq := sc.r.Sequence()
		if len(seq) > 0 {
			failByte = seq[len(seq)-1]
		}
		return Lexeme[T]{}, gofisherr.NewLexError(sc.offset, failByte)
	}

	seq := sc.r.Sequence()
	if !utf8.Valid(seq) {
		return Lexeme[T]{}, gofisherr.NewEncodingError(sc.offset)
	}
	text := string(seq)
	sc.offset += len(seq)
	sc.r.RestartFromTail()

	return Lexeme[T]{Type: lx.typeOfLabel[lastAccept], Text: text}, nil
}
