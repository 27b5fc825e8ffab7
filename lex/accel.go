package lex

import "github.com/coregx/ahocorasick"

// LiteralAccelerator is an optional fast path for lexers whose patterns are
// dominated by plain keywords and operators (the common case for
// programming-language lexers — "if", "else", "+", "==", ...). It mirrors
// the meta regex engine's own fallback in coregx/coregex/meta: when a
// pattern set resolves to a large alternation of literal strings, that
// engine builds a github.com/coregx/ahocorasick automaton instead of
// walking its general NFA/DFA machinery, because Aho-Corasick answers
// "does any of these literals start here" in time proportional to the input
// alone, independent of how many literals there are.
//
// Here the accelerator never replaces the DFA — DFA-driven longest-match
// with priority tie-breaking (spec.md §4.E) remains the single source of
// truth for what a lexeme is. Scanner.Next never consults the accelerator;
// it is exposed through LexicalAnalyzer.Accelerator() for callers who want
// to pre-screen a fully-buffered input for keyword positions themselves.
type LiteralAccelerator struct {
	auto *ahocorasick.Automaton
	// literalLabel maps each literal's byte sequence to its position in the
	// literals slice given to NewLiteralAccelerator (the later position if
	// the same literal appears twice).
	literalLabel map[string]int
}

// NewLiteralAccelerator builds an accelerator over the given literal
// patterns; MatchAt reports a hit as the literal's 0-based position in
// literals. NewLexicalAnalyzer passes only its plain-literal patterns, in
// registration order, so that position counts literal patterns only: it is
// not the pattern's registration index (nor its LabelID) once a non-literal
// pattern was registered before it. Returns nil if literals is empty;
// callers should treat a nil *LiteralAccelerator as "no acceleration
// available" and always fall through to the DFA.
func NewLiteralAccelerator(literals []string) (*LiteralAccelerator, error) {
	if len(literals) == 0 {
		return nil, nil
	}
	builder := ahocorasick.NewBuilder()
	labels := make(map[string]int, len(literals))
	for i, lit := range literals {
		builder.AddPattern([]byte(lit))
		labels[lit] = i
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &LiteralAccelerator{auto: auto, literalLabel: labels}, nil
}

// MatchAt reports whether some registered literal starts exactly at
// position at in haystack, and if so, its position in the literals slice
// NewLiteralAccelerator was given.
// This only ever narrows the search space; the DFA scan still runs and
// determines the actual longest match (a longer non-literal pattern may
// legitimately win over a literal one, e.g. an identifier pattern beating a
// single-character operator literal at the same start position).
func (a *LiteralAccelerator) MatchAt(haystack []byte, at int) (patternIndex int, ok bool) {
	if a == nil || a.auto == nil {
		return 0, false
	}
	m := a.auto.Find(haystack, at)
	if m == nil || m.Start != at {
		return 0, false
	}
	lit := string(haystack[m.Start:m.End])
	idx, found := a.literalLabel[lit]
	return idx, found
}
