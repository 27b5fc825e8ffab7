// Package gofisherr holds the typed error values every other package returns,
// following the constructor-function-plus-structured-fields convention the
// teacher's referenced (but unretrieved) icterrors package uses from
// ictiobus/parse/lr.go ("icterrors.NewSyntaxErrorFromToken(...)"): each
// failure mode gets its own type so a caller can errors.As its way to the
// details instead of parsing a message string.
package gofisherr

import "fmt"

// GrammarConflict reports an LALR(1) table-construction conflict that
// precedence/associativity declarations did not resolve (spec.md §4.F-G).
type GrammarConflict struct {
	State  int
	Detail string
}

func NewGrammarConflict(state int, detail string) *GrammarConflict {
	return &GrammarConflict{State: state, Detail: detail}
}

func (e *GrammarConflict) Error() string {
	return fmt.Sprintf("gofish: unresolved conflict in state %d: %s", e.State, e.Detail)
}

// EmptyLanguage reports that a registered pattern or grammar symbol can never
// be produced/matched, i.e. its language is empty.
type EmptyLanguage struct {
	Subject string
}

func NewEmptyLanguage(subject string) *EmptyLanguage {
	return &EmptyLanguage{Subject: subject}
}

func (e *EmptyLanguage) Error() string {
	return fmt.Sprintf("gofish: %s has an empty language", e.Subject)
}

// UnreachableSymbol reports a grammar symbol with no path to it from the
// start symbol.
type UnreachableSymbol struct {
	Symbol string
}

func NewUnreachableSymbol(symbol string) *UnreachableSymbol {
	return &UnreachableSymbol{Symbol: symbol}
}

func (e *UnreachableSymbol) Error() string {
	return fmt.Sprintf("gofish: symbol %q is unreachable from the start symbol", e.Symbol)
}

// LexError reports that no registered pattern could extend a match at the
// given stream offset, and the raw byte the scan was stuck on.
type LexError struct {
	Offset int
	Byte   byte
}

func NewLexError(offset int, b byte) *LexError {
	return &LexError{Offset: offset, Byte: b}
}

func (e *LexError) Error() string {
	return fmt.Sprintf("gofish: lex error at offset %d: unexpected byte 0x%02x", e.Offset, e.Byte)
}

// EncodingError reports that an accepted lexeme's bytes are not valid UTF-8,
// a fatal contract violation per spec.md §7 (every pattern a caller registers
// is expected to only ever accept valid UTF-8 text).
type EncodingError struct {
	Offset int
}

func NewEncodingError(offset int) *EncodingError {
	return &EncodingError{Offset: offset}
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("gofish: lexeme at offset %d is not valid UTF-8", e.Offset)
}

// ParseError reports that the LR driver found no shift/reduce/accept action
// for the current state and lookahead token.
type ParseError struct {
	Token    string
	Offset   int
	Expected []string
}

func NewParseError(token string, offset int, expected []string) *ParseError {
	return &ParseError{Token: token, Offset: offset, Expected: expected}
}

func (e *ParseError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("gofish: parse error at offset %d: unexpected %s", e.Offset, e.Token)
	}
	return fmt.Sprintf("gofish: parse error at offset %d: unexpected %s (expected one of %v)", e.Offset, e.Token, e.Expected)
}
