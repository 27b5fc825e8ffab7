/*
Gofishdemo builds and runs the arithmetic grammar from spec.md property 7 (E
-> E + E | E * E | NUMBER, "+" left-assoc low, "*" left-assoc high) and
evaluates an expression given on the command line.

It is not a shipped CLI for the gofish library (the library's wire/script
surface is an explicit non-goal) — it exists to exercise build.Builder
end-to-end and show any conflict diagnostics the table construction emits.

Usage:

	gofishdemo [flags]

The flags are:

	-e, --expr EXPRESSION
	    The arithmetic expression to evaluate. Defaults to "1+2*3+4".

	-v, --verbose
	    Log build diagnostics (conflicts resolved, table size) in addition to
	    the result.
*/
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/projectdiscovery/gologger"
	"github.com/spf13/pflag"

	"github.com/dekarrin/gofish/build"
	"github.com/dekarrin/gofish/grammar"
	"github.com/dekarrin/gofish/handle"
	"github.com/dekarrin/gofish/lex"
	"github.com/dekarrin/gofish/regexast"
	"github.com/dekarrin/gofish/translate"
)

const (
	ExitSuccess = iota
	ExitBuildError
	ExitEvalError
)

var (
	expr    *string = pflag.StringP("expr", "e", "1+2*3+4", "Arithmetic expression to evaluate")
	verbose *bool   = pflag.BoolP("verbose", "v", false, "Log build diagnostics in addition to the result")
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokPlus
	tokTimes
	tokWS
)

func main() {
	pflag.Parse()

	tr, diag, err := buildArithmeticTranslator()
	if err != nil {
		gologger.Fatal().Msgf("building grammar: %v", err)
		os.Exit(ExitBuildError)
	}
	if *verbose {
		gologger.Info().Msgf("LALR(1) table has %d states", diag.States)
		for _, c := range diag.Conflicts {
			gologger.Warning().Msg(c)
		}
	}

	skip := func(tok tokenKind) bool { return tok == tokWS }
	result, err := tr.Translate(lex.NewBytesReader([]byte(*expr)), skip)
	if err != nil {
		gologger.Fatal().Msgf("evaluating %q: %v", *expr, err)
		os.Exit(ExitEvalError)
	}

	fmt.Printf("%s = %d\n", *expr, result)
	os.Exit(ExitSuccess)
}

func buildArithmeticTranslator() (*translate.Translator[tokenKind, int], build.Diagnostics, error) {
	leaf := func(tok tokenKind, text string) (int, error) {
		if tok != tokNumber {
			return 0, nil
		}
		return strconv.Atoi(text)
	}
	b := build.NewBuilder[tokenKind, int](leaf)

	number := b.NewTerminal("NUMBER")
	plus := b.NewTerminal("+")
	times := b.NewTerminal("*")
	ws := b.NewTerminal("WS")

	b.RegisterLexeme(regexast.Plus{Inner: regexast.CharRange('0', '9')}, tokNumber, number)
	b.RegisterLexeme(regexast.Str("+"), tokPlus, plus)
	b.RegisterLexeme(regexast.Str("*"), tokTimes, times)
	b.RegisterLexeme(regexast.Plus{Inner: regexast.Literal{Symbol: ' '}}, tokWS, ws)

	lowBinding := b.RegisterBinding([]handle.Handle[grammar.Terminal]{plus}, grammar.Left)
	highBinding := b.RegisterBinding([]handle.Handle[grammar.Terminal]{times}, grammar.Left)

	e := b.NewNonterminal("E")
	b.SetStart(e)

	b.RegisterRule(e, []grammar.GrammarSymbol{grammar.NT(e), grammar.Term(plus), grammar.NT(e)}, &lowBinding,
		func(children []int) (int, error) { return children[0] + children[2], nil })
	b.RegisterRule(e, []grammar.GrammarSymbol{grammar.NT(e), grammar.Term(times), grammar.NT(e)}, &highBinding,
		func(children []int) (int, error) { return children[0] * children[2], nil })
	b.RegisterRule(e, []grammar.GrammarSymbol{grammar.Term(number)}, nil,
		func(children []int) (int, error) { return children[0], nil })

	return b.Build()
}
