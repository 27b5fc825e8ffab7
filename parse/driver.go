package parse

import (
	"github.com/dekarrin/gofish/gofisherr"
	"github.com/dekarrin/gofish/grammar"
	"github.com/dekarrin/gofish/handle"
)

// Token is the lookahead information the driver consults ACTION/GOTO with:
// either a real terminal or end-of-input.
type Token struct {
	Terminal   handle.Handle[grammar.Terminal]
	EndOfInput bool
	// Text and Offset are carried only for error reporting.
	Text   string
	Offset int
}

// NextTokenFunc supplies the driver's next lookahead, paired with the
// satellite value shifts should carry (the lexeme payload, spec.md §4.H).
type NextTokenFunc[S any] func() (Token, S, error)

// ReduceFunc applies a production's reduction handler, keyed by the
// reducing production's HandlerId tag (spec.md §3), in the translator's own
// registered dispatch table; the driver never looks handlers up itself
// (spec.md §9 "Handler dispatch" — owned by the translator, not the
// driver).
type ReduceFunc[S any] func(handlerID int, children []S) (S, error)

// stackEntry is the driver's `(state, value)` pair (spec.md §4.H).
type stackEntry[S any] struct {
	state int
	value S
}

// Run drives table with tokens from next and reductions from reduce,
// implementing the shift/reduce/accept/error loop of spec.md §4.H exactly.
// It returns the single satellite remaining on Accept.
func Run[S any](table *Table, next NextTokenFunc[S], reduce ReduceFunc[S]) (S, error) {
	var zero S
	stack := []stackEntry[S]{{state: table.Start()}}

	tok, sat, err := next()
	if err != nil {
		return zero, err
	}

	for {
		top := stack[len(stack)-1]

		var action Action
		if tok.EndOfInput {
			action = table.ActionEOI(top.state)
		} else {
			action = table.Action(top.state, tok.Terminal)
		}

		switch action.Type {
		case ActionShift:
			stack = append(stack, stackEntry[S]{state: action.State, value: sat})
			tok, sat, err = next()
			if err != nil {
				return zero, err
			}

		case ActionReduce:
			prod := table.g.Production(action.Production)
			n := len(prod.RHS)
			children := make([]S, n)
			for i := n - 1; i >= 0; i-- {
				children[i] = stack[len(stack)-1].value
				stack = stack[:len(stack)-1]
			}
			result, err := reduce(int(prod.Tag), children)
			if err != nil {
				return zero, err
			}
			t := stack[len(stack)-1].state
			nextState, ok := table.Goto(t, prod.LHS)
			if !ok {
				return zero, gofisherr.NewParseError("<goto>", tok.Offset, nil)
			}
			stack = append(stack, stackEntry[S]{state: nextState, value: result})

		case ActionAccept:
			return stack[len(stack)-1].value, nil

		default: // ActionError
			expected := expectedTerminals(table, top.state)
			tokStr := tok.Text
			if tok.EndOfInput {
				tokStr = "end of input"
			}
			return zero, gofisherr.NewParseError(tokStr, tok.Offset, expected)
		}
	}
}

// expectedTerminals lists the display names of every terminal with a
// non-error ACTION from state, for building a helpful parse error message.
func expectedTerminals(table *Table, state int) []string {
	var out []string
	for _, term := range table.g.Terminals() {
		if table.Action(state, term).Type != ActionError {
			out = append(out, table.g.TerminalName(term))
		}
	}
	return out
}
