// Package diag is the shared error-accumulation type used by the front-end
// pipeline stages (scanner, parser, checker). It is adapted from the
// teacher's lang/scanner package, which itself wraps the standard library's
// go/scanner.ErrorList: reusing that stdlib type keeps position-sortable
// error lists without inventing a bespoke one (spec.md §7's flat error
// taxonomy, one list per stage).
package diag

import (
	"fmt"
	goscanner "go/scanner"
	gotoken "go/token"

	"github.com/DillonJettCallis/letlang/lang/token"
)

type (
	// Error is a single diagnostic with a source position.
	Error = goscanner.Error
	// List accumulates diagnostics across a pipeline stage; Sort orders
	// them by position (RemoveMultiples also drops all but the first per
	// line), and Err returns nil if it is empty.
	List = goscanner.ErrorList
)

// Add records a new diagnostic against loc.
func Add(list *List, loc token.Location, format string, args ...interface{}) {
	list.Add(toGoPosition(loc), fmt.Sprintf(format, args...))
}

func toGoPosition(loc token.Location) gotoken.Position {
	return gotoken.Position{Filename: loc.File, Line: loc.Line, Column: loc.Column}
}

// Fatal is a single, non-recoverable error for a stage that reports one
// error instead of accumulating a list. It is a plain error with an
// optional Location for context. No pipeline stage constructs one: the
// bytecode emitter panics on malformed IR and the interpreter returns
// plain errors.
type Fatal struct {
	Loc token.Location
	Msg string
}

func NewFatal(loc token.Location, format string, args ...interface{}) *Fatal {
	return &Fatal{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

func (f *Fatal) Error() string {
	if f.Loc.Unknown() || f.Loc.File == "" {
		return f.Msg
	}
	return fmt.Sprintf("%s: %s", f.Loc, f.Msg)
}
