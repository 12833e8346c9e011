// Package token provides the source location primitives shared by every
// stage of the pipeline: the lexer stamps them on tokens, the parser copies
// them onto AST nodes, and the checker reports its diagnostics against them.
// The IR, the optimizer and the bytecode carry no locations, so runtime
// errors are not tied to a source position.
package token

import "fmt"

// Location is the (file, line, column) triple carried by every AST
// expression, per spec.md §3. Line and column are both 1-based; a zero value
// for either means "unknown" (used for synthetic nodes introduced by the
// compiler itself, e.g. an implicit Return).
type Location struct {
	File   string
	Line   int
	Column int
}

// Unknown reports whether either the line or column is the zero "unknown"
// value.
func (l Location) Unknown() bool {
	return l.Line == 0 || l.Column == 0
}

func (l Location) String() string {
	if l.Unknown() {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Pos is a compact line/column pair used internally by the lexer while
// scanning a single file; it is converted to a Location (which also carries
// the file name) as soon as a token is handed to the parser.
type Pos struct {
	Line, Column int
}

// InFile attaches a file name to a Pos, producing a full Location.
func (p Pos) InFile(file string) Location {
	return Location{File: file, Line: p.Line, Column: p.Column}
}
