package types

import (
	"strings"

	"github.com/DillonJettCallis/letlang/lang/shape"
)

// List is the language's only collection type: an immutable, reference-
// counted (in this implementation, GC-shared) vector of Values all of one
// shape (spec.md §3's ListValue). Append never mutates the receiver: it
// returns a fresh List whose element slice is a full copy of the original's
// plus the new value, so no backing array is shared between the two
// (spec.md §8's value-semantics property).
type List struct {
	Elems     []Value
	ElemShape shape.Shape
}

var _ Value = (*List)(nil)

// NewList returns an empty list of the given element shape.
func NewList(elemShape shape.Shape) *List {
	return &List{ElemShape: elemShape}
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range l.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (l *List) Type() string { return "List" }
func (l *List) Len() int     { return len(l.Elems) }

// Append returns a new List with v appended; l is left untouched.
func (l *List) Append(v Value) *List {
	next := make([]Value, len(l.Elems)+1)
	copy(next, l.Elems)
	next[len(l.Elems)] = v
	return &List{Elems: next, ElemShape: l.ElemShape}
}
