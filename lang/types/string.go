package types

import "strconv"

// String is the type of a text string value.
type String string

var _ Value = String("")

func (s String) String() string { return string(s) }
func (s String) Type() string   { return "String" }

// GoString renders the value with quotes, for fmt's %#v verb.
func (s String) GoString() string { return strconv.Quote(string(s)) }
