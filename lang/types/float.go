package types

import "fmt"

// Float is the language's only numeric type (spec.md §3: "no separate
// integer type").
type Float float64

var _ Value = Float(0)

func (f Float) String() string { return fmt.Sprintf("%g", float64(f)) }
func (f Float) Type() string   { return "Float" }
