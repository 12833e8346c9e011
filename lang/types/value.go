// Package types is the runtime value representation shared by the
// bytecode emitter's native-function signatures, the interpreter, and the
// core library (spec.md §3 "Runtime values", §4.2 "Value & handle model").
// It imports only lang/ir and lang/shape, so lang/bytecode can describe a
// NativeFunction's signature in terms of types.Value without ever importing
// lang/machine, which depends on this package instead.
//
// The teacher's own lang/types package was an abandoned, non-compiling
// sketch (it imported a module path — nenuphar-wip — absent from go.mod and
// left TODOs in place of bodies); this package replaces it wholesale,
// grounded instead on the small, working Value variants of lang/machine
// (float.go, nil.go, tuple.go): one file per variant, String()/Type() as
// the only required methods, no Freeze/Ordered machinery this language has
// no use for.
package types

// Value is implemented by every runtime value: Null, Bool, String, Float,
// *Function, and *List (spec.md §3).
type Value interface {
	String() string
	Type() string
}
