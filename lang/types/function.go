package types

import "github.com/DillonJettCallis/letlang/lang/ir"

// Handle is the function-handle sum type of spec.md §4.2: Plain, Closure,
// and Recursive all satisfy it. With computes, from a set of call-site
// argument values, the FuncRef to actually invoke and the fully prepared
// locals vector for that callee's frame.
type Handle interface {
	With(args []Value) (ir.FuncRef, []Value)
}

// Plain is a handle over a function with no captured state: calling it
// runs the referenced function directly on the call arguments.
type Plain struct {
	Ref ir.FuncRef
}

func (p Plain) With(args []Value) (ir.FuncRef, []Value) { return p.Ref, args }

// Closure pairs a function with the values it captured at the point it was
// built (BuildClosure); With prepends them to the call arguments, in
// capture-declaration order (spec.md §4.2, §4.4).
type Closure struct {
	Ref      ir.FuncRef
	Captured []Value
}

func (c Closure) With(args []Value) (ir.FuncRef, []Value) {
	locals := make([]Value, 0, len(c.Captured)+len(args))
	locals = append(locals, c.Captured...)
	locals = append(locals, args...)
	return c.Ref, locals
}

// Recursive wraps another handle so that a self-recursive function value
// can always see itself in the local slot right after any captured values
// (slot 0 when the inner handle captures nothing), without ever forming a literal
// reference cycle: each call constructs a fresh Recursive wrapping the same
// inner handle and prepends it, as a Function value, ahead of the call
// arguments (spec.md §4.2, §9's "cyclic self-reference" design note).
type Recursive struct {
	Inner Handle
}

func (r Recursive) With(args []Value) (ir.FuncRef, []Value) {
	self := &Function{Handle: Recursive{Inner: r.Inner}}
	locals := make([]Value, 0, len(args)+1)
	locals = append(locals, self)
	locals = append(locals, args...)
	return r.Inner.With(locals)
}

// Function is the Value variant wrapping a first-class function handle.
type Function struct {
	Handle Handle
}

var _ Value = (*Function)(nil)

func (f *Function) String() string { return "<function>" }
func (f *Function) Type() string   { return "Function" }
