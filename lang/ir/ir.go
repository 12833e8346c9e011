// Package ir defines the intermediate representation lowered from a typed
// ast.Module (spec.md §4.4): a flat, per-function list of stack-machine
// operations over named locals, with branches kept as nested sub-lists so
// the optimizer (lang/optimize) can rewrite them uniformly before the
// bytecode emitter (lang/bytecode) flattens them to relative jumps.
package ir

import "github.com/DillonJettCallis/letlang/lang/shape"

// FuncRef is a module-qualified function identity. Equality and hashing
// (see Key) consider only Package/Module/Name; Shape is metadata carried
// for the emitter's shape-interning table.
type FuncRef struct {
	Package string
	Module  string
	Name    string
	Shape   shape.Shape
}

// FuncRefKey is the hashable identity of a FuncRef, ignoring Shape.
type FuncRefKey struct {
	Package string
	Module  string
	Name    string
}

func (r FuncRef) Key() FuncRefKey {
	return FuncRefKey{Package: r.Package, Module: r.Module, Name: r.Name}
}

// Op is one stack-machine operation. Concrete types below implement it; a
// type switch is the intended way to inspect one (mirrors lang/ast.Node).
type Op interface {
	isOp()
}

type opBase struct{}

func (opBase) isOp() {}

type (
	NoOp      struct{ opBase }
	Duplicate struct{ opBase }
	Pop       struct{ opBase }
	Swap      struct{ opBase }

	LoadConstNull  struct{ opBase }
	LoadConstTrue  struct{ opBase }
	LoadConstFalse struct{ opBase }

	LoadConstFloat struct {
		opBase
		Value float64
	}
	LoadConstString struct {
		opBase
		Value string
	}
	LoadConstFunction struct {
		opBase
		Ref FuncRef
	}

	LoadValue struct {
		opBase
		Name string
	}
	StoreValue struct {
		opBase
		Name string
	}
	FreeLocal struct {
		opBase
		Name string
	}

	CallStatic struct {
		opBase
		Ref FuncRef
	}
	CallDynamic struct {
		opBase
		Argc int
	}
	BuildClosure struct {
		opBase
		Argc int
		Ref  FuncRef
	}
	BuildRecursiveFunction struct{ opBase }

	Return struct{ opBase }

	// Branch is kept as a nested tree (not a flat jump) until the emitter
	// flattens it (spec.md §4.6, §9's "Branch as nested tree" design note).
	Branch struct {
		opBase
		Then []Op
		Else []Op
	}

	Debug struct{ opBase }
	Error struct {
		opBase
		Message string
	}
)

// Local is a name/shape pair identifying one of a function's initial
// locals — a captured variable, the function's own self-slot (recursive
// functions only), or a declared argument, in that order (spec.md §4.4).
type Local struct {
	Name  string
	Shape shape.Shape
}

// Function is one function's lowered body: its identity, the ordered set
// of locals its frame starts with, and the flat (but internally nested at
// Branch nodes) instruction list.
type Function struct {
	Ref    FuncRef
	Locals []Local
	Body   []Op
}

// Module is the lowering output for one ast.Module: the module's own
// top-level functions, plus a sibling Function for every local statement
// function declaration and lambda discovered while lowering their bodies.
type Module struct {
	Package   string
	Module    string
	Functions []*Function
}
