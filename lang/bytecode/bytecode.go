// Package bytecode defines the final executable form produced from an
// optimized lang/ir.Module (spec.md §4.6, §3 "Bytecode"): flat instruction
// sequences over numbered local slots, with constants, function references,
// and shapes deduplicated into per-module interning tables.
package bytecode

import (
	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/shape"
	"github.com/DillonJettCallis/letlang/lang/token"
	"github.com/DillonJettCallis/letlang/lang/types"
)

// Instruction is one flat bytecode operation. Concrete types below
// implement it; LoadValue/StoreValue/CallStatic/etc. operands are small
// integers, never names — names exist only in lang/ir.
type Instruction interface {
	isInstruction()
}

type instrBase struct{}

func (instrBase) isInstruction() {}

type (
	NoOp      struct{ instrBase }
	Duplicate struct{ instrBase }
	Pop       struct{ instrBase }
	Swap      struct{ instrBase }

	LoadConstNull  struct{ instrBase }
	LoadConstTrue  struct{ instrBase }
	LoadConstFalse struct{ instrBase }
	LoadConstFloat struct {
		instrBase
		Value float64
	}
	LoadConstString struct {
		instrBase
		ID uint32
	}
	LoadConstFunction struct {
		instrBase
		ID uint32
	}

	LoadValue struct {
		instrBase
		Local uint16
	}
	StoreValue struct {
		instrBase
		Local uint16
	}

	CallStatic struct {
		instrBase
		ID uint32
	}
	CallDynamic struct {
		instrBase
		Argc uint16
	}
	BuildClosure struct {
		instrBase
		Argc uint16
		ID   uint32
	}
	BuildRecursiveFunction struct{ instrBase }

	Return struct{ instrBase }

	// Branch pops the top of stack; a true value falls through to the next
	// instruction, a false value skips RelOffset instructions (relative to
	// the instruction immediately after the Branch — i.e. applied after the
	// implicit pc += 1; spec.md §9 Open Question (b)).
	Branch struct {
		instrBase
		RelOffset int32
	}
	// Jump unconditionally advances pc by RelOffset, under the same
	// post-increment convention as Branch.
	Jump struct {
		instrBase
		RelOffset int32
	}

	Debug struct{ instrBase }
	Error struct {
		instrBase
		Message string
	}
)

// RunFunction is either a compiled function body or a native Go
// implementation, keyed by name inside a Module.
type RunFunction interface {
	Ref() ir.FuncRef
	isRunFunction()
}

// BitFunction is one compiled function: its numeric-slot instruction
// stream plus the locals count its frame must be sized to.
type BitFunction struct {
	FuncRef   ir.FuncRef
	MaxLocals uint16
	Body      []Instruction
	// Source is an optional sidecar of source locations for runtime
	// diagnostics (spec.md §4.8, §7), parallel to Body when present.
	// EmitModule does not populate it, so emitted functions carry a nil
	// Source.
	Source []token.Location
}

func (f *BitFunction) Ref() ir.FuncRef { return f.FuncRef }
func (f *BitFunction) isRunFunction()  {}

// NativeImpl is a built-in function body (lang/corelib): given the call's
// argument vector, it returns a result or a descriptive error. Arity and
// shape checking is the implementation's own responsibility, the same as
// any BitFunction's body would enforce via the checker ahead of time.
type NativeImpl func(args []types.Value) (types.Value, error)

// NativeFunction wraps a Go implementation of a Core/List primitive.
type NativeFunction struct {
	FuncRef ir.FuncRef
	Impl    NativeImpl
}

func (f *NativeFunction) Ref() ir.FuncRef { return f.FuncRef }
func (f *NativeFunction) isRunFunction()  {}

// Module is a single compiled module: its interning tables and its named
// functions.
type Module struct {
	Package         string
	ModuleName      string
	StringConstants []string
	FunctionRefs    []ir.FuncRef
	ShapeRefs       []shape.Shape
	Functions       map[string]RunFunction
}

// Package is every module belonging to one package name.
type Package struct {
	Name    string
	Modules map[string]*Module
}

// Application is the fully linked program the interpreter runs.
type Application struct {
	Packages map[string]*Package
	Main     ir.FuncRef
}
