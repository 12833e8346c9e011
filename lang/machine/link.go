package machine

import (
	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/corelib"
	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/types"
)

// Link assembles a runnable Application from the compiled user package and
// the built-in Core package (spec.md §4.7), wiring List.map/List.fold's
// higher-order calls back into this Machine's own Execute so corelib never
// needs to import lang/machine itself.
func Link(userPkg *bytecode.Package, main ir.FuncRef) *Machine {
	m := &Machine{}

	callBack := func(fn *types.Function, args []types.Value) (types.Value, error) {
		ref, locals := fn.Handle.With(args)
		return m.Execute(ref, locals)
	}

	corePkg := &bytecode.Package{
		Name: "Core",
		Modules: map[string]*bytecode.Module{
			"Core": corelib.CoreModule(),
			"List": corelib.ListModule(callBack),
			"Map":  corelib.MapModule(),
		},
	}

	m.App = &bytecode.Application{
		Packages: map[string]*bytecode.Package{
			"Core":       corePkg,
			userPkg.Name: userPkg,
		},
		Main: main,
	}
	return m
}
