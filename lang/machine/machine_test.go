package machine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/corelib"
	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/machine"
	"github.com/DillonJettCallis/letlang/lang/shape"
	"github.com/DillonJettCallis/letlang/lang/types"
)

// nArgShape is a placeholder Function shape carrying exactly n Float
// arguments; only its arity matters here (bytecode.Module.Functions is
// keyed by name, not by FuncRef equality, so the payload shapes are never
// actually compared against corelib's real ones).
func nArgShape(n int) shape.Shape {
	args := make([]shape.Shape, n)
	for i := range args {
		args[i] = shape.Base(shape.Float)
	}
	return shape.Function(shape.Base(shape.Float), args...)
}

// TestListFold is spec.md §8 scenario 5, exercised directly against
// lang/corelib's List module: the surface grammar has no module-qualified
// call syntax, so this builds the IR that a hypothetical `Core.List.*`
// call site would lower to, by hand.
func TestListFold(t *testing.T) {
	listNewRef := ir.FuncRef{Package: "Core", Module: "List", Name: "new", Shape: nArgShape(0)}
	listAppendRef := ir.FuncRef{Package: "Core", Module: "List", Name: "append", Shape: nArgShape(2)}
	listFoldRef := ir.FuncRef{Package: "Core", Module: "List", Name: "fold", Shape: nArgShape(3)}
	addRef := ir.FuncRef{Package: "Test", Module: "main", Name: "add", Shape: nArgShape(2)}
	plusRef := corelib.Ref("+", shape.Base(shape.Float))

	mainFn := &ir.Function{
		Ref: ir.FuncRef{Package: "Test", Module: "main", Name: "main", Shape: nArgShape(0)},
		Body: []ir.Op{
			ir.CallStatic{Ref: listNewRef},
			ir.LoadConstFloat{Value: 1},
			ir.CallStatic{Ref: listAppendRef},
			ir.LoadConstFloat{Value: 2},
			ir.CallStatic{Ref: listAppendRef},
			ir.LoadConstFloat{Value: 3},
			ir.CallStatic{Ref: listAppendRef},
			ir.LoadConstFloat{Value: 4},
			ir.CallStatic{Ref: listAppendRef},
			ir.LoadConstFloat{Value: 0},
			ir.LoadConstFunction{Ref: addRef},
			ir.CallStatic{Ref: listFoldRef},
			ir.Return{},
		},
	}
	addFn := &ir.Function{
		Ref:    addRef,
		Locals: []ir.Local{{Name: "a"}, {Name: "b"}},
		Body: []ir.Op{
			ir.LoadValue{Name: "a"},
			ir.LoadValue{Name: "b"},
			ir.CallStatic{Ref: plusRef},
			ir.Return{},
		},
	}

	mod := &ir.Module{Package: "Test", Module: "main", Functions: []*ir.Function{mainFn, addFn}}
	bc := bytecode.EmitModule(mod)

	userPkg := &bytecode.Package{Name: "Test", Modules: map[string]*bytecode.Module{"main": bc}}
	m := machine.Link(userPkg, mainFn.Ref)

	result, err := m.RunMain()
	require.NoError(t, err)
	assert.Equal(t, types.Float(10), result)
}
