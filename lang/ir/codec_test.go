package ir_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/shape"
)

// roundTripModule exercises every Op variant, a nested Branch, and FuncRefs
// carrying non-trivial Shapes (a function shape and a List[Float] generic),
// since a zero-valued Shape would trivially survive a buggy codec.
func roundTripModule() *ir.Module {
	addRef := ir.FuncRef{
		Package: "test",
		Module:  "main",
		Name:    "add",
		Shape:   shape.Function(shape.Base(shape.Float), shape.Base(shape.Float), shape.Base(shape.Float)),
	}
	listRef := ir.FuncRef{
		Package: "test",
		Module:  "main",
		Name:    "sum",
		Shape:   shape.Function(shape.Base(shape.Float), shape.ListOf(shape.Base(shape.Float))),
	}

	return &ir.Module{
		Package: "test",
		Module:  "main",
		Functions: []*ir.Function{
			{
				Ref: ir.FuncRef{Package: "test", Module: "main", Name: "main"},
				Locals: []ir.Local{
					{Name: "x", Shape: shape.Base(shape.Float)},
					{Name: "xs", Shape: shape.ListOf(shape.Base(shape.Float))},
				},
				Body: []ir.Op{
					ir.NoOp{},
					ir.Duplicate{},
					ir.Pop{},
					ir.Swap{},
					ir.LoadConstNull{},
					ir.LoadConstTrue{},
					ir.LoadConstFalse{},
					ir.LoadConstFloat{Value: 3.5},
					ir.LoadConstString{Value: "hi"},
					ir.LoadConstFunction{Ref: addRef},
					ir.LoadValue{Name: "x"},
					ir.StoreValue{Name: "x"},
					ir.FreeLocal{Name: "x"},
					ir.CallStatic{Ref: addRef},
					ir.CallDynamic{Argc: 2},
					ir.BuildClosure{Argc: 1, Ref: listRef},
					ir.BuildRecursiveFunction{},
					ir.Branch{
						Then: []ir.Op{ir.LoadConstTrue{}, ir.Return{}},
						Else: []ir.Op{
							ir.Branch{
								Then: []ir.Op{ir.LoadConstFalse{}},
								Else: []ir.Op{ir.Error{Message: "nested"}},
							},
							ir.Return{},
						},
					},
					ir.Debug{},
					ir.Error{Message: "boom"},
					ir.Return{},
				},
			},
		},
	}
}

func TestEncodeDecodeModuleRoundTrip(t *testing.T) {
	want := roundTripModule()

	var buf bytes.Buffer
	require.NoError(t, ir.Encode(&buf, want))

	got, err := ir.Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}
