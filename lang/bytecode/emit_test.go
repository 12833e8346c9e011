package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/ir"
)

func TestEmitModuleInternsSharedStringOnce(t *testing.T) {
	mod := &ir.Module{
		Package: "test", Module: "main",
		Functions: []*ir.Function{
			{
				Ref: ir.FuncRef{Package: "test", Module: "main", Name: "a"},
				Body: []ir.Op{
					ir.LoadConstString{Value: "hi"},
					ir.Return{},
				},
			},
			{
				Ref: ir.FuncRef{Package: "test", Module: "main", Name: "b"},
				Body: []ir.Op{
					ir.LoadConstString{Value: "hi"},
					ir.Return{},
				},
			},
		},
	}

	bc := bytecode.EmitModule(mod)
	require.Len(t, bc.StringConstants, 1, "the same string constant used by two functions must intern to one entry")
	assert.Equal(t, "hi", bc.StringConstants[0])

	a := bc.Functions["a"].(*bytecode.BitFunction)
	b := bc.Functions["b"].(*bytecode.BitFunction)
	idA := a.Body[0].(bytecode.LoadConstString).ID
	idB := b.Body[0].(bytecode.LoadConstString).ID
	assert.Equal(t, idA, idB)
}

func TestEmitModuleAllocatesLocalSlots(t *testing.T) {
	mod := &ir.Module{
		Package: "test", Module: "main",
		Functions: []*ir.Function{
			{
				Ref:    ir.FuncRef{Package: "test", Module: "main", Name: "f"},
				Locals: []ir.Local{{Name: "x"}, {Name: "y"}},
				Body: []ir.Op{
					ir.LoadValue{Name: "x"},
					ir.LoadValue{Name: "y"},
					ir.CallStatic{Ref: ir.FuncRef{Package: "Core", Module: "Core", Name: "+"}},
					ir.Return{},
				},
			},
		},
	}

	bc := bytecode.EmitModule(mod)
	f := bc.Functions["f"].(*bytecode.BitFunction)
	assert.Equal(t, uint16(2), f.MaxLocals)

	loadX := f.Body[0].(bytecode.LoadValue)
	loadY := f.Body[1].(bytecode.LoadValue)
	assert.NotEqual(t, loadX.Local, loadY.Local)
}

func TestEmitModuleReusesFreedSlot(t *testing.T) {
	// x is freed before y is assigned, so y should reuse x's physical slot:
	// max_locals stays 1 even though two names were bound across the
	// function's lifetime (spec.md §9's "named locals -> numbered slots").
	mod := &ir.Module{
		Package: "test", Module: "main",
		Functions: []*ir.Function{
			{
				Ref:    ir.FuncRef{Package: "test", Module: "main", Name: "f"},
				Locals: []ir.Local{},
				Body: []ir.Op{
					ir.LoadConstFloat{Value: 1},
					ir.StoreValue{Name: "x"},
					ir.LoadValue{Name: "x"},
					ir.FreeLocal{Name: "x"},
					ir.LoadConstFloat{Value: 2},
					ir.StoreValue{Name: "y"},
					ir.LoadValue{Name: "y"},
					ir.Return{},
				},
			},
		},
	}

	bc := bytecode.EmitModule(mod)
	f := bc.Functions["f"].(*bytecode.BitFunction)
	assert.Equal(t, uint16(1), f.MaxLocals)
}

func TestEmitBranchFlattensToRelativeJumps(t *testing.T) {
	mod := &ir.Module{
		Package: "test", Module: "main",
		Functions: []*ir.Function{
			{
				Ref: ir.FuncRef{Package: "test", Module: "main", Name: "f"},
				Body: []ir.Op{
					ir.LoadConstTrue{},
					ir.Branch{
						Then: []ir.Op{ir.LoadConstFloat{Value: 1}, ir.Return{}},
						Else: []ir.Op{ir.LoadConstFloat{Value: 2}, ir.Return{}},
					},
				},
			},
		},
	}

	bc := bytecode.EmitModule(mod)
	f := bc.Functions["f"].(*bytecode.BitFunction)

	// LoadConstTrue, Branch, LoadConstFloat(1), Return, LoadConstFloat(2), Return
	require.Len(t, f.Body, 6)
	br, ok := f.Body[1].(bytecode.Branch)
	require.True(t, ok)
	// then-arm already ends in Return, so no extra Jump is appended: the
	// branch should skip exactly the two then-arm instructions.
	assert.Equal(t, int32(2), br.RelOffset)
}
