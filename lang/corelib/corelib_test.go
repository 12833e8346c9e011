package corelib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/corelib"
	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/types"
)

// dummyFn is a placeholder Function value for native implementations that
// only forward it through an injected Caller, never inspect it directly.
var dummyFn = &types.Function{Handle: types.Plain{Ref: ir.FuncRef{Package: "test", Module: "main", Name: "f"}}}

func native(t *testing.T, mod *bytecode.Module, name string) *bytecode.NativeFunction {
	t.Helper()
	fn, ok := mod.Functions[name]
	require.True(t, ok, "no native function named %q", name)
	nf, ok := fn.(*bytecode.NativeFunction)
	require.True(t, ok)
	return nf
}

func TestCoreArithmeticAndComparison(t *testing.T) {
	core := corelib.CoreModule()

	cases := []struct {
		name string
		a, b float64
		want types.Value
	}{
		{"+", 2, 3, types.Float(5)},
		{"-", 5, 2, types.Float(3)},
		{"*", 4, 5, types.Float(20)},
		{"/", 10, 4, types.Float(2.5)},
		{"==", 3, 3, types.Bool(true)},
		{"!=", 3, 4, types.Bool(true)},
		{"<", 1, 2, types.Bool(true)},
		{">", 2, 1, types.Bool(true)},
		{"<=", 2, 2, types.Bool(true)},
		{">=", 2, 3, types.Bool(false)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fn := native(t, core, c.name)
			got, err := fn.Impl([]types.Value{types.Float(c.a), types.Float(c.b)})
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestCoreNegUnary(t *testing.T) {
	core := corelib.CoreModule()
	neg := native(t, core, "neg")

	got, err := neg.Impl([]types.Value{types.Float(7)})
	require.NoError(t, err)
	assert.Equal(t, types.Float(-7), got)
}

func TestCoreArityMismatchErrors(t *testing.T) {
	core := corelib.CoreModule()
	plus := native(t, core, "+")

	_, err := plus.Impl([]types.Value{types.Float(1)})
	assert.Error(t, err)
}

func TestListBasics(t *testing.T) {
	calls := 0
	callBack := func(fn *types.Function, args []types.Value) (types.Value, error) {
		calls++
		return args[0].(types.Float) + args[1].(types.Float), nil
	}
	list := corelib.ListModule(callBack)

	newList, err := native(t, list, "new").Impl(nil)
	require.NoError(t, err)

	appended := newList
	for _, v := range []float64{1, 2, 3, 4} {
		appended, err = native(t, list, "append").Impl([]types.Value{appended, types.Float(v)})
		require.NoError(t, err)
	}

	length, err := native(t, list, "length").Impl([]types.Value{appended})
	require.NoError(t, err)
	assert.Equal(t, types.Float(4), length)

	elem, err := native(t, list, "get").Impl([]types.Value{appended, types.Float(2)})
	require.NoError(t, err)
	assert.Equal(t, types.Float(3), elem)

	_, err = native(t, list, "get").Impl([]types.Value{appended, types.Float(99)})
	assert.Error(t, err, "out-of-range index must be rejected")
	assert.Equal(t, 0, calls, "map/fold's callback must never be invoked by append/length/get")
}

func TestListFoldUsesCallBackInOrder(t *testing.T) {
	var seenAcc []types.Value
	callBack := func(fn *types.Function, args []types.Value) (types.Value, error) {
		seenAcc = append(seenAcc, args[0])
		return args[0].(types.Float) + args[1].(types.Float), nil
	}
	list := corelib.ListModule(callBack)

	appended, _ := native(t, list, "new").Impl(nil)
	for _, v := range []float64{1, 2, 3, 4} {
		appended, _ = native(t, list, "append").Impl([]types.Value{appended, types.Float(v)})
	}

	result, err := native(t, list, "fold").Impl([]types.Value{appended, types.Float(0), dummyFn})
	require.NoError(t, err)
	assert.Equal(t, types.Float(10), result)
	assert.Len(t, seenAcc, 4, "fold must invoke the callback once per element")
	assert.Equal(t, []types.Value{types.Float(0), types.Float(1), types.Float(3), types.Float(6)}, seenAcc,
		"fold must thread the accumulator through the elements in list order")
}
