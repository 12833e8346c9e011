package optimize_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/optimize"
)

func fn(body []ir.Op) *ir.Function {
	return &ir.Function{Ref: ir.FuncRef{Package: "test", Module: "main", Name: "f"}, Body: body}
}

func TestLiftReturnPushesIntoBothArms(t *testing.T) {
	body := []ir.Op{
		ir.Branch{
			Then: []ir.Op{ir.LoadConstFloat{Value: 1}},
			Else: []ir.Op{ir.LoadConstFloat{Value: 2}},
		},
		ir.Return{},
	}
	out := optimize.Function(fn(body)).Body
	require.Len(t, out, 1)
	br, ok := out[0].(ir.Branch)
	require.True(t, ok)
	assert.Equal(t, ir.Return{}, br.Then[len(br.Then)-1])
	assert.Equal(t, ir.Return{}, br.Else[len(br.Else)-1])
}

func TestFreeLocalInsertedAfterLastUse(t *testing.T) {
	// x is read twice, so the dead-round-trip fold below can't eliminate it
	// outright; the FreeLocal marker must land after the *second* (last) use.
	body := []ir.Op{
		ir.LoadConstFloat{Value: 1},
		ir.StoreValue{Name: "x"},
		ir.LoadValue{Name: "x"},
		ir.LoadValue{Name: "x"},
		ir.CallStatic{Ref: ir.FuncRef{Package: "Core", Module: "Core", Name: "+"}},
		ir.Return{},
	}
	out := optimize.Function(fn(body)).Body

	var freedAt, lastLoadAt = -1, -1
	for i, op := range out {
		switch o := op.(type) {
		case ir.FreeLocal:
			if o.Name == "x" {
				freedAt = i
			}
		case ir.LoadValue:
			if o.Name == "x" {
				lastLoadAt = i
			}
		}
	}
	require.NotEqual(t, -1, freedAt, "expected a FreeLocal(x) marker, got %#v", out)
	require.NotEqual(t, -1, lastLoadAt)
	assert.Greater(t, freedAt, lastLoadAt, "FreeLocal must come after the last use, got %#v", out)
}

func TestLoadStoreFoldEliminatesDeadRoundTrip(t *testing.T) {
	body := []ir.Op{
		ir.LoadConstFloat{Value: 1},
		ir.StoreValue{Name: "x"},
		ir.LoadValue{Name: "x"},
		ir.Return{},
	}
	out := optimize.Function(fn(body)).Body
	for _, op := range out {
		if sv, ok := op.(ir.StoreValue); ok {
			t.Fatalf("StoreValue %s should have been folded away entirely, got %#v", sv.Name, out)
		}
	}
}

func TestLoadStoreFoldDuplicatesWhenFollowedByMoreCode(t *testing.T) {
	body := []ir.Op{
		ir.LoadConstFloat{Value: 1},
		ir.StoreValue{Name: "x"},
		ir.LoadValue{Name: "x"},
		ir.LoadValue{Name: "x"},
		ir.CallStatic{Ref: ir.FuncRef{Package: "Core", Module: "Core", Name: "+"}},
		ir.Return{},
	}
	out := optimize.Function(fn(body)).Body
	require.GreaterOrEqual(t, len(out), 2)
	_, isDup := out[1].(ir.Duplicate)
	assert.True(t, isDup, "expected a Duplicate where the dead store/load round-trip was folded, got %#v", out)
}

// TestOptimizerIsIdempotent is spec.md §8's round-trip property: applying
// the optimizer twice to the same IR function yields the same result as
// applying it once.
func TestOptimizerIsIdempotent(t *testing.T) {
	body := []ir.Op{
		ir.LoadConstFloat{Value: 1},
		ir.StoreValue{Name: "x"},
		ir.LoadValue{Name: "x"},
		ir.Branch{
			Then: []ir.Op{ir.LoadValue{Name: "x"}, ir.Return{}},
			Else: []ir.Op{ir.LoadConstFloat{Value: 0}, ir.Return{}},
		},
	}
	once := optimize.Function(fn(body))
	twice := optimize.Function(once)
	assert.True(t, reflect.DeepEqual(once.Body, twice.Body), "optimizer must be idempotent:\nonce:  %#v\ntwice: %#v", once.Body, twice.Body)
}
