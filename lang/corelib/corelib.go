// Package corelib builds the Core and List modules of the Core package: the
// built-in arithmetic, comparison, and list primitives every program is
// linked against (spec.md §4.7, §3's Core/List glossary entries). Every
// native here is grounded on the same arity/shape-checked, descriptive-error
// idiom the checker and emitter already use elsewhere in this module.
package corelib

import (
	"fmt"

	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/shape"
	"github.com/DillonJettCallis/letlang/lang/types"
)

const packageName = "Core"

func ref(module, name string, shp shape.Shape) ir.FuncRef {
	return ir.FuncRef{Package: packageName, Module: module, Name: name, Shape: shp}
}

func native(module, name string, shp shape.Shape, impl bytecode.NativeImpl) *bytecode.NativeFunction {
	return &bytecode.NativeFunction{FuncRef: ref(module, name, shp), Impl: impl}
}

func floatArg(args []types.Value, i int, fn string) (types.Float, error) {
	f, ok := args[i].(types.Float)
	if !ok {
		return 0, fmt.Errorf("%s: argument %d: expected Float, got %s", fn, i, args[i].Type())
	}
	return f, nil
}

func arity(args []types.Value, n int, fn string) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", fn, n, len(args))
	}
	return nil
}

func binFloatOp(name string, op func(a, b float64) float64) *bytecode.NativeFunction {
	shp := shape.Function(shape.Base(shape.Float), shape.Base(shape.Float), shape.Base(shape.Float))
	return native("Core", name, shp, func(args []types.Value) (types.Value, error) {
		if err := arity(args, 2, name); err != nil {
			return nil, err
		}
		a, err := floatArg(args, 0, name)
		if err != nil {
			return nil, err
		}
		b, err := floatArg(args, 1, name)
		if err != nil {
			return nil, err
		}
		return types.Float(op(float64(a), float64(b))), nil
	})
}

func cmpFloatOp(name string, op func(a, b float64) bool) *bytecode.NativeFunction {
	shp := shape.Function(shape.Base(shape.Boolean), shape.Base(shape.Float), shape.Base(shape.Float))
	return native("Core", name, shp, func(args []types.Value) (types.Value, error) {
		if err := arity(args, 2, name); err != nil {
			return nil, err
		}
		a, err := floatArg(args, 0, name)
		if err != nil {
			return nil, err
		}
		b, err := floatArg(args, 1, name)
		if err != nil {
			return nil, err
		}
		return types.Bool(op(float64(a), float64(b))), nil
	})
}

// Ref returns the FuncRef for one of the Core module's operator names: a
// two-argument operator, or the one-argument "neg". lang/ir builds the same
// FuncRefs with its own coreRef helper and does not call Ref.
func Ref(name string, resultShape shape.Shape) ir.FuncRef {
	args := []shape.Shape{shape.Base(shape.Float)}
	if name != "neg" {
		args = append(args, shape.Base(shape.Float))
	}
	return ref("Core", name, shape.Function(resultShape, args...))
}

// CoreModule builds the Core module: arithmetic, comparison, and unary
// negation over Float.
func CoreModule() *bytecode.Module {
	neg := native("Core", "neg", shape.Function(shape.Base(shape.Float), shape.Base(shape.Float)),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 1, "neg"); err != nil {
				return nil, err
			}
			a, err := floatArg(args, 0, "neg")
			if err != nil {
				return nil, err
			}
			return -a, nil
		})

	fns := map[string]bytecode.RunFunction{
		"+":   binFloatOp("+", func(a, b float64) float64 { return a + b }),
		"-":   binFloatOp("-", func(a, b float64) float64 { return a - b }),
		"*":   binFloatOp("*", func(a, b float64) float64 { return a * b }),
		"/":   binFloatOp("/", func(a, b float64) float64 { return a / b }),
		"==":  cmpFloatOp("==", func(a, b float64) bool { return a == b }),
		"!=":  cmpFloatOp("!=", func(a, b float64) bool { return a != b }),
		"<":   cmpFloatOp("<", func(a, b float64) bool { return a < b }),
		">":   cmpFloatOp(">", func(a, b float64) bool { return a > b }),
		"<=":  cmpFloatOp("<=", func(a, b float64) bool { return a <= b }),
		">=":  cmpFloatOp(">=", func(a, b float64) bool { return a >= b }),
		"neg": neg,
	}

	return &bytecode.Module{
		Package:    packageName,
		ModuleName: "Core",
		Functions:  fns,
	}
}
