package corelib

import (
	"fmt"

	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/shape"
	"github.com/DillonJettCallis/letlang/lang/types"
)

func listArg(args []types.Value, i int, fn string) (*types.List, error) {
	l, ok := args[i].(*types.List)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d: expected List, got %s", fn, i, args[i].Type())
	}
	return l, nil
}

func funcArg(args []types.Value, i int, fn string) (*types.Function, error) {
	f, ok := args[i].(*types.Function)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d: expected Function, got %s", fn, i, args[i].Type())
	}
	return f, nil
}

// Caller is the indirection corelib needs to invoke a Function value's
// handle back into the running machine; lang/machine supplies the concrete
// implementation when it installs this module, avoiding a corelib->machine
// import cycle.
type Caller func(fn *types.Function, args []types.Value) (types.Value, error)

// ListModule builds the List module: construction, append, length,
// indexing, map, and fold. Higher-order members (map, fold) need a way to
// invoke a Function value, supplied by the call parameter rather than an
// import of lang/machine.
func ListModule(call Caller) *bytecode.Module {
	elemShape := shape.Base(shape.Float)
	listShape := shape.Generic(shape.GenericCtor(shape.Base(shape.List), 1), elemShape)

	newFn := native("List", "new", shape.Function(listShape),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 0, "List.new"); err != nil {
				return nil, err
			}
			return types.NewList(elemShape), nil
		})

	appendFn := native("List", "append", shape.Function(listShape, listShape, elemShape),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 2, "List.append"); err != nil {
				return nil, err
			}
			l, err := listArg(args, 0, "List.append")
			if err != nil {
				return nil, err
			}
			return l.Append(args[1]), nil
		})

	lengthFn := native("List", "length", shape.Function(shape.Base(shape.Float), listShape),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 1, "List.length"); err != nil {
				return nil, err
			}
			l, err := listArg(args, 0, "List.length")
			if err != nil {
				return nil, err
			}
			return types.Float(l.Len()), nil
		})

	getFn := native("List", "get", shape.Function(elemShape, listShape, shape.Base(shape.Float)),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 2, "List.get"); err != nil {
				return nil, err
			}
			l, err := listArg(args, 0, "List.get")
			if err != nil {
				return nil, err
			}
			idxF, err := floatArg(args, 1, "List.get")
			if err != nil {
				return nil, err
			}
			idx := int(idxF)
			if idx < 0 || idx >= l.Len() {
				return nil, fmt.Errorf("List.get: index %d out of range [0, %d)", idx, l.Len())
			}
			return l.Elems[idx], nil
		})

	mapFn := native("List", "map", shape.Function(listShape, listShape, shape.Function(elemShape, elemShape)),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 2, "List.map"); err != nil {
				return nil, err
			}
			l, err := listArg(args, 0, "List.map")
			if err != nil {
				return nil, err
			}
			fn, err := funcArg(args, 1, "List.map")
			if err != nil {
				return nil, err
			}
			out := types.NewList(l.ElemShape)
			for _, e := range l.Elems {
				v, err := call(fn, []types.Value{e})
				if err != nil {
					return nil, err
				}
				out = out.Append(v)
			}
			return out, nil
		})

	foldFn := native("List", "fold", shape.Function(elemShape, listShape, elemShape, shape.Function(elemShape, elemShape, elemShape)),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 3, "List.fold"); err != nil {
				return nil, err
			}
			l, err := listArg(args, 0, "List.fold")
			if err != nil {
				return nil, err
			}
			fn, err := funcArg(args, 2, "List.fold")
			if err != nil {
				return nil, err
			}
			acc := args[1]
			for _, e := range l.Elems {
				acc, err = call(fn, []types.Value{acc, e})
				if err != nil {
					return nil, err
				}
			}
			return acc, nil
		})

	return &bytecode.Module{
		Package:    packageName,
		ModuleName: "List",
		Functions: map[string]bytecode.RunFunction{
			"new":    newFn,
			"append": appendFn,
			"length": lengthFn,
			"get":    getFn,
			"map":    mapFn,
			"fold":   foldFn,
		},
	}
}
