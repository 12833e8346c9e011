package corelib

import (
	"fmt"

	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/shape"
	"github.com/DillonJettCallis/letlang/lang/types"
)

func mapArg(args []types.Value, i int, fn string) (*types.Map, error) {
	m, ok := args[i].(*types.Map)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d: expected Map, got %s", fn, i, args[i].Type())
	}
	return m, nil
}

// MapModule builds the internal Map scratch module (spec.md §6 supplement):
// a keyed dictionary that lang/machine's Link installs in the Core package
// next to List, not exposed as a distinct language-level generic the way
// List is.
func MapModule() *bytecode.Module {
	keyShape := shape.Base(shape.String)
	valShape := shape.Base(shape.Float)
	mapShape := shape.Named("Map")

	newFn := native("Map", "new", shape.Function(mapShape),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 0, "Map.new"); err != nil {
				return nil, err
			}
			return types.NewMap(8), nil
		})

	putFn := native("Map", "put", shape.Function(mapShape, mapShape, keyShape, valShape),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 3, "Map.put"); err != nil {
				return nil, err
			}
			m, err := mapArg(args, 0, "Map.put")
			if err != nil {
				return nil, err
			}
			m.Put(args[1], args[2])
			return m, nil
		})

	getFn := native("Map", "get", shape.Function(valShape, mapShape, keyShape),
		func(args []types.Value) (types.Value, error) {
			if err := arity(args, 2, "Map.get"); err != nil {
				return nil, err
			}
			m, err := mapArg(args, 0, "Map.get")
			if err != nil {
				return nil, err
			}
			v, ok := m.Get(args[1])
			if !ok {
				return nil, fmt.Errorf("Map.get: key %s not present", args[1].String())
			}
			return v, nil
		})

	return &bytecode.Module{
		Package:    packageName,
		ModuleName: "Map",
		Functions: map[string]bytecode.RunFunction{
			"new": newFn,
			"put": putFn,
			"get": getFn,
		},
	}
}
