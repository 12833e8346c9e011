package shape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DillonJettCallis/letlang/lang/shape"
)

func TestFillResolvesBuiltinNames(t *testing.T) {
	cases := map[string]shape.Shape{
		"Float":   shape.Base(shape.Float),
		"String":  shape.Base(shape.String),
		"Unit":    shape.Base(shape.Unit),
		"Boolean": shape.Base(shape.Boolean),
	}
	for name, want := range cases {
		got, err := shape.Fill(shape.Named(name))
		require.NoError(t, err)
		assert.True(t, shape.Equal(want, got), "Fill(%s) = %s, want %s", name, got, want)
	}
}

func TestFillRejectsUnknownName(t *testing.T) {
	_, err := shape.Fill(shape.Named("Widget"))
	assert.Error(t, err)
}

func TestFillLeavesNonNamedShapesAlone(t *testing.T) {
	for _, s := range []shape.Shape{
		shape.Base(shape.Float),
		shape.Function(shape.Base(shape.Float), shape.Base(shape.Float)),
		shape.Generic(shape.Base(shape.List), shape.Base(shape.Float)),
	} {
		got, err := shape.Fill(s)
		require.NoError(t, err)
		assert.True(t, shape.Equal(s, got))
	}
}

func TestEqualUpToFill(t *testing.T) {
	assert.True(t, shape.Equal(shape.Named("Float"), shape.Base(shape.Float)))
	assert.False(t, shape.Equal(shape.Named("Float"), shape.Base(shape.String)))
}

func TestEqualFunctionShapes(t *testing.T) {
	a := shape.Function(shape.Base(shape.Float), shape.Base(shape.Float), shape.Base(shape.Float))
	b := shape.Function(shape.Named("Float"), shape.Named("Float"), shape.Named("Float"))
	assert.True(t, shape.Equal(a, b))

	c := shape.Function(shape.Base(shape.Float), shape.Base(shape.String))
	assert.False(t, shape.Equal(a, c))
}

func TestListOf(t *testing.T) {
	l := shape.ListOf(shape.Base(shape.Float))
	require.True(t, l.IsFunction() == false)
	assert.Equal(t, shape.Base(shape.Float).String(), l.GenericArgs()[0].String())
}
