package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DillonJettCallis/letlang/internal/diag"
	"github.com/DillonJettCallis/letlang/lang/ast"
	"github.com/DillonJettCallis/letlang/lang/checker"
	"github.com/DillonJettCallis/letlang/lang/parser"
)

func checkSource(t *testing.T, src string) (*ast.Module, error) {
	t.Helper()
	var errs diag.List
	decls, exported := parser.ParseFile("test.let", src, &errs)
	require.NoError(t, errs.Err())

	mod := &ast.Module{Package: "test", Name: "main", Decls: decls, Exported: exported}
	return mod, checker.CheckModule(mod)
}

func TestClosureCapture(t *testing.T) {
	mod, err := checkSource(t, `
fun make(x: Float): { Float -> Float } = { y => x + y }
fun main(): Float = make(10)(5)
`)
	require.NoError(t, err)

	var makeFn *ast.FunctionDeclaration
	for _, d := range mod.Decls {
		if d.ID == "make" {
			makeFn = d
		}
	}
	require.NotNil(t, makeFn)

	lambda, ok := makeFn.Body.(*ast.FunctionDeclaration)
	require.True(t, ok, "make's body should be a lambda declaration")
	require.Len(t, lambda.Context.Closures, 1)
	assert.Equal(t, "x", lambda.Context.Closures[0].ID)
	assert.False(t, lambda.Context.IsRecursive)
}

func TestTopLevelSelfRecursionIsFlagged(t *testing.T) {
	mod, err := checkSource(t, `
fun loop(n: Float): Float = if (n == 0) { 0 } else { loop(n - 1) }
fun main(): Float = loop(3)
`)
	require.NoError(t, err)

	var loop *ast.FunctionDeclaration
	for _, d := range mod.Decls {
		if d.ID == "loop" {
			loop = d
		}
	}
	require.NotNil(t, loop)
	assert.True(t, loop.Context.IsRecursive)
	assert.Empty(t, loop.Context.Closures, "self-reference must not also appear as a closure capture")
}

func TestNonRecursiveFunctionIsNotFlagged(t *testing.T) {
	mod, err := checkSource(t, `
fun addOne(n: Float): Float = n + 1
fun main(): Float = addOne(1)
`)
	require.NoError(t, err)

	var addOne *ast.FunctionDeclaration
	for _, d := range mod.Decls {
		if d.ID == "addOne" {
			addOne = d
		}
	}
	require.NotNil(t, addOne)
	assert.False(t, addOne.Context.IsRecursive)
}

func TestRedeclarationInSameBlockIsAnError(t *testing.T) {
	_, err := checkSource(t, `
fun main(): Float = { let x = 1; let x = 2; x }
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")
}

func TestMismatchedBranchShapesIsAnError(t *testing.T) {
	_, err := checkSource(t, `
fun main(): Float = if (true) { 1 } else { "nope" }
`)
	require.Error(t, err)
}

func TestUndefinedVariableIsAnError(t *testing.T) {
	_, err := checkSource(t, `
fun main(): Float = missing
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined")
}
