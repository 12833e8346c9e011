package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DillonJettCallis/letlang/internal/diag"
	"github.com/DillonJettCallis/letlang/lang/ast"
	"github.com/DillonJettCallis/letlang/lang/parser"
)

func parseOne(t *testing.T, src string) *ast.FunctionDeclaration {
	t.Helper()
	var errs diag.List
	decls, _ := parser.ParseFile("test.let", src, &errs)
	require.NoError(t, errs.Err())
	require.Len(t, decls, 1)
	return decls[0]
}

func TestParseSimpleFunction(t *testing.T) {
	decl := parseOne(t, `fun addOne(n: Float): Float = n + 1`)
	assert.Equal(t, "addOne", decl.ID)
	require.Len(t, decl.Args, 1)
	assert.Equal(t, "n", decl.Args[0].ID)

	bin, ok := decl.Body.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestParseUnaryMinus(t *testing.T) {
	decl := parseOne(t, `fun neg(n: Float): Float = -n`)
	un, ok := decl.Body.(*ast.UnaryOp)
	require.True(t, ok)
	assert.Equal(t, "-", un.Op)
}

func TestParseIfElse(t *testing.T) {
	decl := parseOne(t, `fun pick(): Float = if (true) { 1 } else { 2 }`)
	ifNode, ok := decl.Body.(*ast.If)
	require.True(t, ok)
	_, thenOk := ifNode.Then.(*ast.Block)
	_, elseOk := ifNode.Else.(*ast.Block)
	assert.True(t, thenOk)
	assert.True(t, elseOk)
}

func TestParseLambdaInsideBraces(t *testing.T) {
	decl := parseOne(t, `fun make(): { Float -> Float } = { y => y + 1 }`)
	lambda, ok := decl.Body.(*ast.FunctionDeclaration)
	require.True(t, ok, "a braced `ident => expr` must parse as a lambda, not a block")
	assert.True(t, lambda.Context.IsLambda)
	require.Len(t, lambda.Args, 1)
	assert.Equal(t, "y", lambda.Args[0].ID)
}

func TestParseBlockWithLet(t *testing.T) {
	decl := parseOne(t, `fun main(): Float = { let x = 1; x + 1 }`)
	block, ok := decl.Body.(*ast.Block)
	require.True(t, ok, "braces with no `=>` must parse as a block, not a lambda")
	require.Len(t, block.Body, 2)
	_, isAssign := block.Body[0].(*ast.Assignment)
	assert.True(t, isAssign)
}

func TestParseCallChain(t *testing.T) {
	decl := parseOne(t, `fun main(): Float = make(10)(5)`)
	outer, ok := decl.Body.(*ast.Call)
	require.True(t, ok)
	inner, ok := outer.Func.(*ast.Call)
	require.True(t, ok, "make(10)(5) must parse as a call whose callee is itself a call")
	callee, ok := inner.Func.(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "make", callee.ID)
}

func TestParseBinaryPrecedence(t *testing.T) {
	decl := parseOne(t, `fun main(): Float = 1 + 2 * 3`)
	add, ok := decl.Body.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
	_, rightIsMul := add.Right.(*ast.BinaryOp)
	assert.True(t, rightIsMul, "* must bind tighter than + so it nests on the right of the +")
	_, leftIsLiteral := add.Left.(*ast.NumberLiteral)
	assert.True(t, leftIsLiteral)
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	var errs diag.List
	parser.ParseFile("test.let", `fun main(): Float = )`, &errs)
	assert.Error(t, errs.Err())
}
