// Package ast defines the abstract syntax tree produced by the parser and
// consumed by the checker (spec.md §3). The lexer/parser pair that builds
// this tree is an out-of-scope collaborator (spec.md §1): the checker,
// lowering, optimizer and emitter only ever depend on the shapes defined
// here, never on how they were parsed.
package ast

import (
	"github.com/DillonJettCallis/letlang/lang/shape"
	"github.com/DillonJettCallis/letlang/lang/token"
)

// Node is implemented by every AST expression.
type Node interface {
	Location() token.Location
	Shape() shape.Shape
	SetShape(shape.Shape)
}

// base holds the fields common to every expression node: its source
// location and its (initially Unknown) inferred shape.
type base struct {
	loc token.Location
	shp shape.Shape
}

func newBase(loc token.Location) base {
	return base{loc: loc, shp: shape.Unknown()}
}

func (b *base) Location() token.Location { return b.loc }
func (b *base) Shape() shape.Shape       { return b.shp }
func (b *base) SetShape(s shape.Shape)   { b.shp = s }

// Parameter is a name/shape pair: a function argument, or a captured
// variable recorded in a FunctionContext (spec.md §3).
type Parameter struct {
	ID    string
	Shape shape.Shape
}

// FunctionContext carries the information the checker discovers about a
// function declaration: whether it is a lambda (vs. a named declaration),
// whether it is nested inside another function, whether it recurses, and
// the list of free variables it captures from an enclosing function.
type FunctionContext struct {
	IsLambda    bool
	IsLocal     bool
	IsRecursive bool
	Closures    []Parameter
}

// NoOp is a placeholder expression with no runtime effect, representing
// "nothing happened"; the parser returns one in place of an expression it
// could not parse.
type NoOp struct {
	base
}

func NewNoOp(loc token.Location) *NoOp { return &NoOp{base: newBase(loc)} }

// FunctionDeclaration declares a function, either at module scope, as a
// local statement inside a block, or as an anonymous lambda expression.
type FunctionDeclaration struct {
	base
	ID      string // empty for a lambda
	Args    []Parameter
	Body    Node
	Result  shape.Shape // declared return shape (may start Unknown for lambdas)
	Context FunctionContext
}

func NewFunctionDeclaration(loc token.Location, id string, args []Parameter, result shape.Shape, body Node, isLambda, isLocal bool) *FunctionDeclaration {
	return &FunctionDeclaration{
		base:   newBase(loc),
		ID:     id,
		Args:   args,
		Body:   body,
		Result: result,
		Context: FunctionContext{
			IsLambda: isLambda,
			IsLocal:  isLocal,
		},
	}
}

// Assignment binds the value of Body to the local name ID (a `let` statement
// once resolved; function-level reassignment is not part of this language).
type Assignment struct {
	base
	ID   string
	Body Node
}

func NewAssignment(loc token.Location, id string, body Node) *Assignment {
	return &Assignment{base: newBase(loc), ID: id, Body: body}
}

// Variable references a local, a captured, or a module-level name.
type Variable struct {
	base
	ID string
}

func NewVariable(loc token.Location, id string) *Variable {
	return &Variable{base: newBase(loc), ID: id}
}

// BinaryOp is one of the arithmetic or comparison operators of spec.md §4.3.
type BinaryOp struct {
	base
	Op          string
	Left, Right Node
}

func NewBinaryOp(loc token.Location, op string, left, right Node) *BinaryOp {
	return &BinaryOp{base: newBase(loc), Op: op, Left: left, Right: right}
}

// UnaryOp is the single supplemented unary operator, numeric negation
// (SPEC_FULL.md §4, grounded in original_source/src/ast.rs's UnaryOp node).
type UnaryOp struct {
	base
	Op    string
	Right Node
}

func NewUnaryOp(loc token.Location, op string, right Node) *UnaryOp {
	return &UnaryOp{base: newBase(loc), Op: op, Right: right}
}

// Call applies Func to Args.
type Call struct {
	base
	Func Node
	Args []Node
}

func NewCall(loc token.Location, fn Node, args []Node) *Call {
	return &Call{base: newBase(loc), Func: fn, Args: args}
}

// If is a conditional expression; both branches must unify to the same
// shape (spec.md §4.3).
type If struct {
	base
	Condition, Then, Else Node
}

func NewIf(loc token.Location, cond, then, els Node) *If {
	return &If{base: newBase(loc), Condition: cond, Then: then, Else: els}
}

// Block is a sequence of expressions; its shape is that of its last
// statement (Unit if empty).
type Block struct {
	base
	Body []Node
}

func NewBlock(loc token.Location, body []Node) *Block {
	return &Block{base: newBase(loc), Body: body}
}

// StringLiteral is a literal string expression.
type StringLiteral struct {
	base
	Value string
}

func NewStringLiteral(loc token.Location, value string) *StringLiteral {
	return &StringLiteral{base: newBase(loc), Value: value}
}

// NumberLiteral is a literal floating-point number; the language has no
// separate integer type (spec.md §3).
type NumberLiteral struct {
	base
	Value float64
}

func NewNumberLiteral(loc token.Location, value float64) *NumberLiteral {
	return &NumberLiteral{base: newBase(loc), Value: value}
}

// BooleanLiteral is a literal `true` or `false`.
type BooleanLiteral struct {
	base
	Value bool
}

func NewBooleanLiteral(loc token.Location, value bool) *BooleanLiteral {
	return &BooleanLiteral{base: newBase(loc), Value: value}
}

// Module is a single parsed, not-yet-checked source file: a sequence of
// top-level function declarations (spec.md §6's module-naming convention).
// A module-level declaration may be marked exported, meaning it is visible
// for the CLI to invoke as `main` or for another module to call — this
// language has no cross-module import surface beyond the single designated
// main module (spec.md §6), so Exported is informational only today.
type Module struct {
	Package string
	Name    string
	Path    string
	Decls   []*FunctionDeclaration
	Exported map[string]bool
}
