// Package checker implements the type checker (spec.md §4.3). It walks the
// parsed ast.Module and resolves every expression's shape, populating each
// FunctionDeclaration's FunctionContext with the closures it captures and
// whether it recurses. The scope-stack idiom (push/pop blocks, promote a
// found-in-an-outer-function binding into a capture) is adapted from the
// teacher's lang/resolver.resolver: bind/use/block there become setScope/
// checkScope/pushBlock here, generalized to also carry and verify shapes.
package checker

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/DillonJettCallis/letlang/internal/diag"
	"github.com/DillonJettCallis/letlang/lang/ast"
	"github.com/DillonJettCallis/letlang/lang/shape"
	"github.com/DillonJettCallis/letlang/lang/token"
)

// blockScope is the innermost name→shape map for one `{ ... }` block.
type blockScope map[string]shape.Shape

// funcFrame is one entry of the function_stack: the stack of block scopes
// belonging to a single function (or lambda), plus the closures it has
// captured so far and the id used to detect self-recursion.
type funcFrame struct {
	blocks   []blockScope
	closures []ast.Parameter
	selfID   string // fn.ID; empty for a lambda, which can therefore never be "recursive"

	// selfReferenced is set when this frame's own id was looked up and
	// resolved through the module's static scope rather than the closures
	// mechanism — the case for a top-level function calling itself, which
	// lowers to a direct CallStatic rather than a Recursive handle, but
	// still satisfies the "is_recursive iff self-referencing" invariant.
	selfReferenced bool
}

func newFuncFrame(selfID string) *funcFrame {
	return &funcFrame{blocks: []blockScope{{}}, selfID: selfID}
}

func (f *funcFrame) push() { f.blocks = append(f.blocks, blockScope{}) }
func (f *funcFrame) pop()  { f.blocks = f.blocks[:len(f.blocks)-1] }
func (f *funcFrame) top() blockScope { return f.blocks[len(f.blocks)-1] }

// addClosure records a captured Parameter, deduplicating by id: the same
// outer local may be referenced many times inside one function.
func (f *funcFrame) addClosure(p ast.Parameter) {
	if slices.ContainsFunc(f.closures, func(c ast.Parameter) bool { return c.ID == p.ID }) {
		return
	}
	f.closures = append(f.closures, p)
}

// Checker carries the module-level static scope and the function-scope
// stack across a single module's worth of checking.
type Checker struct {
	errs   *diag.List
	static map[string]shape.Shape
	stack  []*funcFrame
}

// CheckModule type-checks every declaration of mod in place, mutating each
// node's shape and each FunctionDeclaration's FunctionContext. It returns a
// non-nil error (a diag.List, per spec.md §4.3's "all type errors are
// fatal") if checking failed.
func CheckModule(mod *ast.Module) error {
	c := &Checker{errs: &diag.List{}, static: map[string]shape.Shape{}}

	for _, decl := range mod.Decls {
		declShape, err := declaredShape(decl)
		if err != nil {
			diag.Add(c.errs, decl.Location(), "%s", err)
			continue
		}
		c.static[decl.ID] = declShape
	}

	for _, decl := range mod.Decls {
		c.checkFunctionDecl(decl, shape.Unknown())
	}

	c.errs.Sort()
	return c.errs.Err()
}

// declaredShape computes a FunctionDeclaration's own Function shape from its
// already-written parameter and result annotations, without needing a scope.
func declaredShape(fn *ast.FunctionDeclaration) (shape.Shape, error) {
	args := make([]shape.Shape, len(fn.Args))
	for i, p := range fn.Args {
		filled, err := shape.Fill(p.Shape)
		if err != nil {
			return shape.Shape{}, err
		}
		args[i] = filled
	}
	result, err := shape.Fill(fn.Result)
	if err != nil {
		return shape.Shape{}, err
	}
	return shape.Function(result, args...), nil
}

func (c *Checker) cur() *funcFrame { return c.stack[len(c.stack)-1] }

// setScope inserts id → s into the innermost block of the current function.
// Redeclaration within the same block is an error (spec.md §4.3); shadowing
// a binding from an enclosing block or function is always permitted.
func (c *Checker) setScope(id string, s shape.Shape, loc token.Location) {
	top := c.cur().top()
	if _, ok := top[id]; ok {
		diag.Add(c.errs, loc, "already declared in this block: %s", id)
		return
	}
	top[id] = s
}

// checkScope searches the innermost block outward, then outer function
// scopes, then the module's static scope. A name found in a different
// function scope than the current one is recorded as a closure capture of
// the current function (spec.md §4.3).
func (c *Checker) checkScope(id string, loc token.Location) shape.Shape {
	for fi := len(c.stack) - 1; fi >= 0; fi-- {
		frame := c.stack[fi]
		for bi := len(frame.blocks) - 1; bi >= 0; bi-- {
			if s, ok := frame.blocks[bi][id]; ok {
				if fi != len(c.stack)-1 {
					c.cur().addClosure(ast.Parameter{ID: id, Shape: s})
				}
				return s
			}
		}
	}
	if s, ok := c.static[id]; ok {
		// A static (module-level) name matching the outermost active
		// frame's own id is that top-level function calling itself.
		if len(c.stack) > 0 && c.stack[0].selfID != "" && id == c.stack[0].selfID {
			c.stack[0].selfReferenced = true
		}
		return s
	}
	diag.Add(c.errs, loc, "undefined: %s", id)
	return shape.Unknown()
}

// verify reconciles an expected shape against a found shape, per spec.md
// §4.3's verification rule.
func (c *Checker) verify(expected, found shape.Shape, loc token.Location) shape.Shape {
	if expected.IsUnknown() && found.IsUnknown() {
		diag.Add(c.errs, loc, "cannot infer type")
		return shape.Unknown()
	}
	if expected.IsUnknown() {
		filled, err := shape.Fill(found)
		if err != nil {
			diag.Add(c.errs, loc, "%s", err)
			return shape.Unknown()
		}
		return filled
	}
	if found.IsUnknown() {
		filled, err := shape.Fill(expected)
		if err != nil {
			diag.Add(c.errs, loc, "%s", err)
			return shape.Unknown()
		}
		return filled
	}
	fExpected, err := shape.Fill(expected)
	if err != nil {
		diag.Add(c.errs, loc, "%s", err)
		return shape.Unknown()
	}
	fFound, err := shape.Fill(found)
	if err != nil {
		diag.Add(c.errs, loc, "%s", err)
		return shape.Unknown()
	}
	if !shape.Equal(fExpected, fFound) {
		diag.Add(c.errs, loc, "type mismatch: expected %s, found %s", fExpected, fFound)
		return fExpected
	}
	return fExpected
}

// checkFunctionDecl checks one FunctionDeclaration (top-level, local
// statement, or lambda). expectedFn is the contextually expected function
// shape — Unknown for every fully-annotated declaration, or the shape a
// lambda is being passed/assigned as, which fills any parameter or result
// left Unknown by the parser (bidirectional inference: the context decides
// a lambda's shape).
func (c *Checker) checkFunctionDecl(fn *ast.FunctionDeclaration, expectedFn shape.Shape) shape.Shape {
	var expectedArgs []shape.Shape
	expectedResult := shape.Unknown()
	if expectedFn.IsFunction() && len(expectedFn.FuncArgs()) == len(fn.Args) {
		expectedArgs = expectedFn.FuncArgs()
		expectedResult = expectedFn.FuncResult()
	}

	for i, p := range fn.Args {
		if p.Shape.IsUnknown() && expectedArgs != nil {
			fn.Args[i].Shape = expectedArgs[i]
		}
	}
	if fn.Result.IsUnknown() && !expectedResult.IsUnknown() {
		fn.Result = expectedResult
	}

	argShapes := make([]shape.Shape, len(fn.Args))
	for i, p := range fn.Args {
		filled, err := shape.Fill(p.Shape)
		if err != nil {
			diag.Add(c.errs, fn.Location(), "%s", err)
			filled = shape.Unknown()
		}
		argShapes[i] = filled
		fn.Args[i].Shape = filled
	}

	c.stack = append(c.stack, newFuncFrame(fn.ID))
	for _, p := range fn.Args {
		c.setScope(p.ID, p.Shape, fn.Location())
	}

	bodyShape := c.check(fn.Body, fn.Result)
	declaredResult := c.verify(fn.Result, bodyShape, fn.Location())
	fn.Result = declaredResult

	frame := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]

	var closures []ast.Parameter
	isRecursive := frame.selfReferenced
	for _, cl := range frame.closures {
		if fn.ID != "" && cl.ID == fn.ID {
			isRecursive = true
			continue
		}
		closures = append(closures, cl)
	}
	fn.Context.Closures = closures
	fn.Context.IsRecursive = isRecursive

	fnShape := shape.Function(declaredResult, argShapes...)
	fn.SetShape(fnShape)
	return fnShape
}

// check recursively type-checks expr against expected, returning (and
// recording on the node via SetShape) the shape it was verified to have.
func (c *Checker) check(n ast.Node, expected shape.Shape) shape.Shape {
	var natural shape.Shape

	switch e := n.(type) {
	case *ast.NoOp:
		natural = shape.Base(shape.Unit)

	case *ast.NumberLiteral:
		natural = shape.Base(shape.Float)

	case *ast.StringLiteral:
		natural = shape.Base(shape.String)

	case *ast.BooleanLiteral:
		natural = shape.Base(shape.Boolean)

	case *ast.Variable:
		natural = c.checkScope(e.ID, e.Location())

	case *ast.UnaryOp:
		c.check(e.Right, shape.Base(shape.Float))
		natural = shape.Base(shape.Float)

	case *ast.BinaryOp:
		natural = c.checkBinaryOp(e)

	case *ast.If:
		c.check(e.Condition, shape.Base(shape.Boolean))
		thenShape := c.check(e.Then, shape.Unknown())
		elseShape := c.check(e.Else, shape.Unknown())
		natural = c.verify(thenShape, elseShape, e.Location())

	case *ast.Block:
		// checkBlock already verifies its last statement against expected.
		natural = c.checkBlock(e, expected)
		n.SetShape(natural)
		return natural

	case *ast.Assignment:
		rhsShape := c.check(e.Body, shape.Unknown())
		c.setScope(e.ID, rhsShape, e.Location())
		natural = shape.Base(shape.Unit)

	case *ast.Call:
		natural = c.checkCall(e)

	case *ast.FunctionDeclaration:
		natural = c.checkFunctionDecl(e, expected)
		n.SetShape(natural)
		return natural

	default:
		panic(fmt.Sprintf("checker: unexpected node %T", n))
	}

	result := c.verify(expected, natural, n.Location())
	n.SetShape(result)
	return result
}

var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true}
var comparisonOps = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}

func (c *Checker) checkBinaryOp(e *ast.BinaryOp) shape.Shape {
	c.check(e.Left, shape.Base(shape.Float))
	c.check(e.Right, shape.Base(shape.Float))
	switch {
	case arithmeticOps[e.Op]:
		return shape.Base(shape.Float)
	case comparisonOps[e.Op]:
		return shape.Base(shape.Boolean)
	default:
		diag.Add(c.errs, e.Location(), "unknown operator: %s", e.Op)
		return shape.Unknown()
	}
}

// checkBlock checks each statement of blk in order, binding a local named
// function declaration's own name into the block before checking its body
// so that it can refer to itself (spec.md §4.3's closures_stack recursion
// rule: a local function's self-reference is only ever found via an outer
// function scope, never via static_scope, which is reserved for top-level
// declarations).
func (c *Checker) checkBlock(blk *ast.Block, expected shape.Shape) shape.Shape {
	c.cur().push()
	defer c.cur().pop()

	if len(blk.Body) == 0 {
		return c.verify(expected, shape.Base(shape.Unit), blk.Location())
	}

	var last shape.Shape
	for i, stmt := range blk.Body {
		stmtExpected := shape.Unknown()
		if i == len(blk.Body)-1 {
			stmtExpected = expected
		}

		if fn, ok := stmt.(*ast.FunctionDeclaration); ok && !fn.Context.IsLambda {
			declShape, err := declaredShape(fn)
			if err != nil {
				diag.Add(c.errs, fn.Location(), "%s", err)
				declShape = shape.Unknown()
			}
			c.setScope(fn.ID, declShape, fn.Location())
			natural := c.checkFunctionDecl(fn, shape.Unknown())
			last = c.verify(stmtExpected, natural, fn.Location())
			fn.SetShape(last)
			continue
		}

		last = c.check(stmt, stmtExpected)
	}
	return last
}

func (c *Checker) checkCall(call *ast.Call) shape.Shape {
	fnShape := c.check(call.Func, shape.Unknown())
	if !fnShape.IsFunction() {
		diag.Add(c.errs, call.Location(), "cannot call a non-function value of type %s", fnShape)
		for _, arg := range call.Args {
			c.check(arg, shape.Unknown())
		}
		return shape.Unknown()
	}

	params := fnShape.FuncArgs()
	if len(params) != len(call.Args) {
		diag.Add(c.errs, call.Location(), "expected %d argument(s), found %d", len(params), len(call.Args))
	}
	for i, arg := range call.Args {
		if i < len(params) {
			c.check(arg, params[i])
		} else {
			c.check(arg, shape.Unknown())
		}
	}
	return fnShape.FuncResult()
}
