package ir

import (
	"fmt"

	"github.com/DillonJettCallis/letlang/lang/ast"
	"github.com/DillonJettCallis/letlang/lang/shape"
)

// Lower walks a fully type-checked ast.Module and produces its IR (spec.md
// §4.4). mod must already have passed lang/checker.CheckModule: every
// expression's shape is resolved and every FunctionContext is populated.
func Lower(mod *ast.Module, pkg string) *Module {
	l := &lowerer{pkg: pkg, module: mod.Name, out: &Module{Package: pkg, Module: mod.Name}}
	for _, decl := range mod.Decls {
		l.lowerTopLevel(decl)
	}
	return l.out
}

// lowerer carries module identity, the growing list of sibling Functions
// produced by lowering nested declarations, and a counter for naming
// anonymous lambdas.
type lowerer struct {
	pkg, module string
	out         *Module
	lambdaSeq   int
}

// funcScope is the per-function lowering context: the flat, append-only
// set of names known to be locals in the function currently being lowered
// (captures, the self-slot, declared args, let-bindings, and names storing
// local function declarations). A Variable not in this set names a
// module-level static function instead (spec.md §4.4).
type funcScope struct {
	locals map[string]bool
	prefix string // dotted path used to name nested sibling functions uniquely
}

func newFuncScope(prefix string) *funcScope {
	return &funcScope{locals: map[string]bool{}, prefix: prefix}
}

func (s *funcScope) declare(name string) { s.locals[name] = true }
func (s *funcScope) isLocal(name string) bool { return s.locals[name] }

func (l *lowerer) lowerTopLevel(decl *ast.FunctionDeclaration) {
	ref := FuncRef{Package: l.pkg, Module: l.module, Name: decl.ID, Shape: decl.Shape()}

	locals := make([]Local, 0, len(decl.Args))
	scope := newFuncScope(decl.ID)
	for _, p := range decl.Args {
		locals = append(locals, Local{Name: p.ID, Shape: p.Shape})
		scope.declare(p.ID)
	}

	var body []Op
	l.lowerExpr(scope, decl.Body, &body)
	body = append(body, Return{})

	l.out.Functions = append(l.out.Functions, &Function{Ref: ref, Locals: locals, Body: body})
}

func emit(out *[]Op, op Op) { *out = append(*out, op) }

// lowerExpr appends the instructions for n onto out, using scope to decide
// whether a Variable is a local load or a reference to a static function.
func (l *lowerer) lowerExpr(scope *funcScope, n ast.Node, out *[]Op) {
	switch e := n.(type) {
	case *ast.NoOp:
		emit(out, NoOp{})

	case *ast.NumberLiteral:
		emit(out, LoadConstFloat{Value: e.Value})

	case *ast.StringLiteral:
		emit(out, LoadConstString{Value: e.Value})

	case *ast.BooleanLiteral:
		if e.Value {
			emit(out, LoadConstTrue{})
		} else {
			emit(out, LoadConstFalse{})
		}

	case *ast.Variable:
		l.lowerVariable(scope, e.ID, e.Shape(), out)

	case *ast.UnaryOp:
		l.lowerExpr(scope, e.Right, out)
		emit(out, CallStatic{Ref: coreRef("neg", shape.Function(shape.Base(shape.Float), shape.Base(shape.Float)))})

	case *ast.BinaryOp:
		l.lowerExpr(scope, e.Left, out)
		l.lowerExpr(scope, e.Right, out)
		emit(out, CallStatic{Ref: coreRef(e.Op, binOpShape(e.Op))})

	case *ast.Call:
		l.lowerCall(scope, e, out)

	case *ast.Block:
		if len(e.Body) == 0 {
			emit(out, LoadConstNull{})
			return
		}
		for _, stmt := range e.Body {
			l.lowerExpr(scope, stmt, out)
		}

	case *ast.Assignment:
		l.lowerExpr(scope, e.Body, out)
		scope.declare(e.ID)
		emit(out, StoreValue{Name: e.ID})

	case *ast.If:
		l.lowerExpr(scope, e.Condition, out)
		var thenOps, elseOps []Op
		l.lowerExpr(scope, e.Then, &thenOps)
		l.lowerExpr(scope, e.Else, &elseOps)
		emit(out, Branch{Then: thenOps, Else: elseOps})

	case *ast.FunctionDeclaration:
		l.lowerFunctionDeclaration(scope, e, out)

	default:
		panic(fmt.Sprintf("ir: unexpected node %T", n))
	}
}

// lowerVariable loads a name that is either a local (capture, self-slot,
// declared arg, or let-binding) or a static module-level function. shp is
// the checker-filled shape of the Variable node itself: it must be carried
// into the emitted FuncRef exactly as lowerCall does for a direct call,
// since FuncRef.Key() ignores Shape and the bytecode interner is
// first-wins — whichever use of a function is lowered first fixes the
// arity every CallStatic to that function reads at arityOf time.
func (l *lowerer) lowerVariable(scope *funcScope, name string, shp shape.Shape, out *[]Op) {
	if scope.isLocal(name) {
		emit(out, LoadValue{Name: name})
		return
	}
	emit(out, LoadConstFunction{Ref: FuncRef{Package: l.pkg, Module: l.module, Name: name, Shape: shp}})
}

// lowerCall lowers a call site, preferring CallStatic whenever the callee
// is a bare Variable resolving to a static (not locally bound) name.
func (l *lowerer) lowerCall(scope *funcScope, call *ast.Call, out *[]Op) {
	if v, ok := call.Func.(*ast.Variable); ok && !scope.isLocal(v.ID) {
		for _, arg := range call.Args {
			l.lowerExpr(scope, arg, out)
		}
		emit(out, CallStatic{Ref: FuncRef{Package: l.pkg, Module: l.module, Name: v.ID, Shape: v.Shape()}})
		return
	}

	l.lowerExpr(scope, call.Func, out)
	for _, arg := range call.Args {
		l.lowerExpr(scope, arg, out)
	}
	emit(out, CallDynamic{Argc: len(call.Args)})
}

// lowerFunctionDeclaration handles a FunctionDeclaration encountered as an
// expression: a local statement function or a lambda (spec.md §4.4). The
// inner body becomes its own sibling Function; the current stream gets the
// instructions that construct and (if named) store the resulting value.
func (l *lowerer) lowerFunctionDeclaration(scope *funcScope, fn *ast.FunctionDeclaration, out *[]Op) {
	name := fn.ID
	if name == "" {
		l.lambdaSeq++
		name = fmt.Sprintf("lambda%d", l.lambdaSeq)
	}
	ref := FuncRef{Package: l.pkg, Module: l.module, Name: scope.prefix + "$" + name, Shape: fn.Shape()}

	inner := newFuncScope(ref.Name)
	var locals []Local
	for _, c := range fn.Context.Closures {
		locals = append(locals, Local{Name: c.ID, Shape: c.Shape})
		inner.declare(c.ID)
	}
	if fn.Context.IsRecursive && fn.ID != "" {
		locals = append(locals, Local{Name: fn.ID, Shape: fn.Shape()})
		inner.declare(fn.ID)
	}
	for _, p := range fn.Args {
		locals = append(locals, Local{Name: p.ID, Shape: p.Shape})
		inner.declare(p.ID)
	}

	var body []Op
	l.lowerExpr(inner, fn.Body, &body)
	body = append(body, Return{})
	l.out.Functions = append(l.out.Functions, &Function{Ref: ref, Locals: locals, Body: body})

	if len(fn.Context.Closures) == 0 {
		emit(out, LoadConstFunction{Ref: ref})
	} else {
		for _, c := range fn.Context.Closures {
			l.lowerVariable(scope, c.ID, c.Shape, out)
		}
		emit(out, BuildClosure{Argc: len(fn.Context.Closures), Ref: ref})
	}

	if fn.Context.IsRecursive {
		emit(out, BuildRecursiveFunction{})
	}

	if !fn.Context.IsLambda {
		scope.declare(fn.ID)
		emit(out, StoreValue{Name: fn.ID})
	}
}

func coreRef(name string, shp shape.Shape) FuncRef {
	return FuncRef{Package: "Core", Module: "Core", Name: name, Shape: shp}
}

func binOpShape(op string) shape.Shape {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return shape.Function(shape.Base(shape.Boolean), shape.Base(shape.Float), shape.Base(shape.Float))
	default:
		return shape.Function(shape.Base(shape.Float), shape.Base(shape.Float), shape.Base(shape.Float))
	}
}
