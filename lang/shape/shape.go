// Package shape implements the language's structural type system (C1 in
// spec.md §4.1). A Shape is the compile-time description of the kind of
// value an expression produces; equality between shapes is always
// structural, never nominal.
package shape

import "fmt"

// BaseKind enumerates the built-in, non-composite shapes.
type BaseKind int

const (
	Unit BaseKind = iota
	Boolean
	Float
	String
	List
)

func (k BaseKind) String() string {
	switch k {
	case Unit:
		return "Unit"
	case Boolean:
		return "Boolean"
	case Float:
		return "Float"
	case String:
		return "String"
	case List:
		return "List"
	default:
		return fmt.Sprintf("BaseKind(%d)", int(k))
	}
}

// Shape is the tagged-variant type described in spec.md §3. Exactly one of
// the typed accessors below is meaningful for any given Shape; use the Is*
// helpers to discriminate before reading them.
type Shape struct {
	kind kind

	base BaseKind // kind == kindBase

	genericBase Shape   // kind == kindGeneric || kind == kindGenericCtor
	genericArgs []Shape // kind == kindGeneric

	genericCtorArity int // kind == kindGenericCtor

	funcArgs   []Shape // kind == kindFunction
	funcResult *Shape  // kind == kindFunction

	named string // kind == kindNamed
}

type kind int

const (
	kindBase kind = iota
	kindGeneric
	kindGenericCtor
	kindFunction
	kindNamed
	kindUnknown
)

// Base constructs a Shape for one of the built-in base kinds.
func Base(k BaseKind) Shape { return Shape{kind: kindBase, base: k} }

// Generic constructs an instantiated generic shape, e.g. List[Float].
func Generic(base Shape, args ...Shape) Shape {
	return Shape{kind: kindGeneric, genericBase: base, genericArgs: args}
}

// GenericCtor constructs an uninstantiated generic type constructor of the
// given arity, e.g. the bare `List` constructor (arity 1).
func GenericCtor(base Shape, arity int) Shape {
	return Shape{kind: kindGenericCtor, genericBase: base, genericCtorArity: arity}
}

// Function constructs a function shape `{ args... -> result }`.
func Function(result Shape, args ...Shape) Shape {
	return Shape{kind: kindFunction, funcArgs: args, funcResult: &result}
}

// Named constructs a transient Shape referring to a type by name, as produced
// by the parser before Fill resolves it to a built-in base shape.
func Named(name string) Shape { return Shape{kind: kindNamed, named: name} }

// Unknown is the transient "please infer" marker; it must never survive past
// type checking (spec.md §3, §8).
func Unknown() Shape { return Shape{kind: kindUnknown} }

func (s Shape) IsUnknown() bool { return s.kind == kindUnknown }
func (s Shape) IsNamed() bool   { return s.kind == kindNamed }
func (s Shape) IsFunction() bool {
	return s.kind == kindFunction
}
func (s Shape) IsBase(k BaseKind) bool { return s.kind == kindBase && s.base == k }

// Name returns the referenced type name; valid only when IsNamed.
func (s Shape) Name() string { return s.named }

// FuncArgs and FuncResult are valid only when IsFunction.
func (s Shape) FuncArgs() []Shape  { return s.funcArgs }
func (s Shape) FuncResult() Shape  { return *s.funcResult }
func (s Shape) GenericBase() Shape { return s.genericBase }
func (s Shape) GenericArgs() []Shape {
	return s.genericArgs
}

// namedShapes maps the built-in type names recognized by Fill.
var namedShapes = map[string]Shape{
	"Float":   Base(Float),
	"String":  Base(String),
	"Unit":    Base(Unit),
	"Boolean": Base(Boolean),
}

// Fill replaces every Named node reachable from s with the built-in shape it
// names (spec.md §4.1). It fails with an error naming the unresolved type if
// a Named node refers to something other than a built-in base shape: this
// language has no user-defined types (spec.md §1 Non-goals), so Named can
// only ever denote one of the four base kinds.
func Fill(s Shape) (Shape, error) {
	switch s.kind {
	case kindNamed:
		resolved, ok := namedShapes[s.named]
		if !ok {
			return Shape{}, fmt.Errorf("unknown shape: %s", s.named)
		}
		return resolved, nil

	case kindGeneric:
		base, err := Fill(s.genericBase)
		if err != nil {
			return Shape{}, err
		}
		args := make([]Shape, len(s.genericArgs))
		for i, a := range s.genericArgs {
			filled, err := Fill(a)
			if err != nil {
				return Shape{}, err
			}
			args[i] = filled
		}
		return Generic(base, args...), nil

	case kindGenericCtor:
		base, err := Fill(s.genericBase)
		if err != nil {
			return Shape{}, err
		}
		return GenericCtor(base, s.genericCtorArity), nil

	case kindFunction:
		args := make([]Shape, len(s.funcArgs))
		for i, a := range s.funcArgs {
			filled, err := Fill(a)
			if err != nil {
				return Shape{}, err
			}
			args[i] = filled
		}
		result, err := Fill(*s.funcResult)
		if err != nil {
			return Shape{}, err
		}
		return Function(result, args...), nil

	default:
		return s, nil
	}
}

// MustFill is like Fill but panics on failure; used where the caller already
// guarantees the shape is well-formed (e.g. shapes built entirely from
// spec-internal constructors, never from user-supplied Named values).
func MustFill(s Shape) Shape {
	filled, err := Fill(s)
	if err != nil {
		panic(err)
	}
	return filled
}

// Equal reports structural equality up to Fill, per spec.md §3.
func Equal(a, b Shape) bool {
	fa, erra := Fill(a)
	fb, errb := Fill(b)
	if erra != nil || errb != nil {
		return false
	}
	return equalFilled(fa, fb)
}

func equalFilled(a, b Shape) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case kindBase:
		return a.base == b.base
	case kindGeneric:
		if !equalFilled(a.genericBase, b.genericBase) || len(a.genericArgs) != len(b.genericArgs) {
			return false
		}
		for i := range a.genericArgs {
			if !equalFilled(a.genericArgs[i], b.genericArgs[i]) {
				return false
			}
		}
		return true
	case kindGenericCtor:
		return equalFilled(a.genericBase, b.genericBase) && a.genericCtorArity == b.genericCtorArity
	case kindFunction:
		if len(a.funcArgs) != len(b.funcArgs) {
			return false
		}
		for i := range a.funcArgs {
			if !equalFilled(a.funcArgs[i], b.funcArgs[i]) {
				return false
			}
		}
		return equalFilled(*a.funcResult, *b.funcResult)
	case kindUnknown:
		return true
	default:
		return false
	}
}

func (s Shape) String() string {
	switch s.kind {
	case kindBase:
		return s.base.String()
	case kindGeneric:
		out := s.genericBase.String() + "["
		for i, a := range s.genericArgs {
			if i > 0 {
				out += ", "
			}
			out += a.String()
		}
		return out + "]"
	case kindGenericCtor:
		return fmt.Sprintf("%s/%d", s.genericBase, s.genericCtorArity)
	case kindFunction:
		out := "{ "
		for i, a := range s.funcArgs {
			if i > 0 {
				out += ", "
			}
			out += a.String()
		}
		return out + " -> " + s.funcResult.String() + " }"
	case kindNamed:
		return s.named
	case kindUnknown:
		return "?"
	default:
		return "<invalid shape>"
	}
}

// ListOf is a convenience constructor for the only generic type this
// language's standard library instantiates: List[Float].
func ListOf(elem Shape) Shape {
	return Generic(Base(List), elem)
}
