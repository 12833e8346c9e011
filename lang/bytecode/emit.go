package bytecode

import (
	"fmt"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"

	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/shape"
)

// interner deduplicates values of type T into a dense, append-only table,
// handing back the same index for the same value every time (spec.md §4.6's
// string_constants/function_refs/shape_refs tables).
type interner[K comparable, T any] struct {
	index  *swiss.Map[K, uint32]
	values []T
}

func newInterner[K comparable, T any]() *interner[K, T] {
	return &interner[K, T]{index: swiss.NewMap[K, uint32](16)}
}

func (n *interner[K, T]) intern(key K, value T) uint32 {
	if id, ok := n.index.Get(key); ok {
		return id
	}
	id := uint32(len(n.values))
	n.index.Put(key, id)
	n.values = append(n.values, value)
	return id
}

// localAllocator hands out numeric slots for named locals, reusing slots
// freed by a FreeLocal marker on a LIFO basis so a function's MaxLocals
// reflects live-range overlap rather than the total count of names it ever
// binds (spec.md §4.6).
type localAllocator struct {
	slots     map[string]uint16
	freeList  []uint16
	next      uint16
	maxLocals uint16
}

func newLocalAllocator() *localAllocator {
	return &localAllocator{slots: make(map[string]uint16)}
}

func (a *localAllocator) assign(name string) uint16 {
	if slot, ok := a.slots[name]; ok {
		return slot
	}
	var slot uint16
	if n := len(a.freeList); n > 0 {
		slot = a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
	} else {
		slot = a.next
		a.next++
	}
	a.slots[name] = slot
	if slot+1 > a.maxLocals {
		a.maxLocals = slot + 1
	}
	return slot
}

func (a *localAllocator) lookup(name string) uint16 {
	slot, ok := a.slots[name]
	if !ok {
		panic(fmt.Sprintf("bytecode: local %q read before assignment", name))
	}
	return slot
}

func (a *localAllocator) free(name string) {
	slot, ok := a.slots[name]
	if !ok {
		return
	}
	delete(a.slots, name)
	// A FreeLocal marker should never be emitted twice for the same slot,
	// but guard the free list against it rather than let assign() hand out
	// one physical slot to two live locals at once.
	if slices.Contains(a.freeList, slot) {
		return
	}
	a.freeList = append(a.freeList, slot)
}

// emitter carries the per-module interning tables across every function
// emitted from that module, so a string or FuncRef used by two different
// functions gets one shared table entry.
type emitter struct {
	strings *interner[string, string]
	funcs   *interner[ir.FuncRefKey, ir.FuncRef]
	shapes  *interner[string, shape.Shape]
}

func newEmitter() *emitter {
	return &emitter{
		strings: newInterner[string, string](),
		funcs:   newInterner[ir.FuncRefKey, ir.FuncRef](),
		shapes:  newInterner[string, shape.Shape](),
	}
}

func (e *emitter) internString(s string) uint32 { return e.strings.intern(s, s) }
func (e *emitter) internFunc(ref ir.FuncRef) uint32 {
	return e.funcs.intern(ref.Key(), ref)
}
func (e *emitter) internShape(s shape.Shape) uint32 {
	return e.shapes.intern(s.String(), s)
}

// EmitModule flattens every function of an optimized ir.Module into a
// bytecode.Module, sharing one set of interning tables across all of them.
func EmitModule(mod *ir.Module) *Module {
	e := newEmitter()
	functions := make(map[string]RunFunction, len(mod.Functions))
	for _, fn := range mod.Functions {
		bit := e.emitFunction(fn)
		functions[bit.FuncRef.Name] = bit
	}
	return &Module{
		Package:         mod.Package,
		ModuleName:      mod.Module,
		StringConstants: e.strings.values,
		FunctionRefs:    e.funcs.values,
		ShapeRefs:       e.shapes.values,
		Functions:       functions,
	}
}

func (e *emitter) emitFunction(fn *ir.Function) *BitFunction {
	alloc := newLocalAllocator()
	for _, local := range fn.Locals {
		alloc.assign(local.Name)
	}
	body := e.emitBody(fn.Body, alloc)
	return &BitFunction{
		FuncRef:   fn.Ref,
		MaxLocals: alloc.maxLocals,
		Body:      body,
	}
}

// emitBody translates one flat (but Branch-nested) ir.Op list into flat
// Instructions, flattening any Branch into a Branch+body+Jump+body sequence
// whose RelOffsets are derived solely from the emitted sub-bodies' lengths
// (spec.md §4.6 and §9 Open Question (b): no label table is ever built).
func (e *emitter) emitBody(ops []ir.Op, alloc *localAllocator) []Instruction {
	out := make([]Instruction, 0, len(ops))
	for _, op := range ops {
		switch o := op.(type) {
		case ir.NoOp:
			out = append(out, NoOp{})
		case ir.Duplicate:
			out = append(out, Duplicate{})
		case ir.Pop:
			out = append(out, Pop{})
		case ir.Swap:
			out = append(out, Swap{})
		case ir.LoadConstNull:
			out = append(out, LoadConstNull{})
		case ir.LoadConstTrue:
			out = append(out, LoadConstTrue{})
		case ir.LoadConstFalse:
			out = append(out, LoadConstFalse{})
		case ir.LoadConstFloat:
			out = append(out, LoadConstFloat{Value: o.Value})
		case ir.LoadConstString:
			out = append(out, LoadConstString{ID: e.internString(o.Value)})
		case ir.LoadConstFunction:
			out = append(out, LoadConstFunction{ID: e.internFunc(o.Ref)})
		case ir.LoadValue:
			out = append(out, LoadValue{Local: alloc.lookup(o.Name)})
		case ir.StoreValue:
			out = append(out, StoreValue{Local: alloc.assign(o.Name)})
		case ir.FreeLocal:
			alloc.free(o.Name)
		case ir.CallStatic:
			out = append(out, CallStatic{ID: e.internFunc(o.Ref)})
		case ir.CallDynamic:
			out = append(out, CallDynamic{Argc: uint16(o.Argc)})
		case ir.BuildClosure:
			out = append(out, BuildClosure{Argc: uint16(o.Argc), ID: e.internFunc(o.Ref)})
		case ir.BuildRecursiveFunction:
			out = append(out, BuildRecursiveFunction{})
		case ir.Return:
			out = append(out, Return{})
		case ir.Debug:
			out = append(out, Debug{})
		case ir.Error:
			out = append(out, Error{Message: o.Message})
		case ir.Branch:
			out = append(out, e.emitBranch(o, alloc)...)
		default:
			panic(fmt.Sprintf("bytecode: unhandled ir.Op %T", op))
		}
	}
	return out
}

func (e *emitter) emitBranch(o ir.Branch, alloc *localAllocator) []Instruction {
	thenBody := e.emitBody(o.Then, alloc)
	elseBody := e.emitBody(o.Else, alloc)

	if !endsInReturn(thenBody) {
		thenBody = append(thenBody, Jump{RelOffset: int32(len(elseBody))})
	}

	out := make([]Instruction, 0, 1+len(thenBody)+len(elseBody))
	out = append(out, Branch{RelOffset: int32(len(thenBody))})
	out = append(out, thenBody...)
	out = append(out, elseBody...)
	return out
}

func endsInReturn(body []Instruction) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(Return)
	return ok
}
