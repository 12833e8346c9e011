// Package machine implements the tree-walking bytecode virtual machine
// (spec.md §4.8): it executes a linked bytecode.Application, dispatching
// each BitFunction's flat Instruction stream over an explicit operand stack
// and numbered-slot locals array, with CallStatic/CallDynamic in tail
// position eliminated into a loop iteration rather than a Go call frame.
package machine

import (
	"fmt"

	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/types"
)

// Machine owns a linked Application and runs function calls against it.
// MaxSteps and MaxCallStackDepth are optional resource limits (<= 0 means no
// limit); a tail call never grows the depth counter, since it replaces the
// current frame instead of recursing into a new Go call.
type Machine struct {
	App               *bytecode.Application
	MaxSteps          int
	MaxCallStackDepth int

	steps int
	depth int
}

// NewMachine constructs a Machine over app with no resource limits.
func NewMachine(app *bytecode.Application) *Machine {
	return &Machine{App: app}
}

// RunMain invokes the Application's designated entry point with no
// arguments.
func (m *Machine) RunMain() (types.Value, error) {
	return m.Execute(m.App.Main, nil)
}

func (m *Machine) lookup(ref ir.FuncRef) (bytecode.RunFunction, error) {
	pkg, ok := m.App.Packages[ref.Package]
	if !ok {
		return nil, fmt.Errorf("machine: unknown package %q", ref.Package)
	}
	mod, ok := pkg.Modules[ref.Module]
	if !ok {
		return nil, fmt.Errorf("machine: unknown module %s.%s", ref.Package, ref.Module)
	}
	fn, ok := mod.Functions[ref.Name]
	if !ok {
		return nil, fmt.Errorf("machine: unknown function %s.%s.%s", ref.Package, ref.Module, ref.Name)
	}
	return fn, nil
}

// Execute runs the function ref identifies with the given initial locals
// (captured values, then self if recursive, then declared arguments, per
// spec.md §4.4) and returns its result.
//
// The outer for loop is the tail-call trampoline: a CallStatic/CallDynamic
// immediately followed by Return resolves its callee and, if that callee is
// itself a BitFunction, replaces the current frame in place and restarts the
// loop instead of recursing into a nested Go call (spec.md §4.8, §8's
// "unbounded tail recursion" testable property).
func (m *Machine) Execute(ref ir.FuncRef, locals []types.Value) (types.Value, error) {
	m.depth++
	defer func() { m.depth-- }()
	if m.MaxCallStackDepth > 0 && m.depth > m.MaxCallStackDepth {
		return nil, fmt.Errorf("machine: call stack depth exceeded %d", m.MaxCallStackDepth)
	}

	for {
		fn, err := m.lookup(ref)
		if err != nil {
			return nil, err
		}

		native, isNative := fn.(*bytecode.NativeFunction)
		if isNative {
			return native.Impl(locals)
		}

		bit := fn.(*bytecode.BitFunction)
		frame := make([]types.Value, bit.MaxLocals)
		copy(frame, locals)

		result, tail, err := m.runFrame(bit, frame)
		if err != nil {
			return nil, err
		}
		if tail == nil {
			return result, nil
		}
		ref = tail.ref
		locals = tail.locals
	}
}

// tailCall describes a call the current frame wants to hand off to the
// trampoline in Execute instead of performing itself.
type tailCall struct {
	ref    ir.FuncRef
	locals []types.Value
}

// runFrame executes one BitFunction body to completion. It returns either a
// final result (tail == nil) or a pending tail call for Execute's
// trampoline to continue.
func (m *Machine) runFrame(bit *bytecode.BitFunction, locals []types.Value) (types.Value, *tailCall, error) {
	var stack []types.Value
	push := func(v types.Value) { stack = append(stack, v) }
	pop := func() types.Value {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	code := bit.Body
	pc := 0
	for pc < len(code) {
		if m.MaxSteps > 0 {
			m.steps++
			if m.steps > m.MaxSteps {
				return nil, nil, fmt.Errorf("machine: thread cancelled: exceeded %d steps", m.MaxSteps)
			}
		}

		instr := code[pc]
		pc++

		switch op := instr.(type) {
		case bytecode.NoOp:
			// nothing

		case bytecode.Duplicate:
			push(stack[len(stack)-1])

		case bytecode.Pop:
			pop()

		case bytecode.Swap:
			n := len(stack)
			stack[n-1], stack[n-2] = stack[n-2], stack[n-1]

		case bytecode.LoadConstNull:
			push(types.Null)
		case bytecode.LoadConstTrue:
			push(types.True)
		case bytecode.LoadConstFalse:
			push(types.False)
		case bytecode.LoadConstFloat:
			push(types.Float(op.Value))
		case bytecode.LoadConstString:
			push(types.String(m.stringConst(bit, op.ID)))
		case bytecode.LoadConstFunction:
			push(&types.Function{Handle: types.Plain{Ref: m.funcRefConst(bit, op.ID)}})

		case bytecode.LoadValue:
			push(locals[op.Local])
		case bytecode.StoreValue:
			locals[op.Local] = pop()

		case bytecode.CallStatic:
			callee := m.funcRefConst(bit, op.ID)
			argc := arityOf(callee)
			args := takeArgs(&stack, argc)
			if atTail(code, pc) {
				return nil, &tailCall{ref: callee, locals: args}, nil
			}
			result, err := m.Execute(callee, args)
			if err != nil {
				return nil, nil, err
			}
			push(result)

		case bytecode.CallDynamic:
			args := takeArgs(&stack, int(op.Argc))
			fn, ok := pop().(*types.Function)
			if !ok {
				return nil, nil, fmt.Errorf("machine: call target is not a function")
			}
			callee, fullLocals := fn.Handle.With(args)
			if atTail(code, pc) {
				return nil, &tailCall{ref: callee, locals: fullLocals}, nil
			}
			result, err := m.Execute(callee, fullLocals)
			if err != nil {
				return nil, nil, err
			}
			push(result)

		case bytecode.BuildClosure:
			ref := m.funcRefConst(bit, op.ID)
			captured := takeArgs(&stack, int(op.Argc))
			push(&types.Function{Handle: types.Closure{Ref: ref, Captured: captured}})

		case bytecode.BuildRecursiveFunction:
			top, ok := pop().(*types.Function)
			if !ok {
				return nil, nil, fmt.Errorf("machine: BuildRecursiveFunction target is not a function")
			}
			push(&types.Function{Handle: types.Recursive{Inner: top.Handle}})

		case bytecode.Return:
			return pop(), nil, nil

		case bytecode.Branch:
			cond, ok := pop().(types.Bool)
			if !ok {
				return nil, nil, fmt.Errorf("machine: branch condition is not a Boolean")
			}
			if !bool(cond) {
				pc += int(op.RelOffset)
			}

		case bytecode.Jump:
			pc += int(op.RelOffset)

		case bytecode.Debug:
			fmt.Println(stack[len(stack)-1].String())

		case bytecode.Error:
			return nil, nil, fmt.Errorf("%s", op.Message)

		default:
			return nil, nil, fmt.Errorf("machine: unhandled instruction %T", instr)
		}
	}

	return nil, nil, fmt.Errorf("machine: function %s fell off the end of its body without returning", bit.FuncRef.Name)
}

// atTail reports whether the instruction at pc is a bare Return, meaning
// the call just decoded is in tail position and may be trampolined.
func atTail(code []bytecode.Instruction, pc int) bool {
	if pc >= len(code) {
		return false
	}
	_, ok := code[pc].(bytecode.Return)
	return ok
}

func takeArgs(stack *[]types.Value, n int) []types.Value {
	s := *stack
	args := make([]types.Value, n)
	copy(args, s[len(s)-n:])
	*stack = s[:len(s)-n]
	return args
}

func arityOf(ref ir.FuncRef) int {
	return len(ref.Shape.FuncArgs())
}

func (m *Machine) stringConst(bit *bytecode.BitFunction, id uint32) string {
	mod := m.moduleOf(bit)
	return mod.StringConstants[id]
}

func (m *Machine) funcRefConst(bit *bytecode.BitFunction, id uint32) ir.FuncRef {
	mod := m.moduleOf(bit)
	return mod.FunctionRefs[id]
}

func (m *Machine) moduleOf(bit *bytecode.BitFunction) *bytecode.Module {
	ref := bit.FuncRef
	return m.App.Packages[ref.Package].Modules[ref.Module]
}
