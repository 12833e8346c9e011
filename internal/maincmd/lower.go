package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/DillonJettCallis/letlang/internal/loader"
	"github.com/DillonJettCallis/letlang/lang/ir"
)

func (c *Cmd) Lower(_ context.Context, stdio mainer.Stdio, args []string) error {
	root, pkg := args[0], args[1]
	mods, err := loader.CheckedModules(root, pkg)
	if err != nil {
		return err
	}
	for _, irMod := range loader.LowerModules(mods, pkg) {
		for _, fn := range irMod.Functions {
			fmt.Fprintf(stdio.Stdout, "function %s.%s.%s(%s):\n", fn.Ref.Package, fn.Ref.Module, fn.Ref.Name, localsOf(fn.Locals))
			dumpOps(stdio, fn.Body, 1)
		}
	}
	return nil
}

func localsOf(locals []ir.Local) string {
	s := ""
	for i, l := range locals {
		if i > 0 {
			s += ", "
		}
		s += l.Name
	}
	return s
}

func dumpOps(stdio mainer.Stdio, ops []ir.Op, indent int) {
	pad := ""
	for i := 0; i < indent; i++ {
		pad += "  "
	}
	for _, op := range ops {
		switch o := op.(type) {
		case ir.Branch:
			fmt.Fprintf(stdio.Stdout, "%sbranch:\n", pad)
			dumpOps(stdio, o.Then, indent+1)
			fmt.Fprintf(stdio.Stdout, "%selse:\n", pad)
			dumpOps(stdio, o.Else, indent+1)
		default:
			fmt.Fprintf(stdio.Stdout, "%s%s\n", pad, opName(op))
		}
	}
}

func opName(op ir.Op) string {
	switch o := op.(type) {
	case ir.LoadValue:
		return "LoadValue " + o.Name
	case ir.StoreValue:
		return "StoreValue " + o.Name
	case ir.FreeLocal:
		return "FreeLocal " + o.Name
	case ir.LoadConstFloat:
		return fmt.Sprintf("LoadConstFloat %g", o.Value)
	case ir.LoadConstString:
		return fmt.Sprintf("LoadConstString %q", o.Value)
	case ir.LoadConstFunction:
		return "LoadConstFunction " + o.Ref.Name
	case ir.CallStatic:
		return "CallStatic " + o.Ref.Name
	case ir.CallDynamic:
		return fmt.Sprintf("CallDynamic %d", o.Argc)
	case ir.BuildClosure:
		return fmt.Sprintf("BuildClosure %d %s", o.Argc, o.Ref.Name)
	default:
		return fmt.Sprintf("%T", op)
	}
}
