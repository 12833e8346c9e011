package maincmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/mna/mainer"

	"github.com/DillonJettCallis/letlang/internal/loader"
	"github.com/DillonJettCallis/letlang/lang/bytecode"
)

// Asm prints the pseudo-assembly of a compiled package (SPEC_FULL.md's
// supplemented dump-bytecode behavior, grounded in the original CLI's
// --dump-bytecode flag): one instruction per line, no label table, exactly
// the flat form the emitter produced, with modules and functions printed in
// name order.
func (c *Cmd) Asm(_ context.Context, stdio mainer.Stdio, args []string) error {
	root, pkg := args[0], args[1]
	mods, err := loader.CheckedModules(root, pkg)
	if err != nil {
		return err
	}
	irMods := loader.LowerModules(mods, pkg)
	bcPkg := loader.EmitPackage(pkg, irMods)

	modNames := make([]string, 0, len(bcPkg.Modules))
	for name := range bcPkg.Modules {
		modNames = append(modNames, name)
	}
	sort.Strings(modNames)
	for _, modName := range modNames {
		mod := bcPkg.Modules[modName]
		fnNames := make([]string, 0, len(mod.Functions))
		for name := range mod.Functions {
			fnNames = append(fnNames, name)
		}
		sort.Strings(fnNames)
		for _, fnName := range fnNames {
			fn := mod.Functions[fnName]
			bit, ok := fn.(*bytecode.BitFunction)
			if !ok {
				fmt.Fprintf(stdio.Stdout, "%s.%s.%s: <native>\n", pkg, modName, fnName)
				continue
			}
			fmt.Fprintf(stdio.Stdout, "%s.%s.%s (locals=%d):\n", pkg, modName, fnName, bit.MaxLocals)
			for i, instr := range bit.Body {
				fmt.Fprintf(stdio.Stdout, "  %4d  %s\n", i, asmLine(instr))
			}
		}
	}
	return nil
}

func asmLine(instr bytecode.Instruction) string {
	switch in := instr.(type) {
	case bytecode.LoadConstFloat:
		return fmt.Sprintf("LoadConstFloat %g", in.Value)
	case bytecode.LoadConstString:
		return fmt.Sprintf("LoadConstString #%d", in.ID)
	case bytecode.LoadConstFunction:
		return fmt.Sprintf("LoadConstFunction #%d", in.ID)
	case bytecode.LoadValue:
		return fmt.Sprintf("LoadValue %d", in.Local)
	case bytecode.StoreValue:
		return fmt.Sprintf("StoreValue %d", in.Local)
	case bytecode.CallStatic:
		return fmt.Sprintf("CallStatic #%d", in.ID)
	case bytecode.CallDynamic:
		return fmt.Sprintf("CallDynamic %d", in.Argc)
	case bytecode.BuildClosure:
		return fmt.Sprintf("BuildClosure %d #%d", in.Argc, in.ID)
	case bytecode.Branch:
		return fmt.Sprintf("Branch +%d", in.RelOffset)
	case bytecode.Jump:
		return fmt.Sprintf("Jump +%d", in.RelOffset)
	case bytecode.Error:
		return fmt.Sprintf("Error %q", in.Message)
	default:
		return fmt.Sprintf("%T", instr)
	}
}
