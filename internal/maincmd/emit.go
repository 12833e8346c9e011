package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/DillonJettCallis/letlang/internal/loader"
)

func (c *Cmd) Emit(_ context.Context, stdio mainer.Stdio, args []string) error {
	root, pkg := args[0], args[1]
	mods, err := loader.CheckedModules(root, pkg)
	if err != nil {
		return err
	}
	irMods := loader.LowerModules(mods, pkg)
	bcPkg := loader.EmitPackage(pkg, irMods)

	for modName, mod := range bcPkg.Modules {
		fmt.Fprintf(stdio.Stdout, "module %s.%s: %d string consts, %d func refs, %d shape refs\n",
			pkg, modName, len(mod.StringConstants), len(mod.FunctionRefs), len(mod.ShapeRefs))
	}
	return nil
}
