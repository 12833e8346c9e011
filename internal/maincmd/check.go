package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/DillonJettCallis/letlang/internal/loader"
)

func (c *Cmd) Check(_ context.Context, stdio mainer.Stdio, args []string) error {
	root, pkg := args[0], args[1]
	mods, err := loader.CheckedModules(root, pkg)
	if err != nil {
		return err
	}
	for _, mod := range mods {
		fmt.Fprintf(stdio.Stdout, "%s: ok (%d declarations)\n", mod.Name, len(mod.Decls))
	}
	return nil
}
