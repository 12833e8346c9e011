package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/DillonJettCallis/letlang/internal/loader"
	"github.com/DillonJettCallis/letlang/lang/machine"
)

func (c *Cmd) Run(_ context.Context, stdio mainer.Stdio, args []string) error {
	root, pkg, mainModule := args[0], args[1], args[2]

	bcPkg, err := loader.LoadPackage(root, pkg)
	if err != nil {
		return err
	}
	mainRef, err := loader.MainRef(bcPkg, mainModule)
	if err != nil {
		return err
	}

	m := machine.Link(bcPkg, mainRef)
	m.MaxSteps = c.MaxSteps
	m.MaxCallStackDepth = c.MaxCallDepth

	result, err := m.RunMain()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdio.Stdout, result.String())
	return nil
}
