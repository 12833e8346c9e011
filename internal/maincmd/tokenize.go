package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/DillonJettCallis/letlang/internal/diag"
	"github.com/DillonJettCallis/letlang/lang/scanner"
)

func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var errs diag.List
	toks := scanner.ScanAll(file, string(src), &errs)
	for _, tv := range toks {
		fmt.Fprintf(stdio.Stdout, "%s: %s", tv.Pos.InFile(file), tv.Token)
		if tv.Lit != "" {
			fmt.Fprintf(stdio.Stdout, " %q", tv.Lit)
		}
		fmt.Fprintln(stdio.Stdout)
	}
	return errs.Err()
}
