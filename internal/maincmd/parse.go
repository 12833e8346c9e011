package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/DillonJettCallis/letlang/internal/diag"
	"github.com/DillonJettCallis/letlang/lang/ast"
	"github.com/DillonJettCallis/letlang/lang/parser"
)

func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, args []string) error {
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var errs diag.List
	decls, exported := parser.ParseFile(file, string(src), &errs)
	if err := errs.Err(); err != nil {
		return err
	}

	for _, decl := range decls {
		prefix := ""
		if exported[decl.ID] {
			prefix = "export "
		}
		fmt.Fprintln(stdio.Stdout, prefix+dumpDecl(decl))
	}
	return nil
}

// dumpDecl renders one top-level declaration as a single-line, fully
// parenthesized expression tree — a diagnostic form, not a re-parseable one.
func dumpDecl(fn *ast.FunctionDeclaration) string {
	args := ""
	for i, p := range fn.Args {
		if i > 0 {
			args += ", "
		}
		args += fmt.Sprintf("%s: %s", p.ID, p.Shape)
	}
	return fmt.Sprintf("fun %s(%s): %s = %s", fn.ID, args, fn.Result, dumpNode(fn.Body))
}

func dumpNode(n ast.Node) string {
	switch e := n.(type) {
	case *ast.NoOp:
		return "()"
	case *ast.NumberLiteral:
		return fmt.Sprintf("%g", e.Value)
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", e.Value)
	case *ast.BooleanLiteral:
		if e.Value {
			return "true"
		}
		return "false"
	case *ast.Variable:
		return e.ID
	case *ast.UnaryOp:
		return fmt.Sprintf("(%s %s)", e.Op, dumpNode(e.Right))
	case *ast.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", dumpNode(e.Left), e.Op, dumpNode(e.Right))
	case *ast.Call:
		s := dumpNode(e.Func) + "("
		for i, a := range e.Args {
			if i > 0 {
				s += ", "
			}
			s += dumpNode(a)
		}
		return s + ")"
	case *ast.If:
		return fmt.Sprintf("if (%s) %s else %s", dumpNode(e.Condition), dumpNode(e.Then), dumpNode(e.Else))
	case *ast.Block:
		s := "{ "
		for i, stmt := range e.Body {
			if i > 0 {
				s += "; "
			}
			s += dumpNode(stmt)
		}
		return s + " }"
	case *ast.Assignment:
		return fmt.Sprintf("let %s = %s", e.ID, dumpNode(e.Body))
	case *ast.FunctionDeclaration:
		if e.ID == "" {
			return "{ lambda }"
		}
		return dumpDecl(e)
	default:
		return fmt.Sprintf("<%T>", n)
	}
}
