// Package maincmd implements the letlangc command-line dispatcher, adapted
// from the teacher's reflection-based subcommand dispatch (each exported
// Cmd method becomes a lowercase subcommand name) and its mainer.Parser /
// mainer.Stdio / mainer.ExitCode wiring.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "letlangc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <root-dir> <package> <main-module>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <root-dir> <package> <main-module>
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and all-in-one tool for the letlang programming language.

The <command> can be one of:
       run                        Compile the package and run <main-module>'s
                                   main function.
       tokenize                   Print the token stream of one file.
       parse                      Print the parsed AST of one file.
       check                      Type-check a package and print diagnostics.
       lower                      Print the IR lowered (and optimized) from
                                   a package.
       emit                       Print the sizes of each module's emitted
                                   string, function and shape tables.
       asm                        Print the pseudo-assembly of a package's
                                   bytecode.

<root-dir> is a directory of *.let files; a file at <root-dir>/a/b/c.let
defines module a.b.c. <package> names the package those modules belong to
("Core" is reserved). tokenize and parse instead take a single file path in
place of <root-dir>.

Valid flag options are:
       -h --help                  Show this help and exit.
       -v --version                Print version and exit.
       --max-steps <n>             Abort after n executed instructions (run).
       --max-call-depth <n>        Abort after n nested non-tail calls (run).

More information on the letlang repository.
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	MaxSteps     int `flag:"max-steps"`
	MaxCallDepth int `flag:"max-call-depth"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string)      { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	switch cmdName {
	case "tokenize", "parse":
		if len(c.args[1:]) != 1 {
			return fmt.Errorf("%s: exactly one file must be provided", cmdName)
		}
	case "run", "check", "lower", "emit", "asm":
		if len(c.args[1:]) != 3 {
			return fmt.Errorf("%s: expected <root-dir> <package> <main-module>", cmdName)
		}
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false, // leaving this here for now in case some flags can use this
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds finds every method of v matching the (ctx, stdio, []string)
// error shape and indexes it by lowercased method name.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
