// Package loader discovers and compiles a source tree into a linked
// bytecode package (spec.md §6's "Module naming" convention): a file at
// `<root>/a/b/c.let` becomes module `a.b.c` of the package the caller names
// on the command line.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/DillonJettCallis/letlang/internal/diag"
	"github.com/DillonJettCallis/letlang/lang/ast"
	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/checker"
	"github.com/DillonJettCallis/letlang/lang/ir"
	"github.com/DillonJettCallis/letlang/lang/optimize"
	"github.com/DillonJettCallis/letlang/lang/parser"
)

const sourceExt = ".let"

// discover walks root for *.let files, returning each one's dotted module
// name alongside its path.
func discover(root string) (map[string]string, error) {
	modules := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != sourceExt {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = strings.TrimSuffix(rel, sourceExt)
		name := strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
		modules[name] = path
		return nil
	})
	return modules, err
}

// CheckedModules parses and type-checks every module under root, stopping
// before lowering. Each stage subcommand of the CLI builds on this.
func CheckedModules(root, pkgName string) ([]*ast.Module, error) {
	if pkgName == "Core" {
		return nil, fmt.Errorf("loader: package name %q is reserved", pkgName)
	}

	files, err := discover(root)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("loader: no %s files found under %s", sourceExt, root)
	}

	// files is a map; walk it in sorted name order so repeated runs over the
	// same tree always check modules in the same sequence and report the
	// first diagnostic error deterministically.
	names := maps.Keys(files)
	sort.Strings(names)

	mods := make([]*ast.Module, 0, len(files))
	for _, modName := range names {
		path := files[modName]
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loader: %w", err)
		}

		var errs diag.List
		decls, exported := parser.ParseFile(path, string(src), &errs)
		if err := errs.Err(); err != nil {
			return nil, err
		}

		mod := &ast.Module{Package: pkgName, Name: modName, Path: path, Decls: decls, Exported: exported}
		if err := checker.CheckModule(mod); err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}

	return mods, nil
}

// LowerModules lowers and optimizes every already-checked module.
func LowerModules(mods []*ast.Module, pkgName string) []*ir.Module {
	out := make([]*ir.Module, 0, len(mods))
	for _, mod := range mods {
		irMod := ir.Lower(mod, pkgName)
		irMod = optimize.Module(irMod)
		out = append(out, irMod)
	}
	return out
}

// EmitPackage emits every lowered module into one bytecode.Package.
func EmitPackage(pkgName string, irMods []*ir.Module) *bytecode.Package {
	modules := make(map[string]*bytecode.Module, len(irMods))
	for _, irMod := range irMods {
		modules[irMod.Module] = bytecode.EmitModule(irMod)
	}
	return &bytecode.Package{Name: pkgName, Modules: modules}
}

// LoadPackage parses, checks, lowers, optimizes and emits every module
// under root into one bytecode.Package named pkgName.
func LoadPackage(root, pkgName string) (*bytecode.Package, error) {
	mods, err := CheckedModules(root, pkgName)
	if err != nil {
		return nil, err
	}
	irMods := LowerModules(mods, pkgName)
	return EmitPackage(pkgName, irMods), nil
}

// MainRef resolves the FuncRef for `<mainModule>.main` inside pkg, the
// entry point spec.md §6's CLI surface invokes.
func MainRef(pkg *bytecode.Package, mainModule string) (ir.FuncRef, error) {
	mod, ok := pkg.Modules[mainModule]
	if !ok {
		return ir.FuncRef{}, fmt.Errorf("loader: unknown module %q in package %q", mainModule, pkg.Name)
	}
	fn, ok := mod.Functions["main"]
	if !ok {
		return ir.FuncRef{}, fmt.Errorf("loader: module %q has no main function", mainModule)
	}
	return fn.Ref(), nil
}
