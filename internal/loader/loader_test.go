package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DillonJettCallis/letlang/internal/loader"
	"github.com/DillonJettCallis/letlang/lang/machine"
	"github.com/DillonJettCallis/letlang/lang/types"
)

// writeModule drops one file at <dir>/main.let so it becomes module "main"
// of the package under test (spec.md §6's naming convention).
func writeModule(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.let"), []byte(src), 0o644))
	return dir
}

func runMain(t *testing.T, src string) types.Value {
	t.Helper()
	root := writeModule(t, src)

	pkg, err := loader.LoadPackage(root, "Test")
	require.NoError(t, err)

	mainRef, err := loader.MainRef(pkg, "main")
	require.NoError(t, err)

	m := machine.Link(pkg, mainRef)
	result, err := m.RunMain()
	require.NoError(t, err)
	return result
}

// TestArithmetic is spec.md §8 scenario 1.
func TestArithmetic(t *testing.T) {
	v := runMain(t, `fun main(): Float = 2 + 3 * 4`)
	assert.Equal(t, types.Float(14), v)
}

// TestBooleanBranch is spec.md §8 scenario 2.
func TestBooleanBranch(t *testing.T) {
	v := runMain(t, `fun main(): Float = if (1 < 2) { 10 } else { 20 }`)
	assert.Equal(t, types.Float(10), v)
}

// TestRecursionAndTailCall is spec.md §8 scenario 3: tail-recursive descent
// deep enough that a non-trampolined VM would overflow the host stack.
func TestRecursionAndTailCall(t *testing.T) {
	v := runMain(t, `
fun loop(n: Float): Float = if (n == 0) { 0 } else { loop(n - 1) }
fun main(): Float = loop(100000)
`)
	assert.Equal(t, types.Float(0), v)
}

// TestClosure is spec.md §8 scenario 4.
func TestClosure(t *testing.T) {
	v := runMain(t, `
fun make(x: Float): { Float -> Float } = { y => x + y }
fun main(): Float = make(10)(5)
`)
	assert.Equal(t, types.Float(15), v)
}

// TestListFold is spec.md §8 scenario 5. The surface grammar has no
// module-qualified call syntax (Core.List.* is reached only by a bare
// CallStatic naming package/module/name directly), so this scenario is
// exercised at the bytecode/machine level in lang/machine, not here.

// TestRedeclarationErrorsAtCheck is spec.md §8 scenario 6.
func TestRedeclarationErrorsAtCheck(t *testing.T) {
	root := writeModule(t, `fun main(): Float = { let x = 1; let x = 2; x }`)
	_, err := loader.LoadPackage(root, "Test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")
}
