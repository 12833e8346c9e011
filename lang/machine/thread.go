package machine

import (
	"github.com/DillonJettCallis/letlang/lang/bytecode"
	"github.com/DillonJettCallis/letlang/lang/types"
)

// Thread is a named, resource-limited run of one Application, mirroring the
// teacher's Thread.MaxSteps / Thread.MaxCallStackDepth fields (spec.md §7's
// "fatal errors" discussion: exceeding either limit aborts the run with an
// error rather than hanging or overflowing the Go stack).
type Thread struct {
	Name string
	App  *bytecode.Application

	MaxSteps          int
	MaxCallStackDepth int
}

// NewThread constructs an unlimited Thread over app.
func NewThread(app *bytecode.Application) *Thread {
	return &Thread{App: app}
}

// RunMain invokes the Application's designated entry point with no
// arguments.
func (th *Thread) RunMain() (types.Value, error) {
	m := &Machine{App: th.App, MaxSteps: th.MaxSteps, MaxCallStackDepth: th.MaxCallStackDepth}
	return m.RunMain()
}
