// Package rmperr centralizes the fatal and contract-violation error paths
// shared by the pool and the orchestrator. A parallel region can either
// complete in full or bring the process down; there is no partial-failure
// path, so the handful of places that detect an unrecoverable condition all
// funnel through here.
package rmperr

import (
	"fmt"
	"os"

	"github.com/RevCBH/parfor/internal/rmplog"
)

// Violation describes a broken invariant detected by the pool or a shared
// cell (e.g. Exec called with the wrong job count, or Unwrap on a cell with
// outstanding clones). It is always fatal once it reaches Fatal.
type Violation struct {
	Component string
	Message   string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Component, v.Message)
}

// NewViolation builds a Violation for the given component.
func NewViolation(component, format string, args ...any) *Violation {
	return &Violation{Component: component, Message: fmt.Sprintf(format, args...)}
}

// exitFunc is swapped out in tests so Fatal's side effects are observable
// without actually killing the test binary.
var exitFunc = os.Exit

// WithExitFunc temporarily replaces the process-termination function Fatal
// calls, returning a restore closure. Intended for tests elsewhere in the
// module that need to exercise a fatal path without killing the test
// binary.
func WithExitFunc(f func(int)) (restore func()) {
	prev := exitFunc
	exitFunc = f
	return func() { exitFunc = prev }
}

// Fatal logs err at error level and terminates the process with a nonzero
// status. It is the single chokepoint spec'd for "fatal at start" and
// "fatal at runtime" conditions: a worker that can never re-enter the
// barriers would otherwise deadlock every later parallel region, so death
// is strictly safer than trying to continue.
func Fatal(component string, err error) {
	rmplog.Default().Error("fatal error, terminating process", "component", component, "error", err)
	exitFunc(1)
}

// FatalMsg is a convenience wrapper for Fatal when there is no underlying
// error value, only a diagnostic message.
func FatalMsg(component, format string, args ...any) {
	Fatal(component, fmt.Errorf(format, args...))
}
