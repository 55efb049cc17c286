package parfor

// Scope identifies the worker a loop body closure is currently executing
// on. It is the explicit stand-in for the macro-captured thread index of
// the original system: every PrivateVar/ReductionVar/SharedMutVar accessor
// takes a Scope so a body can be an ordinary Go closure instead of relying
// on hidden per-thread globals.
type Scope struct {
	worker int
}

// Worker returns the zero-based index of the worker running this body
// invocation, in [0, NumThreads).
func (s Scope) Worker() int {
	return s.worker
}
