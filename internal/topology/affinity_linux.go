//go:build linux

package topology

import "golang.org/x/sys/unix"

// SetAffinity binds the calling OS thread to HwThreadMap[tid %
// AvailableHwThreads]. The caller must already be locked to its OS thread
// (runtime.LockOSThread) or the binding applies to whichever thread the
// goroutine happens to be scheduled on next.
func (e *Env) SetAffinity(tid int) error {
	cpuID := e.Map[tid%e.AvailableHwThreads]

	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(0, &set)
}
