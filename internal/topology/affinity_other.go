//go:build !linux

package topology

import "errors"

// ErrAffinityUnsupported is returned by SetAffinity on platforms without a
// wired pinning syscall. Callers log and continue unpinned rather than
// treat it as fatal.
var ErrAffinityUnsupported = errors.New("topology: cpu affinity binding is not supported on this platform")

// SetAffinity is a no-op stub outside Linux; sched_setaffinity has no
// portable equivalent, so workers on other platforms run unpinned.
func (e *Env) SetAffinity(tid int) error {
	return ErrAffinityUnsupported
}
