// Package sharedcell implements the ownership-shared, reader/writer-locked
// container the orchestrator uses to pass shared-mutable state into worker
// closures and reclaim it once a parallel region completes.
package sharedcell

import (
	"sync"
	"sync/atomic"

	"github.com/RevCBH/parfor/internal/rmperr"
)

// core is the state shared by a Cell and all of its clones.
type core[T any] struct {
	turnstile sync.Mutex // held by a pending writer to block new readers
	mu        sync.RWMutex
	refs      int32
	value     T
}

// Cell is an ownership-shared, lock-protected holder of a T. Cloning a
// Cell produces another handle to the same inner value; it never copies T.
type Cell[T any] struct {
	c *core[T]
}

// New wraps v by ownership transfer. The caller's binding is consumed: the
// returned Cell is the sole reference.
func New[T any](v T) *Cell[T] {
	return &Cell[T]{c: &core[T]{value: v, refs: 1}}
}

// Clone returns another reference to the same inner value and increments
// the outstanding-reference count. It does not copy T.
func (c *Cell[T]) Clone() *Cell[T] {
	atomic.AddInt32(&c.c.refs, 1)
	return &Cell[T]{c: c.c}
}

// Release drops this handle's reference without extracting the value,
// mirroring Clone. Used when a handle was created only to satisfy an
// ownership-accounting invariant (e.g. a per-worker clone that the worker
// body never actually reads) and must be retired before the final Unwrap.
func (c *Cell[T]) Release() {
	atomic.AddInt32(&c.c.refs, -1)
}

// ReadGuard grants read-only access to the cell's value while held.
type ReadGuard[T any] struct {
	c *core[T]
}

// Value returns the guarded value.
func (g ReadGuard[T]) Value() T {
	return g.c.value
}

// Unlock releases the read guard.
func (g ReadGuard[T]) Unlock() {
	g.c.mu.RUnlock()
}

// WriteGuard grants exclusive read-write access to the cell's value while
// held.
type WriteGuard[T any] struct {
	c *core[T]
}

// Value returns a pointer to the guarded value, writable in place.
func (g WriteGuard[T]) Value() *T {
	return &g.c.value
}

// Unlock releases the write guard.
func (g WriteGuard[T]) Unlock() {
	g.c.mu.Unlock()
}

// Read blocks while a writer holds the cell, then admits any number of
// concurrent readers. A pending writer blocks new readers from cutting in
// line, per the writer-preference policy spec'd for critical-section
// responsiveness.
func (c *Cell[T]) Read() ReadGuard[T] {
	c.c.turnstile.Lock()
	c.c.turnstile.Unlock()
	c.c.mu.RLock()
	return ReadGuard[T]{c: c.c}
}

// Write blocks while any reader or writer holds the cell, then admits
// exactly one writer.
func (c *Cell[T]) Write() WriteGuard[T] {
	c.c.turnstile.Lock()
	c.c.mu.Lock()
	c.c.turnstile.Unlock()
	return WriteGuard[T]{c: c.c}
}

// Unwrap consumes the cell and returns the inner value. It succeeds only
// when this is the last outstanding reference and no guard is currently
// live; otherwise it is a contract violation (the orchestrator leaked a
// clone or a guard past the region) and it aborts via rmperr.Fatal rather
// than silently leaking the value.
func (c *Cell[T]) Unwrap() T {
	if n := atomic.LoadInt32(&c.c.refs); n != 1 {
		rmperr.Fatal("sharedcell", rmperr.NewViolation("sharedcell.Unwrap",
			"cannot unwrap: %d references outstanding, expected 1", n))
	}
	if !c.c.mu.TryLock() {
		rmperr.Fatal("sharedcell", rmperr.NewViolation("sharedcell.Unwrap",
			"cannot unwrap: a read or write guard is still live"))
	}
	defer c.c.mu.Unlock()
	return c.c.value
}
