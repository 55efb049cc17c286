package parfor

import "github.com/RevCBH/parfor/internal/sharedcell"

// SharedVar gives every worker its own read-only clone of a seed value.
// Unlike PrivateVar it exists purely to avoid workers aliasing the same
// backing storage for values a body never intends to mutate; there is no
// Set, since mutation of a "shared" variable is not part of its contract.
type SharedVar[T any] struct {
	seed   T
	clone  func(T) T
	locals []T
}

// NewShared declares a shared read-only variable. clone is invoked once
// per worker, mirroring NewPrivate; pass nil for value types that are
// already independent on assignment.
func NewShared[T any](seed T, clone func(T) T) *SharedVar[T] {
	return &SharedVar[T]{seed: seed, clone: clone}
}

func (s *SharedVar[T]) init(numThreads int) {
	s.locals = make([]T, numThreads)
	for i := range s.locals {
		if s.clone != nil {
			s.locals[i] = s.clone(s.seed)
		} else {
			s.locals[i] = s.seed
		}
	}
}

// Get returns the calling worker's read-only clone.
func (s *SharedVar[T]) Get(scope Scope) T {
	return s.locals[scope.worker]
}

func (s *SharedVar[T]) finalize() {
	s.locals = nil
}

// SharedMutVar gives every worker a handle to the same RW-locked cell, so
// writes by one worker are visible to the others through Read/Write's
// locking rather than through any ad hoc synchronization in the body.
// Result() recovers the final value into caller scope once the region has
// retired every worker's handle.
type SharedMutVar[T any] struct {
	cell   *sharedcell.Cell[T]
	clones []*sharedcell.Cell[T]
}

// NewSharedMut declares a shared mutable variable seeded at v. v's binding
// is consumed, matching sharedcell.New's ownership-transfer contract.
func NewSharedMut[T any](v T) *SharedMutVar[T] {
	return &SharedMutVar[T]{cell: sharedcell.New(v)}
}

func (s *SharedMutVar[T]) init(numThreads int) {
	s.clones = make([]*sharedcell.Cell[T], numThreads)
	for i := range s.clones {
		s.clones[i] = s.cell.Clone()
	}
}

// Read acquires the calling worker's read lock on the shared cell.
func (s *SharedMutVar[T]) Read(scope Scope) sharedcell.ReadGuard[T] {
	return s.clones[scope.worker].Read()
}

// Write acquires the calling worker's write lock on the shared cell.
func (s *SharedMutVar[T]) Write(scope Scope) sharedcell.WriteGuard[T] {
	return s.clones[scope.worker].Write()
}

func (s *SharedMutVar[T]) finalize() {
	for _, c := range s.clones {
		c.Release()
	}
	s.clones = nil
}

// Result recovers the final value once every worker's handle has been
// retired. Valid only after the region that declared this variable has
// returned from Run.
func (s *SharedMutVar[T]) Result() T {
	return s.cell.Unwrap()
}
