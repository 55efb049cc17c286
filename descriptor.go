// Package parfor is a barrier-synchronized parallel-for runtime: a
// process-wide pinned worker pool dispatches a loop body across a fixed
// set of hardware-thread-bound workers, with shared, shared-mutable,
// private, and reduction variables restored into caller scope once the
// region completes.
package parfor

import (
	schedule "github.com/RevCBH/parfor/internal/parfor"
	"github.com/RevCBH/parfor/internal/pool"
	"github.com/RevCBH/parfor/internal/rmperr"
)

// boundVar is the orchestration hook every variable handle (SharedVar,
// SharedMutVar, PrivateVar, ReductionVar) implements: init is called once
// per region with the worker count, before any job is dispatched; finalize
// is called once after every worker has returned from the body, in
// declaration order, before Run returns.
type boundVar interface {
	init(numThreads int)
}

type finalizer interface {
	finalize()
}

// Descriptor describes one parallel-for region: its iteration space, the
// block size for static block-cyclic scheduling, and the variables the
// body closes over.
type Descriptor[I any] struct {
	items     []I
	blockSize int
	vars      []boundVar
}

// For declares a region over an explicit slice of work items.
func For[I any](items []I) *Descriptor[I] {
	return &Descriptor[I]{items: items, blockSize: 1}
}

// Range declares a region over the half-open integer interval [0, n).
func Range(n int) *Descriptor[int] {
	items := make([]int, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, i)
	}
	return For(items)
}

// RangeInclusive declares a region over the closed integer interval [a, b].
func RangeInclusive(a, b int) *Descriptor[int] {
	if b < a {
		return For([]int{})
	}
	items := make([]int, 0, b-a+1)
	for i := a; i <= b; i++ {
		items = append(items, i)
	}
	return For(items)
}

// BlockSize sets the block-cyclic chunk size static scheduling hands to
// each worker before it wraps around to the next. The default is 1.
func (d *Descriptor[I]) BlockSize(n int) *Descriptor[I] {
	d.blockSize = n
	return d
}

// Bind registers variable handles (SharedVar, SharedMutVar, PrivateVar,
// ReductionVar) the body will close over. Binding order determines
// finalize order, which matters only when a custom clone/reduce function
// has an observable side effect.
func (d *Descriptor[I]) Bind(vars ...boundVar) *Descriptor[I] {
	d.vars = append(d.vars, vars...)
	return d
}

// Run acquires the process-wide pool exclusively, dispatches body across
// every worker with its statically-scheduled share of items, blocks until
// every worker has returned, restores every bound variable's result into
// caller scope, and releases the pool.
//
// body must be safe to invoke concurrently from NumThreads() different
// goroutines; it receives a Scope identifying which worker is calling it
// and, for each item in that worker's block-cyclic share, the item itself.
func (d *Descriptor[I]) Run(body func(scope Scope, item I)) {
	p := pool.Instance()
	guard := p.Acquire()
	defer guard.Release()

	numThreads := guard.NumThreads()
	if len(d.items) == 0 && numThreads == 0 {
		rmperr.Fatal("parfor", rmperr.NewViolation("Descriptor.Run", "pool has zero workers"))
		return
	}

	for _, v := range d.vars {
		v.init(numThreads)
	}

	seqs := schedule.Split(d.items, numThreads, d.blockSize)

	jobs := make([]pool.Job, numThreads)
	for tid := range jobs {
		tid := tid
		seq := seqs[tid]
		jobs[tid] = func() {
			scope := Scope{worker: tid}
			for _, item := range seq {
				body(scope, item)
			}
		}
	}

	guard.Exec(jobs)

	for _, v := range d.vars {
		if f, ok := v.(finalizer); ok {
			f.finalize()
		}
	}
}
