// Package pool implements the process-wide, pinned worker pool: a
// singleton of N hardware-thread-pinned goroutines that accept exactly N
// jobs per dispatch and run them to completion under barrier
// synchronization. One parallel region runs at a time per process.
package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/RevCBH/parfor/internal/rmperr"
	"github.com/RevCBH/parfor/internal/rmplog"
	"github.com/RevCBH/parfor/internal/topology"
)

// Job is a nullary, side-effecting, thread-safe callable. Exactly one Job
// is sent per dispatch per worker.
type Job func()

// Pool is the process-wide singleton of pinned workers. Construct it via
// Instance; there is no teardown, since the pool lives for the process.
type Pool struct {
	numThreads int
	entryExit  *barrier
	jobChans   []chan Job
	sem        *semaphore.Weighted
	env        *topology.Env
}

var (
	once     sync.Once
	instance *Pool
)

// Instance returns the process-wide Pool, constructing and starting its
// workers on first call.
func Instance() *Pool {
	once.Do(func() {
		topology.SetFatalHandler(rmperr.Fatal)
		instance = newPool(topology.Instance())
	})
	return instance
}

func newPool(env *topology.Env) *Pool {
	n := env.MaxNumThreads
	p := &Pool{
		numThreads: n,
		entryExit:  newBarrier(n + 1),
		jobChans:   make([]chan Job, n),
		sem:        semaphore.NewWeighted(1),
		env:        env,
	}
	for tid := 0; tid < n; tid++ {
		p.jobChans[tid] = make(chan Job, 1)
		go p.workerLoop(tid)
	}
	return p
}

// NumThreads returns the number of workers in the pool, i.e. the exact
// job-slice length Exec requires.
func (p *Pool) NumThreads() int {
	return p.numThreads
}

// ExclusiveGuard represents exclusive ownership of the pool for the
// duration of one parallel region. Obtained from Acquire/AcquireContext,
// released with Release.
type ExclusiveGuard struct {
	p *Pool
}

// Acquire blocks until the caller holds the pool exclusively. No other
// parallel region may run concurrently while the guard is held.
func (p *Pool) Acquire() *ExclusiveGuard {
	g, err := p.AcquireContext(context.Background())
	if err != nil {
		// context.Background never errors; semaphore.Acquire can only
		// fail here if the context is done.
		panic(err)
	}
	return g
}

// AcquireContext is Acquire, but abortable via ctx.
func (p *Pool) AcquireContext(ctx context.Context) (*ExclusiveGuard, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return &ExclusiveGuard{p: p}, nil
}

// Release relinquishes exclusive ownership of the pool.
func (g *ExclusiveGuard) Release() {
	g.p.sem.Release(1)
}

// NumThreads returns the number of job slots Exec requires.
func (g *ExclusiveGuard) NumThreads() int {
	return g.p.numThreads
}

// Exec dispatches exactly NumThreads() jobs, one per worker, and blocks
// until every worker has finished its job. Calling Exec with any other
// number of jobs is a contract violation and aborts the process: a
// mis-sized dispatch would leave the barrier's arity wrong and hang every
// subsequent region.
//
// After Exec returns, all side effects of the jobs are visible to the
// caller; the exit barrier establishes the happens-before edge.
func (g *ExclusiveGuard) Exec(jobs []Job) {
	p := g.p
	if len(jobs) != p.numThreads {
		rmperr.Fatal("pool", rmperr.NewViolation("pool.Exec",
			"expected %d jobs, got %d", p.numThreads, len(jobs)))
		return
	}

	p.entryExit.Wait() // release workers into the dispatch
	for tid, job := range jobs {
		p.jobChans[tid] <- job
	}
	p.entryExit.Wait() // block until every worker has finished
}

func (p *Pool) workerLoop(tid int) {
	runtime.LockOSThread()
	name := fmt.Sprintf("RMP_PAR_THREAD_%d", tid)

	if err := p.env.SetAffinity(tid); err != nil {
		rmplog.Default().Warn("failed to pin worker to hwthread, continuing unpinned",
			"worker", name, "tid", tid, "error", err)
	}

	for {
		p.entryExit.Wait()
		job := <-p.jobChans[tid]
		runJob(name, job)
		p.entryExit.Wait()
	}
}

// runJob invokes job, turning any recovered panic into a fatal process
// termination. A killed worker can never re-enter the barriers, so any
// policy short of process death risks permanently deadlocking every
// region dispatched after it.
func runJob(workerName string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			rmperr.Fatal(workerName, fmt.Errorf("panic in pool worker: %v", r))
		}
	}()
	job()
}
