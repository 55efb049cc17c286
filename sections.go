package parfor

import (
	"github.com/RevCBH/parfor/internal/pool"
	"github.com/RevCBH/parfor/internal/rmperr"
)

// Sections runs each fn concurrently on its own worker: one task per
// goroutine, rather than one data item per worker, making it the
// task-parallel counterpart to Descriptor.Run's data-parallel dispatch.
// Workers beyond len(fns) run a no-op for this region, since the pool
// always dispatches exactly NumThreads jobs regardless of how much actual
// work is available. len(fns) must not exceed the pool's worker count.
func Sections(fns ...func()) {
	p := pool.Instance()
	guard := p.Acquire()
	defer guard.Release()

	numThreads := guard.NumThreads()
	if len(fns) > numThreads {
		rmperr.Fatal("parfor", rmperr.NewViolation("Sections",
			"%d sections requested but pool has only %d workers", len(fns), numThreads))
		return
	}

	jobs := make([]pool.Job, numThreads)
	for tid := range jobs {
		if tid < len(fns) {
			jobs[tid] = fns[tid]
		} else {
			jobs[tid] = func() {}
		}
	}
	guard.Exec(jobs)
}
