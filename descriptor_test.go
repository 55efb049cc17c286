package parfor

import (
	"sync"
	"testing"
	"time"

	"github.com/RevCBH/parfor/internal/pool"
)

func numThreads() int {
	return pool.Instance().NumThreads()
}

func TestRun_ReductionSumsEveryIteration(t *testing.T) {
	const n = 997
	sum := NewReduction(0, Sum[int]())

	Range(n).Bind(sum).Run(func(scope Scope, i int) {
		sum.Combine(scope, i)
	})

	want := n * (n - 1) / 2
	if got := sum.Result(); got != want {
		t.Errorf("expected %d, got %d", want, got)
	}
}

func TestRun_ReductionSeedsFromInitialExactlyOnce(t *testing.T) {
	const n = 10
	sum := NewReduction(5, Sum[int]())

	Range(n).Bind(sum).Run(func(scope Scope, i int) {
		sum.Combine(scope, i)
	})

	want := 5 + n*(n-1)/2
	if got := sum.Result(); got != want {
		t.Errorf("expected %d, got %d (initial value must be folded in exactly once)", want, got)
	}
}

func TestRun_ProductReductionComputesFactorial(t *testing.T) {
	product := NewReduction(1, Product[int]())

	RangeInclusive(1, 10).Bind(product).Run(func(scope Scope, i int) {
		product.Combine(scope, i)
	})

	const want = 3628800 // 10!
	if got := product.Result(); got != want {
		t.Errorf("expected %d, got %d", want, got)
	}
}

func TestRun_SharedMutCollectionUnderCriticalSection(t *testing.T) {
	collected := NewSharedMut([]int{})

	For([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}).Bind(collected).Run(func(scope Scope, i int) {
		g := collected.Write(scope)
		defer g.Unlock()
		Critical("append-collected", func() {
			*g.Value() = append(*g.Value(), i)
		})
	})

	result := collected.Result()
	if len(result) != 10 {
		t.Fatalf("expected 10 elements, got %d: %v", len(result), result)
	}
	sum := 0
	for _, v := range result {
		sum += v
	}
	if sum != 55 {
		t.Errorf("expected elements to sum to 55, got %d", sum)
	}
}

func TestRun_SharedVarIsReadOnlyAcrossWorkers(t *testing.T) {
	matrix := NewShared([]int{1, 2, 3, 4}, func(v []int) []int {
		cp := make([]int, len(v))
		copy(cp, v)
		return cp
	})

	results := NewSharedMut(make([]int, 4))
	For([]int{0, 1, 2, 3}).Bind(matrix, results).Run(func(scope Scope, idx int) {
		row := matrix.Get(scope)
		g := results.Write(scope)
		defer g.Unlock()
		(*g.Value())[idx] = row[idx] * 2
	})

	want := []int{2, 4, 6, 8}
	got := results.Result()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestRun_PrivateVarIsIndependentPerWorkerAndDiscarded(t *testing.T) {
	counter := NewReduction(0, Sum[int]())
	scratch := NewPrivate(0, nil)
	perWorker := make([]int, numThreads())

	Range(numThreads() * 3).Bind(counter, scratch).Run(func(scope Scope, i int) {
		scratch.Set(scope, scratch.Get(scope)+1)
		perWorker[scope.Worker()]++
		if got := scratch.Get(scope); got != perWorker[scope.Worker()] {
			t.Errorf("worker %d: private copy is %d, expected its own count %d", scope.Worker(), got, perWorker[scope.Worker()])
		}
		counter.Combine(scope, 1)
	})

	if got := counter.Result(); got != numThreads()*3 {
		t.Errorf("expected %d, got %d", numThreads()*3, got)
	}
	if scratch.locals != nil {
		t.Error("expected per-worker private copies to be discarded after Run")
	}
}

func TestSections_RunsEachFunctionOnADistinctWorker(t *testing.T) {
	n := numThreads()
	if n < 1 {
		t.Fatal("expected at least one worker")
	}

	// Every section waits until all n have started; that rendezvous can
	// only complete when each one is running on its own worker.
	var mu sync.Mutex
	var arrived sync.WaitGroup
	arrived.Add(n)
	allArrived := make(chan struct{})
	go func() {
		arrived.Wait()
		close(allArrived)
	}()

	ran := make([]bool, n)
	fns := make([]func(), n)
	for i := 0; i < n; i++ {
		i := i
		fns[i] = func() {
			arrived.Done()
			select {
			case <-allArrived:
			case <-time.After(time.Second):
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ran[i] = true
		}
	}

	Sections(fns...)

	for i, v := range ran {
		if !v {
			t.Errorf("section %d did not run alongside the other sections", i)
		}
	}
}
