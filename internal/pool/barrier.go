package pool

import "sync"

// barrier is a cyclic rendezvous point: exactly n parties must call Wait
// before any of them proceeds. Once all n have arrived, every call
// returns and the barrier resets for its next use. The standard library
// has no reusable N-party barrier (sync.WaitGroup is one-shot fan-in, not
// a rendezvous), so this is the one piece of the pool built directly on
// sync.Mutex/sync.Cond rather than a pack dependency.
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	waiting int
	gen     uint64
}

func newBarrier(parties int) *barrier {
	b := &barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks the calling goroutine until parties goroutines have called
// Wait on the same generation, then releases all of them together.
func (b *barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.gen
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
}
