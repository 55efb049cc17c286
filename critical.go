package parfor

import "sync"

var (
	criticalsMu sync.Mutex
	criticals   = map[string]*sync.Mutex{}
)

func criticalLock(name string) *sync.Mutex {
	criticalsMu.Lock()
	defer criticalsMu.Unlock()
	m, ok := criticals[name]
	if !ok {
		m = &sync.Mutex{}
		criticals[name] = m
	}
	return m
}

// Critical runs fn under the named critical section's process-wide lock.
// Critical calls sharing a name are mutually exclusive across every
// worker; calls under different names never contend each other. A body
// that also touches a SharedMutVar should acquire the SharedMutVar's
// guard first and enter Critical second, never the reverse, to keep lock
// order consistent across workers and avoid deadlock.
func Critical(name string, fn func()) {
	m := criticalLock(name)
	m.Lock()
	defer m.Unlock()
	fn()
}
