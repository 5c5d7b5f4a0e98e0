package thread

import "sync/atomic"

// Gate is a single-slot in-flight flag for task types that must not run
// concurrently with themselves. Scheduling succeeds only for the caller that
// wins TryAcquire; the running task must Release on every exit path.
type Gate struct {
	held atomic.Bool
}

// TryAcquire claims the gate. It returns false if it is already held.
func (g *Gate) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

// Release frees the gate.
func (g *Gate) Release() {
	g.held.Store(false)
}

// Held reports whether a task currently owns the gate.
func (g *Gate) Held() bool {
	return g.held.Load()
}
