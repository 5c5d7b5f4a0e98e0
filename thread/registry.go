package thread

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Registry owns the fixed set of long-lived roles of a process: the control
// role (the goroutine that calls BindControl) plus any task-queue and poll
// roles it creates. Every role goroutine is locked to its own OS thread.
type Registry struct {
	mu    sync.Mutex
	roles atomic.Pointer[[]runner]

	stopping   atomic.Bool
	controlTID atomic.Int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// BindControl makes the calling goroutine the control role. The goroutine is
// locked to its OS thread for the rest of its life.
func (r *Registry) BindControl() {
	runtime.LockOSThread()
	r.controlTID.Store(currentThreadID())
}

// IsControl reports whether the caller runs on the control role. It is always
// true when no control role was bound or thread ids are unavailable.
func (r *Registry) IsControl() bool {
	tid := r.controlTID.Load()
	return tid == 0 || tid == currentThreadID()
}

// ExpectControl panics unless called from the control role.
// A violation is a programming error.
func (r *Registry) ExpectControl() {
	if !r.IsControl() {
		panic(ErrNotControl)
	}
}

// NewTaskQueue creates and starts a task-queue role.
func (r *Registry) NewTaskQueue(name string) *TaskQueue {
	r.ExpectControl()
	q := newTaskQueue(name)
	r.start(q)
	return q
}

// NewPoller creates and starts a poll role.
func (r *Registry) NewPoller(name string, interval time.Duration) *Poller {
	r.ExpectControl()
	p := newPoller(name, interval)
	r.start(p)
	return p
}

func (r *Registry) start(ru runner) {
	r.mu.Lock()
	var next []runner
	if cur := r.roles.Load(); cur != nil {
		next = append(next, *cur...)
	}
	next = append(next, ru)
	r.roles.Store(&next)
	r.mu.Unlock()

	// A role created after StopAll exits straight away.
	if r.stopping.Load() {
		ru.base().requestStop()
	}

	go r.run(ru)
}

func (r *Registry) run(ru runner) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	b := ru.base()
	defer close(b.done)

	logger.Debug("role started", "role", b.name, "kind", b.kind.String())
	for b.running() {
		ru.runOnce()
	}
	logger.Debug("role exited", "role", b.name)
}

// StopAll asks every role to stop after its current unit of work. It is
// idempotent, never blocks and does not allocate, so it may be called from a
// signal handling goroutine.
func (r *Registry) StopAll() {
	r.stopping.Store(true)

	cur := r.roles.Load()
	if cur == nil {
		return
	}
	for _, ru := range *cur {
		ru.base().requestStop()
	}
}

// Stopping reports whether StopAll has been called.
func (r *Registry) Stopping() bool {
	return r.stopping.Load()
}

// JoinAll blocks until every role loop has exited. It must be called from the
// control role after StopAll; before StopAll it returns ErrNotStopped without
// waiting. Later calls return immediately.
func (r *Registry) JoinAll() error {
	r.ExpectControl()

	if !r.stopping.Load() {
		return ErrNotStopped
	}

	cur := r.roles.Load()
	if cur == nil {
		return nil
	}
	for _, ru := range *cur {
		b := ru.base()
		<-b.done
		b.state.Store(int32(StateJoined))
	}
	return nil
}

// Roles returns a snapshot of all registered roles.
func (r *Registry) Roles() []RoleInfo {
	cur := r.roles.Load()
	if cur == nil {
		return nil
	}
	infos := make([]RoleInfo, 0, len(*cur))
	for _, ru := range *cur {
		infos = append(infos, ru.base().info())
	}
	return infos
}
