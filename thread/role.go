package thread

import (
	"sync/atomic"
)

// State is the lifecycle state of a role.
type State int32

const (
	StateRunning State = iota
	StateStopRequested
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopRequested:
		return "stop_requested"
	case StateJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// Kind tags the behaviour of a role.
type Kind uint8

const (
	KindTaskQueue Kind = iota + 1
	KindPoller
)

func (k Kind) String() string {
	switch k {
	case KindTaskQueue:
		return "task_queue"
	case KindPoller:
		return "poller"
	default:
		return "unknown"
	}
}

// RoleInfo describes a registered role.
type RoleInfo struct {
	Name  string
	Kind  Kind
	State State
}

// runner is the capability every role variant offers to the registry: one
// iteration of its loop. runOnce must return promptly after the role's wake
// channel fires so the registry can observe a stop request.
type runner interface {
	base() *role
	runOnce()
}

// role holds the state shared by all variants.
type role struct {
	name  string
	kind  Kind
	state atomic.Int32
	wake  chan struct{}
	done  chan struct{}
}

func newRole(name string, kind Kind) role {
	return role{
		name: name,
		kind: kind,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (r *role) base() *role {
	return r
}

// Name returns the role name.
func (r *role) Name() string {
	return r.name
}

// State returns the current lifecycle state.
func (r *role) State() State {
	return State(r.state.Load())
}

// Done is closed once the role loop has exited.
func (r *role) Done() <-chan struct{} {
	return r.done
}

func (r *role) running() bool {
	return State(r.state.Load()) == StateRunning
}

// requestStop marks the role as stopping and wakes it. It does not block or allocate.
func (r *role) requestStop() {
	r.state.CompareAndSwap(int32(StateRunning), int32(StateStopRequested))
	r.notify()
}

func (r *role) notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *role) info() RoleInfo {
	return RoleInfo{Name: r.name, Kind: r.kind, State: r.State()}
}
