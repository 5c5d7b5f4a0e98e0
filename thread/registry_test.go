package thread

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	reg.BindControl()
	t.Cleanup(func() {
		reg.StopAll()
		_ = reg.JoinAll()
		runtime.UnlockOSThread()
	})
	return reg
}

func TestTaskQueue_RunsTasksInOrder(t *testing.T) {
	reg := newTestRegistry(t)
	q := reg.NewTaskQueue("worker")

	var mu sync.Mutex
	var order []int
	for i := 0; i < 20; i++ {
		i := i
		require.True(t, q.AddTask(TaskFunc(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})))
	}

	assert.Eventually(t, func() bool { return q.Executed() == 20 }, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestTaskQueue_TaskRunsToCompletionAcrossStop(t *testing.T) {
	reg := newTestRegistry(t)
	q := reg.NewTaskQueue("worker")

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	q.AddTask(TaskFunc(func() {
		close(started)
		<-release
		finished.Store(true)
	}))

	<-started
	reg.StopAll()
	assert.False(t, q.AddTask(TaskFunc(func() {})), "stopping role accepts no tasks")

	close(release)
	require.NoError(t, reg.JoinAll())
	assert.True(t, finished.Load())
	assert.Equal(t, StateJoined, q.State())
}

func TestRegistry_StopAllIsIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	q := reg.NewTaskQueue("worker")
	p := reg.NewPoller("io", 10*time.Millisecond)

	reg.StopAll()
	reg.StopAll()
	require.NoError(t, reg.JoinAll())
	require.NoError(t, reg.JoinAll())

	assert.Equal(t, StateJoined, q.State())
	assert.Equal(t, StateJoined, p.State())
	for _, info := range reg.Roles() {
		assert.Equal(t, StateJoined, info.State, info.Name)
	}
}

func TestRegistry_JoinBeforeStop(t *testing.T) {
	reg := newTestRegistry(t)
	q := reg.NewTaskQueue("worker")

	done := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer func() {
			if r := recover(); r != nil {
				done <- r.(error)
			}
		}()
		done <- reg.JoinAll()
	}()

	select {
	case err := <-done:
		if currentThreadID() == 0 {
			assert.ErrorIs(t, err, ErrNotStopped)
		} else {
			assert.ErrorIs(t, err, ErrNotControl)
		}
	case <-time.After(time.Second):
		t.Fatal("join blocked")
	}

	assert.ErrorIs(t, reg.JoinAll(), ErrNotStopped)
	assert.Equal(t, StateRunning, q.State())
}

func TestRegistry_EmptyJoin(t *testing.T) {
	reg := newTestRegistry(t)
	reg.StopAll()
	assert.NoError(t, reg.JoinAll())
	assert.Empty(t, reg.Roles())
}

func TestRegistry_RoleAfterStopExits(t *testing.T) {
	reg := newTestRegistry(t)
	reg.StopAll()

	q := reg.NewTaskQueue("late")
	select {
	case <-q.Done():
	case <-time.After(time.Second):
		t.Fatal("late role did not exit")
	}
	assert.NoError(t, reg.JoinAll())
}

func TestRegistry_ExpectControl(t *testing.T) {
	if currentThreadID() == 0 {
		t.Skip("thread ids unavailable on this platform")
	}
	reg := newTestRegistry(t)
	assert.NotPanics(t, reg.ExpectControl)

	panicked := make(chan bool, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer func() { panicked <- recover() != nil }()
		reg.ExpectControl()
	}()
	assert.True(t, <-panicked)
}

func TestGate_SingleHolder(t *testing.T) {
	var g Gate
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.True(t, g.Held())
	g.Release()
	assert.False(t, g.Held())
	assert.True(t, g.TryAcquire())
}

type countingSource struct {
	polls atomic.Int32
}

func (s *countingSource) Poll(timeout time.Duration) (bool, error) {
	time.Sleep(timeout / 10)
	return s.polls.Add(1)%2 == 0, nil
}

func TestPoller_DispatchesSources(t *testing.T) {
	reg := newTestRegistry(t)
	p := reg.NewPoller("io", 10*time.Millisecond)

	src := &countingSource{}
	p.AddSource(src)

	assert.Eventually(t, func() bool { return p.Events() >= 5 }, time.Second, time.Millisecond)

	reg.StopAll()
	require.NoError(t, reg.JoinAll())
	polls := src.polls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, polls, src.polls.Load(), "no polls after join")
}
