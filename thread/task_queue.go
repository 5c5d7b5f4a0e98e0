package thread

import (
	"sync"
	"sync/atomic"
)

// Task is a single-shot unit of work. It runs to completion on the role it was
// added to and is not requeued automatically.
type Task interface {
	Run()
}

// TaskFunc adapts a plain function to Task.
type TaskFunc func()

// Run calls f.
func (f TaskFunc) Run() {
	f()
}

// TaskQueue is a role that executes tasks from its own queue, one at a time,
// in the order they were added.
type TaskQueue struct {
	role

	mu    sync.Mutex
	tasks []Task

	executed atomic.Uint64
}

func newTaskQueue(name string) *TaskQueue {
	return &TaskQueue{
		role: newRole(name, KindTaskQueue),
	}
}

// AddTask transfers t to the queue. It returns false once the role is stopping;
// the task is then dropped.
func (q *TaskQueue) AddTask(t Task) bool {
	if !q.running() {
		return false
	}

	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()

	q.notify()
	return true
}

// Pending returns the number of queued tasks not yet started.
func (q *TaskQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Executed returns the number of tasks run to completion.
func (q *TaskQueue) Executed() uint64 {
	return q.executed.Load()
}

func (q *TaskQueue) next() Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil
	}
	t := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return t
}

func (q *TaskQueue) runOnce() {
	t := q.next()
	if t == nil {
		<-q.wake
		return
	}

	t.Run()
	q.executed.Add(1)
}
