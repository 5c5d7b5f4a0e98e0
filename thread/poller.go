package thread

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval bounds how long a poll role waits on its sources before
// re-checking its stop state.
const DefaultPollInterval = 100 * time.Millisecond

// Source is a pollable readiness source.
//
// Poll waits at most timeout for the source to become ready and handles a
// single readiness event. It reports whether an event was handled.
type Source interface {
	Poll(timeout time.Duration) (bool, error)
}

// Poller is a role that multiplexes readiness across its sources instead of
// running a task queue.
type Poller struct {
	role

	interval time.Duration
	mu       sync.Mutex
	sources  atomic.Pointer[[]Source]
	timer    *time.Timer

	events atomic.Uint64
	errors atomic.Uint64
}

func newPoller(name string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	t := time.NewTimer(interval)
	t.Stop()

	return &Poller{
		role:     newRole(name, KindPoller),
		interval: interval,
		timer:    t,
	}
}

// AddSource registers s. Sources are expected to be added during setup.
func (p *Poller) AddSource(s Source) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var next []Source
	if cur := p.sources.Load(); cur != nil {
		next = append(next, *cur...)
	}
	next = append(next, s)
	p.sources.Store(&next)
	p.notify()
}

// Events returns the number of readiness events handled.
func (p *Poller) Events() uint64 {
	return p.events.Load()
}

// Errors returns the number of failed polls.
func (p *Poller) Errors() uint64 {
	return p.errors.Load()
}

func (p *Poller) runOnce() {
	cur := p.sources.Load()
	if cur == nil || len(*cur) == 0 {
		p.idle()
		return
	}

	sources := *cur
	slice := p.interval / time.Duration(len(sources))
	for _, s := range sources {
		ready, err := s.Poll(slice)
		if err != nil {
			p.errors.Add(1)
			logger.Warn("poll source failed", "role", p.name, "error", err)
			p.idle()
			return
		}
		if ready {
			p.events.Add(1)
		}
		if !p.running() {
			return
		}
	}
}

// idle sleeps for one interval or until woken.
func (p *Poller) idle() {
	p.timer.Reset(p.interval)
	select {
	case <-p.wake:
		p.timer.Stop()
	case <-p.timer.C:
	}
}
