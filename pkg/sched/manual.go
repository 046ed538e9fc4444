package sched

import (
	"sync"
	"time"
)

// Manual is a deterministic scheduler for tests and delayed-open hosts.
//
// The clock only moves when Advance is called. Queued callbacks (Go) and due
// timers (After) run synchronously on the goroutine driving Advance or
// Flush, in a predictable order: timers by due time, ties by registration
// order, with the asynchronous queue drained between firings. Inside a timer
// callback, Now reports that timer's due time.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
	queue  []func()
}

type manualTimer struct {
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// NewManual returns a virtual-time scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Go queues fn. It runs during the next Flush or Advance.
func (m *Manual) Go(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, fn)
}

// After arms a timer d from the current virtual time.
func (m *Manual) After(d time.Duration, fn func()) (stop func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTimer{at: m.now.Add(d), seq: m.seq, fn: fn}
	m.seq++
	m.timers = append(m.timers, t)

	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.fired || t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// Flush runs queued callbacks until none remain, without moving the clock.
// It returns the number of callbacks run.
func (m *Manual) Flush() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return ran
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		fn()
		ran++
	}
}

// Advance moves the clock forward by d, firing every timer due within the
// window in order and draining the queue between firings. Advancing by less
// than a timer's remaining delay does not fire it. It returns the number of
// callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	deadline := m.now.Add(d)
	m.mu.Unlock()

	ran := m.Flush()
	for {
		t := m.popDue(deadline)
		if t == nil {
			break
		}
		t.fn()
		ran++
		ran += m.Flush()
	}

	m.mu.Lock()
	if deadline.After(m.now) {
		m.now = deadline
	}
	m.mu.Unlock()
	return ran + m.Flush()
}

// Pending returns the number of armed timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// popDue removes and returns the earliest timer due at or before deadline,
// advancing the clock to its due time. Callbacks run outside the lock so
// they may re-arm timers or queue work.
func (m *Manual) popDue(deadline time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	best := -1
	for i, t := range m.timers {
		if t.stopped || t.at.After(deadline) {
			continue
		}
		if best == -1 || t.at.Before(m.timers[best].at) ||
			(t.at.Equal(m.timers[best].at) && t.seq < m.timers[best].seq) {
			best = i
		}
	}
	if best == -1 {
		return nil
	}

	t := m.timers[best]
	t.fired = true
	m.timers = append(m.timers[:best], m.timers[best+1:]...)
	if t.at.After(m.now) {
		m.now = t.at
	}
	return t
}
