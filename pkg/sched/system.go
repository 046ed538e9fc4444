package sched

import "time"

// System is the production scheduler backed by the runtime clock.
// The zero value is ready to use.
type System struct{}

// NewSystem returns the production scheduler.
func NewSystem() *System { return &System{} }

// Now returns the current wall-clock time.
func (*System) Now() time.Time { return time.Now() }

// Go runs fn on its own goroutine.
func (*System) Go(fn func()) { go fn() }

// After schedules fn with time.AfterFunc.
func (*System) After(d time.Duration, fn func()) (stop func() bool) {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
