package ports

import "time"

// Scheduler abstracts time and asynchronous execution for the controller.
//
// The open attempt is the single asynchronous operation in a cycle, and it
// always runs through the scheduler, never through a bare goroutine. This
// keeps the pipeline swappable: production wiring uses sched.System, tests
// and delayed-open hosts use sched.Manual, which executes callbacks
// deterministically under a virtual clock.
type Scheduler interface {
	// Now returns the scheduler's current time. Outcome timestamps are
	// stamped from this clock.
	Now() time.Time

	// Go runs fn asynchronously.
	Go(fn func())

	// After schedules fn to run once d has elapsed on the scheduler's
	// clock. The returned stop function cancels the timer and reports
	// whether it was stopped before firing, matching time.Timer.Stop.
	After(d time.Duration, fn func()) (stop func() bool)
}
