/*
Package sched provides the Scheduler implementations used by the controller.

System is the production scheduler: real clock, real goroutines. Manual is a
deterministic virtual-time scheduler for tests and delayed-open hosts: time
only moves when the caller advances it, and every callback runs synchronously
on the advancing goroutine, which makes asynchronous open cycles fully
reproducible.
*/
package sched
