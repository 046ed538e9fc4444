/*
Package observability provides tools for monitoring the open cycle.

It includes lifecycle hook combinators for fanning events out to several
consumers, a structured-logging sink, Prometheus collectors for outcome
metrics, and an event hub for streaming the cycle to live subscribers.
*/
package observability
