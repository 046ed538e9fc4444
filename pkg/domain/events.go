package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRequest  EventType = "request_set"
	EventCheck    EventType = "capability_check"
	EventAttempt  EventType = "open_attempt"
	EventOutcome  EventType = "outcome"
	EventConflict EventType = "conflict"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Resource  string    `json:"resource"`
}

// RequestEvent marks the Idle -> Pending edge that armed a cycle.
type RequestEvent struct {
	EventBase
}

// CheckEvent reports the capability verdict for a resource.
type CheckEvent struct {
	EventBase
	Supported bool `json:"supported"`
}

// AttemptEvent marks the hand-off to the capability's open operation.
type AttemptEvent struct {
	EventBase
}

// OutcomeEvent carries the classified result of a finished cycle.
type OutcomeEvent struct {
	EventBase
	Outcome Outcome `json:"outcome"`
}

// ConflictEvent reports a pending value observed while another attempt was
// still outstanding. The new value is ignored, never queued.
type ConflictEvent struct {
	EventBase
	// Active is the resource of the attempt that is still in flight.
	Active string `json:"active"`
}

// LifecycleHooks defines callbacks for controller observability.
// Nil members are skipped; hooks run synchronously on the pipeline path and
// should return quickly.
type LifecycleHooks struct {
	OnRequest  func(context.Context, *RequestEvent)
	OnCheck    func(context.Context, *CheckEvent)
	OnAttempt  func(context.Context, *AttemptEvent)
	OnOutcome  func(context.Context, *OutcomeEvent)
	OnConflict func(context.Context, *ConflictEvent)
}
