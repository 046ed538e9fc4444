package ports

import (
	"context"
	"time"
)

// ReleaseFunc releases a held gate slot.
type ReleaseFunc func(ctx context.Context) error

// Gate provides cross-instance single-flight control for open attempts.
// It lets replicated services guarantee that a resource is handed to a
// platform handler once, even when several replicas observe the same
// pending edge.
//
// Unlike a blocking lock, a gate refuses immediately: the controller's
// conflict policy ignores overlapping requests rather than queueing them,
// and the gate mirrors that policy across instances.
type Gate interface {
	// TryAcquire attempts to take the slot for the resource without
	// blocking. ok is false when another holder is active. The release
	// function MUST be called when ok is true; ttl bounds how long a
	// crashed holder can keep the slot.
	TryAcquire(ctx context.Context, resource string, ttl time.Duration) (release ReleaseFunc, ok bool, err error)
}
