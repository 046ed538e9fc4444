package ports

import "context"

// Opener is the host-supplied capability that checks support for and
// performs the platform-level open of an external resource.
//
// It is supplied once at controller construction and treated as immutable:
// the controller only ever invokes it, never mutates it.
type Opener interface {
	// CanOpen reports whether the capability is able to handle the resource.
	// It must be cheap and side-effect free: the controller consults it
	// before every cycle and never calls Open when it returns false.
	CanOpen(resource string) bool

	// Open hands the resource to the platform handler. A nil return is
	// classified as an opened outcome, a non-nil error as open_failed data;
	// the controller never propagates it. Implementations should honor ctx
	// for their own cancellation; the controller does not retry.
	Open(ctx context.Context, resource string) error
}
