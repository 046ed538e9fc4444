package domain

// EdgeKind classifies how the pending request changed between two committed
// host states. The controller is edge-triggered: only EdgeSet arms the open
// pipeline.
type EdgeKind string

const (
	// EdgeNone marks a pair with no controller-relevant transition: both
	// idle, or the same resource still pending (level, not edge).
	EdgeNone EdgeKind = "none"

	// EdgeSet marks the Idle -> Pending transition. The only trigger.
	EdgeSet EdgeKind = "set"

	// EdgeCleared marks the Pending -> Idle transition, normally produced by
	// the forced clear on outcome receipt.
	EdgeCleared EdgeKind = "cleared"

	// EdgeReplaced marks Pending -> Pending with a different resource. The
	// controller reports it as a conflict and ignores the new value.
	EdgeReplaced EdgeKind = "replaced"
)

// Edge classifies the (prev, next) request pair.
//
// The trigger is edge-based, not change-based: EdgeSet fires whenever the
// field goes from Idle to Pending, even when the new resource equals the one
// of an earlier, already finished cycle.
func Edge(prev, next Request) EdgeKind {
	switch {
	case !prev.pending && next.pending:
		return EdgeSet
	case prev.pending && !next.pending:
		return EdgeCleared
	case prev.pending && next.pending && prev.resource != next.resource:
		return EdgeReplaced
	default:
		return EdgeNone
	}
}
