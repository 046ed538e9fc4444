package usher

import "github.com/aretw0/usher/pkg/domain"

// Reducer is a pure state transition: it maps a state and an action to the
// next state. Reducers must not perform side effects; the controller keeps
// every effect at the Observe boundary.
type Reducer[S, A any] func(S, A) S

// Lens focuses the pending-request field inside the host state. Get reads
// the field, Set returns a copy of the state with the field replaced. Both
// must be pure; Set must not mutate its argument.
type Lens[S any] struct {
	Get func(S) domain.Request
	Set func(S, domain.Request) S
}

// OutcomeCase embeds the outcome variant in the host action type. Wrap
// builds the host action carrying an outcome; Unwrap extracts it, reporting
// false for every other action shape.
type OutcomeCase[A any] struct {
	Wrap   func(domain.Outcome) A
	Unwrap func(A) (domain.Outcome, bool)
}

// Compose chains reducers left to right: each receives the state produced
// by the previous one, all with the original action. Nil entries are
// skipped.
func Compose[S, A any](reducers ...Reducer[S, A]) Reducer[S, A] {
	return func(state S, action A) S {
		for _, r := range reducers {
			if r != nil {
				state = r(state, action)
			}
		}
		return state
	}
}

// ClearOnOutcome returns the reducer layer that forces the pending field
// back to idle whenever the action carries an outcome, regardless of what
// earlier layers wrote there. This is the automatic cleanup half of the
// controller: hosts never clear the field themselves, so a new request for
// the same resource still produces a fresh idle-to-pending edge.
func ClearOnOutcome[S, A any](lens Lens[S], outcomes OutcomeCase[A]) Reducer[S, A] {
	return func(state S, action A) S {
		if _, ok := outcomes.Unwrap(action); ok {
			state = lens.Set(state, domain.Idle())
		}
		return state
	}
}

// Attach wraps a host reducer with the outcome-clearing layer: the host
// reducer runs first for every action, then the pending field is reset to
// idle if the action carried an outcome. Equivalent to
// Compose(base, ClearOnOutcome(lens, outcomes)).
func Attach[S, A any](base Reducer[S, A], lens Lens[S], outcomes OutcomeCase[A]) Reducer[S, A] {
	return Compose(base, ClearOnOutcome(lens, outcomes))
}
