package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/usher"
	"github.com/aretw0/usher/pkg/domain"
)

var (
	// ErrControllerRequired is returned by New when no controller is provided.
	ErrControllerRequired = errors.New("runner: controller is required")
	// ErrReducerRequired is returned by New when the program has no reducer.
	ErrReducerRequired = errors.New("runner: program reducer is required")
	// ErrLensRequired is returned by New when the pending lens is incomplete.
	ErrLensRequired = errors.New("runner: program pending lens requires Get and Set")
	// ErrOutcomeCaseRequired is returned by New when the outcome case is incomplete.
	ErrOutcomeCaseRequired = errors.New("runner: program outcome case requires Wrap and Unwrap")
)

// Program describes the host application driven by a Runner: its starting
// state, its reducer, and where the pending open request lives inside the
// state. The runner augments the reducer with usher.Attach, so hosts supply
// their reducer untouched.
type Program[S, A any] struct {
	// Initial is the state before any action is dispatched.
	Initial S

	// Reducer is the host's own state transition function.
	Reducer usher.Reducer[S, A]

	// Pending focuses the reducer state on the pending request field.
	Pending usher.Lens[S]

	// Outcomes converts between domain outcomes and the host's action type.
	Outcomes usher.OutcomeCase[A]
}

// Runner owns the host state and the dispatch loop. Every action, including
// the outcome actions the controller feeds back, flows through Dispatch under
// a single mutex, so reducers never run concurrently.
type Runner[S, A any] struct {
	mu    sync.Mutex
	state S

	reduce   usher.Reducer[S, A]
	pending  usher.Lens[S]
	outcomes usher.OutcomeCase[A]

	controller *usher.Controller
	logger     *slog.Logger
	onChange   func(S)
}

// New builds a Runner for the given program. The program's reducer is
// augmented so outcome actions clear the pending request after the host
// reducer runs, and the returned runner is ready to dispatch.
func New[S, A any](controller *usher.Controller, program Program[S, A], opts ...Option[S, A]) (*Runner[S, A], error) {
	if controller == nil {
		return nil, ErrControllerRequired
	}
	if program.Reducer == nil {
		return nil, ErrReducerRequired
	}
	if program.Pending.Get == nil || program.Pending.Set == nil {
		return nil, ErrLensRequired
	}
	if program.Outcomes.Wrap == nil || program.Outcomes.Unwrap == nil {
		return nil, ErrOutcomeCaseRequired
	}

	r := &Runner[S, A]{
		state:      program.Initial,
		reduce:     usher.Attach(program.Reducer, program.Pending, program.Outcomes),
		pending:    program.Pending,
		outcomes:   program.Outcomes,
		controller: controller,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Dispatch applies the action to the state and hands the resulting pending
// transition to the controller. Outcomes the controller produces re-enter
// Dispatch as host actions, which is how the pending field ends up cleared.
// Safe for concurrent use.
func (r *Runner[S, A]) Dispatch(ctx context.Context, action A) {
	r.mu.Lock()
	prev := r.pending.Get(r.state)
	r.state = r.reduce(r.state, action)
	next := r.pending.Get(r.state)
	snapshot := r.state
	r.mu.Unlock()

	if r.onChange != nil {
		r.onChange(snapshot)
	}

	if out, ok := r.outcomes.Unwrap(action); ok {
		r.logger.Debug("outcome applied", "kind", out.Kind, "resource", out.Resource)
	}

	// Observe runs outside the lock: an unsupported resource makes the
	// controller dispatch synchronously, and that dispatch must be able to
	// take the lock again.
	r.controller.Observe(ctx, prev, next, func(out domain.Outcome) {
		r.Dispatch(ctx, r.outcomes.Wrap(out))
	})
}

// State returns a snapshot of the current host state.
func (r *Runner[S, A]) State() S {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
