/*
Package usher is a resource-opening controller for unidirectional state
machines, designed for hosts that keep their state in a reducer and want
"open this URL" to be a safe, observable side effect instead of an inline
call.

It implements a "Watched Pending Field with Classified Outcomes"
architecture: the host owns the state and the reducer, Usher owns the
capability check, the single asynchronous open attempt and the cleanup of
the pending field.

# Concept

The host state carries one pending-request field (idle or pending a
resource). The host reducer sets it; Usher observes each committed
transition, and on the idle-to-pending edge it checks the capability,
attempts the open on its scheduler and dispatches exactly one classified
outcome (opened, open_failed or unsupported) back through the reducer. An
outcome action always clears the pending field, so the next request starts
from a clean edge. This Hexagonal Architecture keeps the core free of
platform concerns: openers, journals, schedulers and transports are
adapters.

# Key Features

  - Deterministic Testing: the scheduler is injectable; sched.Manual runs
    the asynchronous attempt under virtual time.
  - Failures as Data: an attempt that fails produces an outcome for the
    host to render, never an error that escapes the cycle.
  - Single-Flight: at most one attempt is outstanding; extra triggers are
    ignored and surfaced through lifecycle hooks.
  - Automatic Cleanup: Attach wraps any host reducer so outcome actions
    reset the pending field without host code.

# Usage

Wrap the host reducer with Attach, then route every committed transition of
the pending field through Observe.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/usher"
		"github.com/aretw0/usher/pkg/adapters/browser"
		"github.com/aretw0/usher/pkg/domain"
	)

	type State struct {
		Pending domain.Request
		Log     []domain.Outcome
	}

	type Action struct {
		Open    string
		Outcome *domain.Outcome
	}

	func main() {
		ctrl, err := usher.New(browser.New())
		if err != nil {
			log.Fatal(err)
		}

		lens := usher.Lens[State]{
			Get: func(s State) domain.Request { return s.Pending },
			Set: func(s State, r domain.Request) State { s.Pending = r; return s },
		}
		outcomes := usher.OutcomeCase[Action]{
			Wrap:   func(o domain.Outcome) Action { return Action{Outcome: &o} },
			Unwrap: func(a Action) (domain.Outcome, bool) {
				if a.Outcome == nil {
					return domain.Outcome{}, false
				}
				return *a.Outcome, true
			},
		}
		reduce := usher.Attach(func(s State, a Action) State {
			if a.Open != "" {
				s.Pending = domain.Pending(a.Open)
			}
			if a.Outcome != nil {
				s.Log = append(s.Log, *a.Outcome)
			}
			return s
		}, lens, outcomes)

		ctx := context.Background()
		state := State{Pending: domain.Idle()}

		var dispatch func(Action)
		dispatch = func(a Action) {
			prev := state
			state = reduce(state, a)
			ctrl.Observe(ctx, lens.Get(prev), lens.Get(state), func(o domain.Outcome) {
				dispatch(outcomes.Wrap(o))
			})
		}

		dispatch(Action{Open: "http://example.com"})
	}
*/
package usher
