/*
Package runner implements the unidirectional host loop around a Controller.

It owns the host state, applies the augmented reducer on every dispatched
action, and feeds each committed pending-field transition to the controller.
Classified outcomes come back as ordinary actions through the same Dispatch
path, so the whole cycle stays a single serialized loop.

# Key Components

  - Program: The host application description (initial state, reducer, and
    where the pending request lives).
  - Runner: The loop itself. Dispatch is safe for concurrent use.

# Usage

	r, err := runner.New(controller, runner.Program[appState, appAction]{
		Initial:  appState{},
		Reducer:  reduce,
		Pending:  pendingLens,
		Outcomes: outcomeCase,
	})
	if err != nil {
		log.Fatal(err)
	}

	r.Dispatch(ctx, openAction{url: "https://example.com"})
*/
package runner
