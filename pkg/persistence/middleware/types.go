// Package middleware wraps outcome journals with cross-cutting behavior
// such as credential redaction and at-rest encryption.
package middleware

import "github.com/aretw0/usher/pkg/ports"

// Middleware allows wrapping an OutcomeJournal to add behavior.
type Middleware func(ports.OutcomeJournal) ports.OutcomeJournal

// Chain composes middlewares so the first one listed is the outermost
// wrapper: Chain(a, b)(j) == a(b(j)).
func Chain(mws ...Middleware) Middleware {
	return func(journal ports.OutcomeJournal) ports.OutcomeJournal {
		for i := len(mws) - 1; i >= 0; i-- {
			journal = mws[i](journal)
		}
		return journal
	}
}
