package ports

import (
	"context"

	"github.com/aretw0/usher/pkg/domain"
)

// OutcomeJournal records the classified outcomes of finished cycles so that
// hosts, CLIs and daemons can inspect recent history. This enables the
// "what happened to my link" question to be answered after the fact.
//
// Implementations must be safe for concurrent use.
type OutcomeJournal interface {
	// Record appends one outcome.
	Record(ctx context.Context, outcome domain.Outcome) error

	// Recent returns recorded outcomes, newest first. limit caps the count;
	// limit <= 0 returns everything the backend still retains.
	Recent(ctx context.Context, limit int) ([]domain.Outcome, error)

	// Last returns the most recent outcome.
	// Returns domain.ErrNoOutcomes when nothing has been recorded.
	Last(ctx context.Context) (domain.Outcome, error)
}
