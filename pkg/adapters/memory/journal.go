// Package memory provides in-process adapters: an outcome journal and a
// single-flight gate. Both are safe for concurrent use and need no external
// services, which makes them the default for embedding and tests.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/usher/pkg/domain"
)

// Journal implements ports.OutcomeJournal in memory.
// Safe for concurrent use.
type Journal struct {
	mu       sync.RWMutex
	records  []domain.Outcome
	capacity int
}

// JournalOption configures the journal.
type JournalOption func(*Journal)

// WithCapacity bounds the journal to the newest n records. Zero keeps
// everything.
func WithCapacity(n int) JournalOption {
	return func(j *Journal) {
		j.capacity = n
	}
}

// NewJournal creates a new in-memory journal.
func NewJournal(opts ...JournalOption) *Journal {
	j := &Journal{}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record appends the outcome, evicting the oldest record when the capacity
// is exceeded.
func (j *Journal) Record(_ context.Context, out domain.Outcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, out)
	if j.capacity > 0 && len(j.records) > j.capacity {
		j.records = j.records[len(j.records)-j.capacity:]
	}
	return nil
}

// Recent returns the newest outcomes first. A non-positive limit returns
// everything retained.
func (j *Journal) Recent(_ context.Context, limit int) ([]domain.Outcome, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]domain.Outcome, 0, len(j.records))
	for i := len(j.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, j.records[i])
	}
	return out, nil
}

// Last returns the most recent outcome.
func (j *Journal) Last(_ context.Context) (domain.Outcome, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.records) == 0 {
		return domain.Outcome{}, domain.ErrNoOutcomes
	}
	return j.records[len(j.records)-1], nil
}

// Len reports how many records are currently retained.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.records)
}
