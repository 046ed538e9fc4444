package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/ports"
)

// MockJournal is an in-memory implementation of OutcomeJournal for testing
// purposes. It doubles as the reference semantics for the contract suite.
type MockJournal struct {
	mu       sync.Mutex
	outcomes []domain.Outcome
}

func NewMockJournal() *MockJournal {
	return &MockJournal{}
}

func (m *MockJournal) Record(ctx context.Context, outcome domain.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
	return nil
}

func (m *MockJournal) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.outcomes)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.Outcome, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.outcomes[i])
	}
	return out, nil
}

func (m *MockJournal) Last(ctx context.Context) (domain.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.outcomes) == 0 {
		return domain.Outcome{}, domain.ErrNoOutcomes
	}
	return m.outcomes[len(m.outcomes)-1], nil
}

func TestOutcomeJournal_Contract(t *testing.T) {
	// The mock complies with the same contract the real adapters (memory,
	// redis, sqlite) are verified against.
	ports.RunOutcomeJournalContract(t, NewMockJournal())
}
