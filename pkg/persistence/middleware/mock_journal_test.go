package middleware_test

import (
	"context"

	"github.com/aretw0/usher/pkg/domain"
)

// MockJournal is a simple slice-based journal for testing middleware.
type MockJournal struct {
	records []domain.Outcome
}

func NewMockJournal() *MockJournal {
	return &MockJournal{}
}

func (j *MockJournal) Record(_ context.Context, out domain.Outcome) error {
	j.records = append(j.records, out)
	return nil
}

func (j *MockJournal) Recent(_ context.Context, limit int) ([]domain.Outcome, error) {
	out := make([]domain.Outcome, 0, len(j.records))
	for i := len(j.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, j.records[i])
	}
	return out, nil
}

func (j *MockJournal) Last(_ context.Context) (domain.Outcome, error) {
	if len(j.records) == 0 {
		return domain.Outcome{}, domain.ErrNoOutcomes
	}
	return j.records[len(j.records)-1], nil
}
