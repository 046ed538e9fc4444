package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/usher/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunOutcomeJournalContract runs a suite of tests to verify that an
// OutcomeJournal implementation adheres to the defined interface contract.
// The journal must be empty when the suite starts.
func RunOutcomeJournalContract(t *testing.T, journal OutcomeJournal) {
	ctx := context.Background()
	base := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	t.Run("Last on empty", func(t *testing.T) {
		_, err := journal.Last(ctx)
		assert.ErrorIs(t, err, domain.ErrNoOutcomes)
	})

	t.Run("Record and Last", func(t *testing.T) {
		o := domain.Opened("http://example.com")
		o.At = base
		require.NoError(t, journal.Record(ctx, o), "Record should not return error")

		last, err := journal.Last(ctx)
		require.NoError(t, err, "Last should not return error")
		assert.Equal(t, "http://example.com", last.Resource)
		assert.Equal(t, domain.KindOpened, last.Kind)
		assert.True(t, last.At.Equal(base), "timestamp should survive the round trip")
	})

	t.Run("Recent newest first", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			o := domain.Unsupported(fmt.Sprintf("gopher://host-%d", i))
			o.At = base.Add(time.Duration(i) * time.Second)
			require.NoError(t, journal.Record(ctx, o))
		}

		recent, err := journal.Recent(ctx, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(recent), 3)
		assert.Equal(t, "gopher://host-3", recent[0].Resource)
		assert.Equal(t, "gopher://host-2", recent[1].Resource)
		assert.Equal(t, "gopher://host-1", recent[2].Resource)
	})

	t.Run("Recent respects limit", func(t *testing.T) {
		recent, err := journal.Recent(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, recent, 2)
		assert.Equal(t, "gopher://host-3", recent[0].Resource)
	})

	t.Run("Detail survives round trip", func(t *testing.T) {
		o := domain.OpenFailed("https://aretw0.dev", fmt.Errorf("exec: handler exited 1"))
		o.At = base.Add(time.Minute)
		require.NoError(t, journal.Record(ctx, o))

		last, err := journal.Last(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.KindOpenFailed, last.Kind)
		assert.Equal(t, "exec: handler exited 1", last.Detail)
	})
}
