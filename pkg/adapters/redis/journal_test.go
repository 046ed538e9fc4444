package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/usher/pkg/adapters/redis"
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisJournal_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	// Initialize client
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Run contract
	journal := redis.NewFromClient(client)
	ports.RunOutcomeJournalContract(t, journal)
}

func TestRedisJournal_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Create journal with 1s TTL
	journal := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	// 1. Record
	err = journal.Record(ctx, domain.Opened("https://example.com"))
	assert.NoError(t, err)

	// 2. Verify Last (immediately)
	last, err := journal.Last(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com", last.Resource)

	// 3. Fast Forward time in miniredis (for Key Expiration)
	mr.FastForward(2 * time.Second)

	// 4. Verify Last (history is gone)
	_, err = journal.Last(ctx)
	assert.ErrorIs(t, err, domain.ErrNoOutcomes)

	recent, err := journal.Recent(ctx, 0)
	assert.NoError(t, err)
	assert.Empty(t, recent)
}

func TestRedisJournal_MaxLen_TrimsOldest(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	journal := redis.NewFromClient(client, redis.WithMaxLen(3))
	ctx := context.Background()

	resources := []string{
		"https://example.com/1",
		"https://example.com/2",
		"https://example.com/3",
		"https://example.com/4",
		"https://example.com/5",
	}
	for _, r := range resources {
		assert.NoError(t, journal.Record(ctx, domain.Opened(r)))
	}

	recent, err := journal.Recent(ctx, 0)
	assert.NoError(t, err)
	assert.Len(t, recent, 3, "trim should keep only the newest records")

	// Newest first, oldest two evicted
	assert.Equal(t, "https://example.com/5", recent[0].Resource)
	assert.Equal(t, "https://example.com/4", recent[1].Resource)
	assert.Equal(t, "https://example.com/3", recent[2].Resource)
}

func TestRedisJournal_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Custom Prefix
	journal := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err = journal.Record(ctx, domain.Opened("https://example.com"))
	assert.NoError(t, err)

	// Verify keys in Redis directly
	// Key should be "custom:app:outcomes"
	exists := mr.Exists("custom:app:outcomes")
	assert.True(t, exists, "Expected key with custom prefix to exist")

	// Default prefix must not leak in
	assert.False(t, mr.Exists("usher:outcomes"))

	// Verify Recent works through the same prefix
	recent, err := journal.Recent(ctx, 0)
	assert.NoError(t, err)
	assert.Len(t, recent, 1)
}
