package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/usher/pkg/adapters/redis"
	"github.com/aretw0/usher/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGate_Contract(t *testing.T) {
	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	// Run contract
	gate := redis.NewGate(client, "")
	tests.GateContractTest(t, gate)
}

func TestRedisGate_TTL_FreesCrashedHolder(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	gate := redis.NewGate(client, "")
	ctx := context.Background()

	// 1. Acquire with a short TTL and never release (simulated crash)
	_, ok, err := gate.TryAcquire(ctx, "https://example.com", 1*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// 2. Still held: a second acquire is refused
	_, ok, err = gate.TryAcquire(ctx, "https://example.com", 1*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "claim must be refused while TTL has not lapsed")

	// 3. Fast Forward past the TTL
	mr.FastForward(2 * time.Second)

	// 4. The slot is free again
	release, ok, err := gate.TryAcquire(ctx, "https://example.com", 1*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired claim must not block new holders")
	_ = release(ctx)
}

func TestRedisGate_StaleReleaseKeepsNewClaim(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	gate := redis.NewGate(client, "")
	ctx := context.Background()

	// First holder acquires, then its TTL lapses without a release
	staleRelease, ok, err := gate.TryAcquire(ctx, "https://example.com", 1*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	// Second holder takes over the slot
	_, ok, err = gate.TryAcquire(ctx, "https://example.com", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// The stale release runs the value check and must leave the new claim alone
	require.NoError(t, staleRelease(ctx))
	assert.True(t, mr.Exists("usher:gate:https://example.com"), "stale release must not delete the successor's claim")

	_, ok, err = gate.TryAcquire(ctx, "https://example.com", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "slot must still belong to the second holder")
}

func TestRedisGate_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	gate := redis.NewGate(client, "custom:app:")
	ctx := context.Background()

	release, ok, err := gate.TryAcquire(ctx, "https://example.com", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer func() { _ = release(ctx) }()

	// Verify keys in Redis directly
	assert.True(t, mr.Exists("custom:app:gate:https://example.com"))
	assert.False(t, mr.Exists("usher:gate:https://example.com"))
}
