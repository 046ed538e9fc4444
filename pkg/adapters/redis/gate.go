package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/usher/pkg/ports"
)

// Safe release: delete the claim only when the stored value still matches,
// so a holder whose TTL lapsed cannot free a successor's claim.
const releaseScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

// Gate implements ports.Gate using Redis SET NX PX. A claim is a single
// key per resource; whichever replica sets it first owns the attempt.
type Gate struct {
	client *backend.Client
	prefix string
}

// NewGate creates a gate on an existing Redis client. The prefix namespaces
// claim keys; pass "" for the default ("usher:").
func NewGate(client *backend.Client, prefix string) *Gate {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Gate{
		client: client,
		prefix: prefix,
	}
}

// TryAcquire takes the claim for the resource without blocking or retrying.
// The controller treats an occupied slot as a conflict to ignore, so there
// is no polling loop here: one SETNX decides it.
func (g *Gate) TryAcquire(ctx context.Context, resource string, ttl time.Duration) (ports.ReleaseFunc, bool, error) {
	key := g.prefix + "gate:" + resource
	val := fmt.Sprintf("%d", time.Now().UnixNano())

	ok, err := g.client.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis error acquiring gate: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		return g.client.Eval(ctx, releaseScript, []string{key}, val).Err()
	}
	return release, true, nil
}
