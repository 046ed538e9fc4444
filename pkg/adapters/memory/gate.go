package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/usher/pkg/ports"
)

type claim struct {
	token   uint64
	expires time.Time
}

// Gate implements ports.Gate in memory. Expired claims are reaped lazily on
// the next acquire for the same resource.
type Gate struct {
	mu     sync.Mutex
	claims map[string]claim
	next   uint64
	now    func() time.Time
}

// NewGate creates a new in-memory gate.
func NewGate() *Gate {
	return &Gate{
		claims: make(map[string]claim),
		now:    time.Now,
	}
}

// TryAcquire claims the resource without blocking. A zero ttl never
// expires; the claim then only clears through the release function.
func (g *Gate) TryAcquire(_ context.Context, resource string, ttl time.Duration) (ports.ReleaseFunc, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.claims[resource]; ok {
		if c.expires.IsZero() || g.now().Before(c.expires) {
			return nil, false, nil
		}
		delete(g.claims, resource)
	}

	g.next++
	token := g.next
	c := claim{token: token}
	if ttl > 0 {
		c.expires = g.now().Add(ttl)
	}
	g.claims[resource] = c

	release := func(context.Context) error {
		g.mu.Lock()
		defer g.mu.Unlock()
		// Only the claim we made may be removed; a later owner keeps theirs.
		if cur, ok := g.claims[resource]; ok && cur.token == token {
			delete(g.claims, resource)
		}
		return nil
	}
	return release, true, nil
}
