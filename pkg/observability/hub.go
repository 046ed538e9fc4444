package observability

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/usher/pkg/domain"
)

// Event is one serialized lifecycle notification, ready for a wire like
// Server-Sent Events.
type Event struct {
	Type domain.EventType
	Data []byte
}

// Hub fans lifecycle events out to live subscribers. Publishing never
// blocks: a subscriber whose buffer is full misses events instead of
// stalling the open cycle.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	buffer int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[chan Event]struct{}),
		buffer: 16,
	}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. Cancel is idempotent and closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Subscribers reports the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) publish(t domain.EventType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	evt := Event{Type: t, Data: data}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Hooks returns the hook set feeding this hub.
func (h *Hub) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequest: func(_ context.Context, e *domain.RequestEvent) {
			h.publish(e.Type, e)
		},
		OnCheck: func(_ context.Context, e *domain.CheckEvent) {
			h.publish(e.Type, e)
		},
		OnAttempt: func(_ context.Context, e *domain.AttemptEvent) {
			h.publish(e.Type, e)
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			h.publish(e.Type, e)
		},
		OnConflict: func(_ context.Context, e *domain.ConflictEvent) {
			h.publish(e.Type, e)
		},
	}
}
