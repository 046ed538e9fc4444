// Package redis provides Redis-backed adapters: a durable outcome journal
// and a distributed single-flight gate. They let several processes share
// one open history and keep the at-most-one-attempt rule across hosts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/usher/pkg/domain"
)

const defaultPrefix = "usher:"

// Journal implements ports.OutcomeJournal on a Redis list. New records are
// pushed to the head, so reads are newest first without extra bookkeeping.
type Journal struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	maxLen int64
}

// JournalOption configures the journal.
type JournalOption func(*Journal)

// WithPrefix overrides the key prefix (default "usher:").
func WithPrefix(prefix string) JournalOption {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// WithTTL expires the whole journal after the given idle time. Every
// record refreshes the clock.
func WithTTL(ttl time.Duration) JournalOption {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithMaxLen trims the journal to the newest n records on every write.
// Zero keeps everything.
func WithMaxLen(n int64) JournalOption {
	return func(j *Journal) {
		j.maxLen = n
	}
}

// NewFromClient creates a journal on an existing Redis client.
func NewFromClient(client *backend.Client, opts ...JournalOption) *Journal {
	j := &Journal{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Journal) key() string {
	return j.prefix + "outcomes"
}

// Record pushes the outcome to the head of the list, applying the trim and
// TTL policies in the same round trip.
func (j *Journal) Record(ctx context.Context, out domain.Outcome) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	pipe := j.client.TxPipeline()
	pipe.LPush(ctx, j.key(), payload)
	if j.maxLen > 0 {
		pipe.LTrim(ctx, j.key(), 0, j.maxLen-1)
	}
	if j.ttl > 0 {
		pipe.Expire(ctx, j.key(), j.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error recording outcome: %w", err)
	}
	return nil
}

// Recent returns the newest outcomes first. A non-positive limit returns
// everything retained.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := j.client.LRange(ctx, j.key(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error reading outcomes: %w", err)
	}

	out := make([]domain.Outcome, 0, len(raw))
	for _, item := range raw {
		var o domain.Outcome
		if err := json.Unmarshal([]byte(item), &o); err != nil {
			return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}

// Last returns the most recent outcome.
func (j *Journal) Last(ctx context.Context) (domain.Outcome, error) {
	raw, err := j.client.LIndex(ctx, j.key(), 0).Result()
	if errors.Is(err, backend.Nil) {
		return domain.Outcome{}, domain.ErrNoOutcomes
	}
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("redis error reading outcome: %w", err)
	}

	var out domain.Outcome
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return domain.Outcome{}, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}
	return out, nil
}
