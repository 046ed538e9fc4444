package testutils

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/usher/pkg/domain"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	tmpDir := t.TempDir()

	// Loam sometimes prefers absolute paths, though t.TempDir usually returns one.
	// Ensuring it is absolute is safe.
	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// FakeOpener is a scripted capability for tests. It supports every resource
// and succeeds on every attempt unless told otherwise, and records each call
// so tests can assert how often (and whether) the controller consulted it.
type FakeOpener struct {
	mu sync.Mutex

	deny map[string]bool
	fail map[string]error

	canOpenCalls []string
	openCalls    []string
}

// NewFakeOpener returns an opener that accepts everything.
func NewFakeOpener() *FakeOpener {
	return &FakeOpener{
		deny: make(map[string]bool),
		fail: make(map[string]error),
	}
}

// Deny makes CanOpen report false for the given resources.
func (f *FakeOpener) Deny(resources ...string) *FakeOpener {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range resources {
		f.deny[r] = true
	}
	return f
}

// Fail makes Open return err for the given resource.
func (f *FakeOpener) Fail(resource string, err error) *FakeOpener {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[resource] = err
	return f
}

// CanOpen implements ports.Opener.
func (f *FakeOpener) CanOpen(resource string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canOpenCalls = append(f.canOpenCalls, resource)
	return !f.deny[resource]
}

// Open implements ports.Opener.
func (f *FakeOpener) Open(_ context.Context, resource string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls = append(f.openCalls, resource)
	return f.fail[resource]
}

// OpenCalls returns a copy of every resource Open was invoked with, in order.
func (f *FakeOpener) OpenCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.openCalls))
	copy(out, f.openCalls)
	return out
}

// CanOpenCalls returns a copy of every resource CanOpen was invoked with.
func (f *FakeOpener) CanOpenCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.canOpenCalls))
	copy(out, f.canOpenCalls)
	return out
}

// CollectingHooks gathers lifecycle events so tests can assert on the exact
// sequence the controller emitted.
type CollectingHooks struct {
	mu sync.Mutex

	requests  []domain.RequestEvent
	checks    []domain.CheckEvent
	attempts  []domain.AttemptEvent
	outcomes  []domain.OutcomeEvent
	conflicts []domain.ConflictEvent
}

// NewCollectingHooks returns an empty collector.
func NewCollectingHooks() *CollectingHooks {
	return &CollectingHooks{}
}

// Hooks returns the LifecycleHooks wired to this collector.
func (c *CollectingHooks) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequest: func(_ context.Context, e *domain.RequestEvent) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.requests = append(c.requests, *e)
		},
		OnCheck: func(_ context.Context, e *domain.CheckEvent) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.checks = append(c.checks, *e)
		},
		OnAttempt: func(_ context.Context, e *domain.AttemptEvent) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.attempts = append(c.attempts, *e)
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.outcomes = append(c.outcomes, *e)
		},
		OnConflict: func(_ context.Context, e *domain.ConflictEvent) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.conflicts = append(c.conflicts, *e)
		},
	}
}

// Requests returns the collected request events.
func (c *CollectingHooks) Requests() []domain.RequestEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.RequestEvent, len(c.requests))
	copy(out, c.requests)
	return out
}

// Checks returns the collected capability check events.
func (c *CollectingHooks) Checks() []domain.CheckEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CheckEvent, len(c.checks))
	copy(out, c.checks)
	return out
}

// Attempts returns the collected attempt events.
func (c *CollectingHooks) Attempts() []domain.AttemptEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.AttemptEvent, len(c.attempts))
	copy(out, c.attempts)
	return out
}

// Outcomes returns the outcomes carried by the collected outcome events.
func (c *CollectingHooks) Outcomes() []domain.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Outcome, 0, len(c.outcomes))
	for _, e := range c.outcomes {
		out = append(out, e.Outcome)
	}
	return out
}

// Conflicts returns the collected conflict events.
func (c *CollectingHooks) Conflicts() []domain.ConflictEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ConflictEvent, len(c.conflicts))
	copy(out, c.conflicts)
	return out
}
