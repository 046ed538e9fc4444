package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/usher/internal/testutils"
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/sched"
)

func TestWatcher_ReplacedPendingReportsConflict(t *testing.T) {
	// Setup: first trigger is queued but not yet run.
	opener := testutils.NewFakeOpener()
	clock := sched.NewManual(testEpoch)
	hooks := testutils.NewCollectingHooks()
	w := newTestWatcher(opener, clock, hooks.Hooks())

	var got []domain.Outcome
	collect := func(o domain.Outcome) { got = append(got, o) }
	ctx := context.Background()

	w.Observe(ctx, domain.Idle(), domain.Pending("http://example.com"), collect)

	// A second resource lands while the first attempt is still in flight.
	w.Observe(ctx, domain.Pending("http://example.com"), domain.Pending("http://example.org"), collect)

	conflicts := hooks.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("Expected one conflict event, got %d", len(conflicts))
	}
	if conflicts[0].Resource != "http://example.org" {
		t.Errorf("Expected the ignored resource in the conflict event, got %q", conflicts[0].Resource)
	}
	if conflicts[0].Active != "http://example.com" {
		t.Errorf("Expected the in-flight resource as active, got %q", conflicts[0].Active)
	}

	clock.Flush()

	// Verify: only the first resource was opened.
	calls := opener.OpenCalls()
	if len(calls) != 1 || calls[0] != "http://example.com" {
		t.Errorf("Expected only the first resource to be opened, got %v", calls)
	}
	if len(got) != 1 || got[0].Resource != "http://example.com" {
		t.Errorf("Expected one outcome for the first resource, got %v", got)
	}
}

func TestWatcher_BusySlotRefusesSecondTrigger(t *testing.T) {
	// Even a fresh idle -> pending edge is refused while the slot is taken.
	opener := testutils.NewFakeOpener()
	clock := sched.NewManual(testEpoch)
	hooks := testutils.NewCollectingHooks()
	w := newTestWatcher(opener, clock, hooks.Hooks())

	var got []domain.Outcome
	collect := func(o domain.Outcome) { got = append(got, o) }
	ctx := context.Background()

	w.Observe(ctx, domain.Idle(), domain.Pending("http://example.com"), collect)
	w.Observe(ctx, domain.Idle(), domain.Pending("http://example.org"), collect)

	if len(hooks.Conflicts()) != 1 {
		t.Fatalf("Expected one conflict event, got %d", len(hooks.Conflicts()))
	}

	clock.Flush()

	calls := opener.OpenCalls()
	if len(calls) != 1 || calls[0] != "http://example.com" {
		t.Errorf("Expected only the in-flight resource to be opened, got %v", calls)
	}
}

func TestWatcher_SlotFreedBeforeDispatch(t *testing.T) {
	// The dispatch callback re-enters the host reducer, and that pass may arm
	// the next cycle immediately. The slot must already be free by then.
	opener := testutils.NewFakeOpener()
	clock := sched.NewManual(testEpoch)
	w := newTestWatcher(opener, clock, domain.LifecycleHooks{})

	ctx := context.Background()
	var got []domain.Outcome
	busyAtDispatch := true

	var collect func(domain.Outcome)
	collect = func(o domain.Outcome) {
		got = append(got, o)
		if len(got) == 1 {
			busyAtDispatch = w.Busy()
			// The host state machine moves straight to the next request.
			w.Observe(ctx, domain.Idle(), domain.Pending("http://example.org"), collect)
		}
	}

	w.Observe(ctx, domain.Idle(), domain.Pending("http://example.com"), collect)
	clock.Flush()

	if busyAtDispatch {
		t.Error("Expected the slot to be free when dispatch runs")
	}
	if len(got) != 2 {
		t.Fatalf("Expected both cycles to settle, got %d outcomes", len(got))
	}
	calls := opener.OpenCalls()
	if len(calls) != 2 || calls[0] != "http://example.com" || calls[1] != "http://example.org" {
		t.Errorf("Expected both resources opened in order, got %v", calls)
	}
}

func TestWatcher_RunSynchronousCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a supported resource", func(t *testing.T) {
		opener := testutils.NewFakeOpener()
		w := newTestWatcher(opener, sched.NewManual(testEpoch), domain.LifecycleHooks{})

		out, err := w.Run(ctx, "http://example.com")
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if out.Kind != domain.KindOpened {
			t.Errorf("Expected kind %q, got %q", domain.KindOpened, out.Kind)
		}
		if calls := opener.OpenCalls(); len(calls) != 1 {
			t.Errorf("Expected one open call, got %v", calls)
		}
	})

	t.Run("classifies unsupported without an attempt", func(t *testing.T) {
		opener := testutils.NewFakeOpener().Deny("gopher://localhost:10000")
		w := newTestWatcher(opener, sched.NewManual(testEpoch), domain.LifecycleHooks{})

		out, err := w.Run(ctx, "gopher://localhost:10000")
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if out.Kind != domain.KindUnsupported {
			t.Errorf("Expected kind %q, got %q", domain.KindUnsupported, out.Kind)
		}
		if calls := opener.OpenCalls(); len(calls) != 0 {
			t.Errorf("Expected no open call, got %v", calls)
		}
	})

	t.Run("rejects an empty resource", func(t *testing.T) {
		w := newTestWatcher(testutils.NewFakeOpener(), sched.NewManual(testEpoch), domain.LifecycleHooks{})

		_, err := w.Run(ctx, "")
		if !errors.Is(err, domain.ErrInvalidResource) {
			t.Errorf("Expected ErrInvalidResource, got %v", err)
		}
	})

	t.Run("refuses while an attempt is in flight", func(t *testing.T) {
		opener := testutils.NewFakeOpener()
		clock := sched.NewManual(testEpoch)
		w := newTestWatcher(opener, clock, domain.LifecycleHooks{})

		w.Observe(ctx, domain.Idle(), domain.Pending("http://example.com"), nil)

		_, err := w.Run(ctx, "http://example.org")
		if !errors.Is(err, domain.ErrBusy) {
			t.Errorf("Expected ErrBusy, got %v", err)
		}
	})

	t.Run("honors a canceled context", func(t *testing.T) {
		opener := testutils.NewFakeOpener()
		w := newTestWatcher(opener, sched.NewManual(testEpoch), domain.LifecycleHooks{})

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := w.Run(canceled, "http://example.com")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if calls := opener.CanOpenCalls(); len(calls) != 0 {
			t.Errorf("Expected no capability check after cancellation, got %v", calls)
		}
	})
}
