package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/usher/pkg/ports"
)

// GateContractTest is a reusable test suite that verifies if an adapter
// complies with ports.Gate single-flight semantics.
func GateContractTest(t *testing.T, gate ports.Gate) {
	t.Helper()
	ctx := context.Background()

	t.Run("AcquireRefuseRelease", func(t *testing.T) {
		release, ok, err := gate.TryAcquire(ctx, "https://example.com/a", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error on first acquire: %v", err)
		}
		if !ok {
			t.Fatal("first acquire must succeed")
		}

		// A second holder must be refused, not blocked, while the slot is held.
		_, ok, err = gate.TryAcquire(ctx, "https://example.com/a", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error on contended acquire: %v", err)
		}
		if ok {
			t.Error("contended acquire must be refused")
		}

		if err := release(ctx); err != nil {
			t.Fatalf("release failed: %v", err)
		}

		release, ok, err = gate.TryAcquire(ctx, "https://example.com/a", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error on re-acquire: %v", err)
		}
		if !ok {
			t.Error("acquire after release must succeed")
		}
		_ = release(ctx)
	})

	t.Run("IndependentResources", func(t *testing.T) {
		relA, ok, err := gate.TryAcquire(ctx, "https://example.com/left", time.Minute)
		if err != nil || !ok {
			t.Fatalf("acquire left: ok=%v err=%v", ok, err)
		}
		defer func() { _ = relA(ctx) }()

		relB, ok, err := gate.TryAcquire(ctx, "https://example.com/right", time.Minute)
		if err != nil || !ok {
			t.Fatalf("distinct resources must not contend: ok=%v err=%v", ok, err)
		}
		_ = relB(ctx)
	})
}
