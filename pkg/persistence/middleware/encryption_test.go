package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/persistence/middleware"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	// Setup
	underlying := NewMockJournal()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secure := mw(underlying)

	ctx := context.Background()
	original := domain.OpenFailed("https://example.com/private", nil)
	original.Detail = "connection refused"

	// 1. Record
	if err := secure.Record(ctx, original); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	// 2. Verify the underlying journal directly (should be ciphertext)
	stored, err := underlying.Last(ctx)
	if err != nil {
		t.Fatalf("Underlying read failed: %v", err)
	}
	if strings.Contains(stored.Resource, "example.com") {
		t.Fatalf("Expected the resource hidden, found: %v", stored.Resource)
	}
	if !strings.HasPrefix(stored.Resource, "enc:") {
		t.Fatalf("Expected an enc: envelope, got %q", stored.Resource)
	}
	if stored.Kind != domain.KindOpenFailed {
		t.Errorf("Expected the kind to stay readable, got %q", stored.Kind)
	}

	// 3. Read via middleware (should be decrypted)
	loaded, err := secure.Last(ctx)
	if err != nil {
		t.Fatalf("Read via middleware failed: %v", err)
	}
	if loaded.Resource != "https://example.com/private" {
		t.Errorf("Expected the resource restored, got %q", loaded.Resource)
	}
	if loaded.Detail != "connection refused" {
		t.Errorf("Expected the detail restored, got %q", loaded.Detail)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	// Setup: record with the old key, read with the new one.
	underlying := NewMockJournal()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	oldMw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	if err := oldMw(underlying).Record(context.Background(), domain.Opened("https://example.com")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})

	loaded, err := rotated(underlying).Last(context.Background())
	if err != nil {
		t.Fatalf("Read after rotation failed: %v", err)
	}
	if loaded.Resource != "https://example.com" {
		t.Errorf("Expected the old record readable via fallback key, got %q", loaded.Resource)
	}
}

func TestEncryptionMiddleware_WrongKeyFails(t *testing.T) {
	underlying := NewMockJournal()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err := mw(underlying).Record(context.Background(), domain.Opened("https://example.com")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	stranger := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if _, err := stranger(underlying).Last(context.Background()); err == nil {
		t.Error("Expected decryption to fail without the right key")
	}
}

func TestEncryptionMiddleware_PlaintextHistoryStaysReadable(t *testing.T) {
	// Records written before encryption was enabled carry no envelope.
	underlying := NewMockJournal()
	if err := underlying.Record(context.Background(), domain.Opened("https://example.com/old")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	loaded, err := mw(underlying).Last(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if loaded.Resource != "https://example.com/old" {
		t.Errorf("Expected the plaintext record passed through, got %q", loaded.Resource)
	}
}

func TestEncryptionMiddleware_RecentDecryptsAll(t *testing.T) {
	underlying := NewMockJournal()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secure := mw(underlying)
	ctx := context.Background()

	for _, r := range []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"} {
		if err := secure.Record(ctx, domain.Opened(r)); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recent, err := secure.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 outcomes, got %d", len(recent))
	}
	if recent[0].Resource != "https://example.com/c" || recent[1].Resource != "https://example.com/b" {
		t.Errorf("Expected newest first decrypted, got %+v", recent)
	}
}

func TestEncryptionMiddleware_RejectsShortKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected a panic for a short key")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
}

func TestChain_OrdersMiddleware(t *testing.T) {
	// Redact first, then encrypt: the stored ciphertext must decrypt to the
	// masked resource.
	underlying := NewMockJournal()
	chain := middleware.Chain(
		middleware.NewRedactMiddleware(nil),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)
	journal := chain(underlying)
	ctx := context.Background()

	if err := journal.Record(ctx, domain.Opened("https://carol:pw@example.com")); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	stored, _ := underlying.Last(ctx)
	if !strings.HasPrefix(stored.Resource, "enc:") {
		t.Fatalf("Expected ciphertext at rest, got %q", stored.Resource)
	}

	loaded, err := journal.Last(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if strings.Contains(loaded.Resource, "pw") {
		t.Errorf("Expected the decrypted record already masked, got %q", loaded.Resource)
	}
}
