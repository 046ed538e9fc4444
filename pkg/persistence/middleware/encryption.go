package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/ports"
)

// encPrefix tags encrypted field values so plaintext records written before
// encryption was enabled stay readable.
const encPrefix = "enc:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new records.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionJournal struct {
	next   ports.OutcomeJournal
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts the resource
// and detail fields with AES-GCM before they reach the underlying journal.
// The outcome kind and timestamp stay readable, so ordering and per-kind
// stats keep working on the stored form.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.OutcomeJournal) ports.OutcomeJournal {
		return &encryptionJournal{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionJournal) Record(ctx context.Context, out domain.Outcome) error {
	sealed, err := m.seal(out)
	if err != nil {
		return fmt.Errorf("failed to encrypt outcome: %w", err)
	}
	return m.next.Record(ctx, sealed)
}

func (m *encryptionJournal) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	sealed, err := m.next.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Outcome, len(sealed))
	for i, rec := range sealed {
		opened, err := m.open(rec)
		if err != nil {
			return nil, err
		}
		out[i] = opened
	}
	return out, nil
}

func (m *encryptionJournal) Last(ctx context.Context) (domain.Outcome, error) {
	sealed, err := m.next.Last(ctx)
	if err != nil {
		return domain.Outcome{}, err
	}
	return m.open(sealed)
}

func (m *encryptionJournal) seal(out domain.Outcome) (domain.Outcome, error) {
	resource, err := encryptField(out.Resource, m.config.ActiveKey)
	if err != nil {
		return domain.Outcome{}, err
	}
	out.Resource = resource

	if out.Detail != "" {
		detail, err := encryptField(out.Detail, m.config.ActiveKey)
		if err != nil {
			return domain.Outcome{}, err
		}
		out.Detail = detail
	}
	return out, nil
}

func (m *encryptionJournal) open(out domain.Outcome) (domain.Outcome, error) {
	resource, err := decryptField(out.Resource, m.config)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("failed to decrypt outcome: %w", err)
	}
	out.Resource = resource

	if out.Detail != "" {
		detail, err := decryptField(out.Detail, m.config)
		if err != nil {
			return domain.Outcome{}, fmt.Errorf("failed to decrypt outcome: %w", err)
		}
		out.Detail = detail
	}
	return out, nil
}

// Helpers

func encryptField(value string, key []byte) (string, error) {
	ciphertext, err := encrypt([]byte(value), key)
	if err != nil {
		return "", err
	}
	return encPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptField(value string, config EncryptionConfig) (string, error) {
	if !strings.HasPrefix(value, encPrefix) {
		// Record predates encryption; keep it as stored.
		return value, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plain, err := decryptWithRotation(ciphertext, config.ActiveKey, config.FallbackKeys)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
