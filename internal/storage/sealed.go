package storage

import (
	"context"
	"fmt"

	"github.com/yndnr/handoff-go/pkg/crypto/adaptive"
)

// Sealed encrypts values of an inner engine. Keys stay in clear so
// prefix scans keep working; each value is bound to its key as AEAD
// additional data, so a value copied under another key fails to open.
type Sealed struct {
	inner  KVEngine
	cipher adaptive.Cipher
}

// NewSealed wraps inner with c.
func NewSealed(inner KVEngine, c adaptive.Cipher) *Sealed {
	return &Sealed{inner: inner, cipher: c}
}

// Get decrypts the value under key.
func (s *Sealed) Get(ctx context.Context, key []byte) ([]byte, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := s.cipher.Decrypt(raw, key)
	if err != nil {
		return nil, fmt.Errorf("sealed: open %q: %w", key, err)
	}
	return plain, nil
}

// Set encrypts value and stores it under key.
func (s *Sealed) Set(ctx context.Context, key, value []byte) error {
	sealed, err := s.cipher.Encrypt(value, key)
	if err != nil {
		return fmt.Errorf("sealed: seal %q: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

// Delete removes key.
func (s *Sealed) Delete(ctx context.Context, key []byte) error {
	return s.inner.Delete(ctx, key)
}

// Scan decrypts values while iterating. Entries that fail to open are skipped.
func (s *Sealed) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	return s.inner.Scan(ctx, prefix, func(key, value []byte) bool {
		plain, err := s.cipher.Decrypt(value, key)
		if err != nil {
			return true
		}
		return fn(key, plain)
	})
}

// Close closes the inner engine.
func (s *Sealed) Close() error {
	return s.inner.Close()
}
