// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package keys implements the Key and KeySet value objects: immutable key
// material plus the rotation-aware selection rules the signer and verifier
// use (see spec.md §4.2).
package keys

import (
	"sync"

	merr "github.com/kopexa-grc/magiclink/errors"
	"github.com/kopexa-grc/magiclink/ptr"
	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
)

const (
	// MinSecretLen is the minimum raw secret length for a MAC-only key.
	MinSecretLen = 16
	// MinAEADSecretLen is the minimum raw secret length required before a
	// key may be used for AES-256-GCM encryption.
	MinAEADSecretLen = 32
)

// Key is immutable key material: a public label (Kid), the raw secret, and
// an optional validity window for signing. The core never persists a Key;
// callers own its lifecycle entirely.
type Key struct {
	Kid       string
	Secret    []byte
	CreatedAt int64
	ExpiresAt *int64 // nil means "never expires"
}

// New validates and constructs a Key. CryptoError is raised for any
// structural violation: empty kid, non-positive createdAt, or an
// under-length secret.
func New(kid string, secret []byte, createdAt int64, expiresAt *int64) (Key, error) {
	if kid == "" {
		return Key{}, merr.NewCryptoError("key: kid must not be empty")
	}

	if createdAt <= 0 {
		return Key{}, merr.NewCryptoError("key: createdAt must be positive")
	}

	if len(secret) < MinSecretLen {
		return Key{}, merr.NewCryptoError("key: secret must be at least 16 bytes")
	}

	return Key{
		Kid:       kid,
		Secret:    append([]byte(nil), secret...),
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// SupportsAEAD reports whether the key's secret is long enough to be used
// with AES-256-GCM (spec.md §3: "AEAD requires ≥32" raw bytes).
func (k Key) SupportsAEAD() bool {
	return len(k.Secret) >= MinAEADSecretLen
}

// unexpiredAt reports whether the key may still be selected for signing at
// the given time: either it never expires, or expiresAt is still reached or
// in the future. expiresAt is the last instant the key is valid for signing.
func (k Key) unexpiredAt(now int64) bool {
	return ptr.Deref(k.ExpiresAt, now) >= now
}

// GenerateKeyID returns a fresh, lexically sortable key identifier suitable
// for Kid: the 26-character Crockford base32 form of a ULID, which is
// URL-safe and within the 8-32 byte kid length, and whose timestamp prefix
// makes kid ordering a readable proxy for rotation order during incident
// review.
func GenerateKeyID() string {
	return ulid.Make().String()
}

// KeySet is a mutable, concurrency-safe collection of Keys, unique by Kid.
// It is shared between the issuing and verifying sides of the pipeline.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]Key
}

// NewKeySet constructs an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]Key)}
}

// Add inserts or replaces a key by Kid. Mutation is internally
// synchronized; concurrent Add calls are safe, but see spec.md §5 for the
// caller's responsibility around "reads stable during a single verify call".
func (s *KeySet) Add(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[k.Kid] = k
}

// Rotate is Add under a name that documents intent: it adds a new signing
// key while leaving every prior key in place, so tokens issued before
// rotation keep verifying until their own exp (spec.md §4.2).
func (s *KeySet) Rotate(newKey Key) {
	s.Add(newKey)
}

// Find returns the key with the given kid, expired or not — verification
// must accept keys that have since expired for signing, because a token
// issued under them may still be unexpired itself.
func (s *KeySet) Find(kid string) (Key, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[kid]

	return k, ok
}

// GetForSign picks the newest unexpired key for issuing new tokens: the
// maximum CreatedAt among keys with no expiry or an expiry at or after now.
// Ties break on descending Kid so that selection is deterministic without
// requiring the caller to impose a tiebreaker (spec.md §9).
func (s *KeySet) GetForSign(now int64) (Key, error) {
	s.mu.RLock()
	candidates := make([]Key, 0, len(s.keys))
	for _, k := range s.keys {
		candidates = append(candidates, k)
	}
	s.mu.RUnlock()

	eligible := lo.Filter(candidates, func(k Key, _ int) bool {
		return k.unexpiredAt(now)
	})

	if len(eligible) == 0 {
		return Key{}, merr.NewCryptoError("keyset: no unexpired signing key available")
	}

	best := eligible[0]
	for _, k := range eligible[1:] {
		if k.CreatedAt > best.CreatedAt || (k.CreatedAt == best.CreatedAt && k.Kid > best.Kid) {
			best = k
		}
	}

	return best, nil
}

// Len returns the number of keys currently held.
func (s *KeySet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.keys)
}
