// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package noncestore implements the replay-prevention contract spec.md
// §4.7 names: a single operation, consume(jti, expiresAt) -> bool, that
// returns true the first time a jti is seen and false on every subsequent
// call while the entry is still unexpired.
package noncestore

import "sync"

// NonceStore is the replay ledger the verifier consumes a jti against as
// the very last step of a successful verify (spec.md §4.6 step 16). An
// implementation must be safe for concurrent callers and must not mutate
// its storage when it returns false.
type NonceStore interface {
	// Consume records jti as used, expiring at expiresAt (unix seconds).
	// It returns true on the first call for a given jti and false on any
	// later call made before expiresAt.
	Consume(jti string, expiresAt int64) bool
}

// Memory is the reference in-memory NonceStore: a map from jti to
// expiresAt, swept opportunistically on each call. It is appropriate for
// single-process deployments and tests; multi-process deployments need a
// shared store such as noncestore/nats.
type Memory struct {
	mu      sync.Mutex
	entries map[string]int64
	now     func() int64
}

// NewMemory constructs an empty Memory store. now supplies the current
// unix-seconds time used to decide which entries are stale enough to
// reclaim; production callers pass clock.System{}.Now.
func NewMemory(now func() int64) *Memory {
	return &Memory{
		entries: make(map[string]int64),
		now:     now,
	}
}

// Consume implements NonceStore. The sweep of expired entries runs before
// the test-and-set check so a jti that expired in a prior window can be
// reused without ever returning false for a stale reason.
func (m *Memory) Consume(jti string, expiresAt int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	for k, exp := range m.entries {
		if exp <= now {
			delete(m.entries, k)
		}
	}

	if exp, ok := m.entries[jti]; ok && exp > now {
		return false
	}

	m.entries[jti] = expiresAt

	return true
}

// Len reports the number of entries currently retained, including any not
// yet swept. Exposed for tests that assert on garbage collection.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// Blackhole is the NonceStore for intentionally multi-use tokens: it
// accepts every jti unconditionally, so a caller that issues with
// oneTime=false but still sets a jti never sees a spurious replay.
type Blackhole struct{}

// Consume always returns true.
func (Blackhole) Consume(string, int64) bool {
	return true
}
