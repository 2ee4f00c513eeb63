// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package nats implements noncestore.NonceStore on top of a NATS
// JetStream key-value bucket, so replay prevention is shared across every
// process verifying tokens rather than scoped to one (see spec.md §4.7,
// "implementations must ... be safe under concurrent callers").
package nats

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/vmihailenco/msgpack/v5"
)

// Config contains the configuration for the NATS-backed NonceStore.
type Config struct {
	// BucketName is the name of the JetStream KV bucket.
	BucketName string

	// MaxAge bounds how long an entry is retained by the bucket itself,
	// independent of the caller-supplied expiresAt recorded per entry.
	// It must be at least as long as the longest token TTL in use.
	MaxAge time.Duration

	// ServerURL is the NATS server URL.
	ServerURL string
}

// DefaultBucketName is used when Config.BucketName is empty.
const DefaultBucketName = "magiclink_nonces"

// DefaultMaxAge bounds bucket retention when Config.MaxAge is zero.
const DefaultMaxAge = 24 * time.Hour

// Option configures a Store.
type Option func(*Config)

// WithBucketName sets the bucket name.
func WithBucketName(name string) Option {
	return func(c *Config) { c.BucketName = name }
}

// WithMaxAge sets the bucket-level retention window.
func WithMaxAge(d time.Duration) Option {
	return func(c *Config) { c.MaxAge = d }
}

// WithServerURL sets the NATS server URL.
func WithServerURL(url string) Option {
	return func(c *Config) { c.ServerURL = url }
}

// entry is the value stored per jti. msgpack keeps the ledger's wire
// representation distinct from (and smaller than) the canonical JSON the
// token itself is signed over; nothing here participates in the MAC.
type entry struct {
	ExpiresAt int64 `msgpack:"expires_at"`
}

// Store is a noncestore.NonceStore backed by a JetStream KV bucket.
type Store struct {
	kv jetstream.KeyValue
}

// NewStore connects to NATS, opens or creates the configured bucket, and
// returns a ready Store.
func NewStore(ctx context.Context, opts ...Option) (*Store, error) {
	cfg := Config{
		BucketName: DefaultBucketName,
		MaxAge:     DefaultMaxAge,
		ServerURL:  nats.DefaultURL,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	nc, err := nats.Connect(cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.BucketName,
		Description: "magiclink one-time token replay ledger",
		TTL:         cfg.MaxAge,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, err
		}

		kv, err = js.KeyValue(ctx, cfg.BucketName)
		if err != nil {
			return nil, err
		}
	}

	return &Store{kv: kv}, nil
}

// Consume implements noncestore.NonceStore. It uses JetStream KV's Create
// semantics — which fail if the key already exists — as the atomic
// test-and-set the contract requires: the first caller to Create wins and
// every other caller observes ErrKeyExists. A pre-existing but expired
// entry is deleted and the create retried once, so reclaiming a stale jti
// never requires a background sweeper.
func (s *Store) Consume(jti string, expiresAt int64) bool {
	ctx := context.Background()

	if s.tryCreate(ctx, jti, expiresAt) {
		return true
	}

	existing, err := s.kv.Get(ctx, jti)
	if err != nil {
		// Entry vanished between the failed Create and this Get (e.g.
		// bucket TTL reclaimed it); the jti is not actually in use.
		return s.tryCreate(ctx, jti, expiresAt)
	}

	var e entry
	if err := msgpack.Unmarshal(existing.Value(), &e); err != nil {
		return false
	}

	if e.ExpiresAt > time.Now().Unix() {
		return false
	}

	if err := s.kv.Delete(ctx, jti, jetstream.LastRevision(existing.Revision())); err != nil {
		return false
	}

	return s.tryCreate(ctx, jti, expiresAt)
}

func (s *Store) tryCreate(ctx context.Context, jti string, expiresAt int64) bool {
	data, err := msgpack.Marshal(entry{ExpiresAt: expiresAt})
	if err != nil {
		return false
	}

	_, err = s.kv.Create(ctx, jti, data)

	return err == nil
}
