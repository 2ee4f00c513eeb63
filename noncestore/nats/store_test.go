// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package nats_test

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"

	ncnats "github.com/kopexa-grc/magiclink/noncestore/nats"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) *server.Server {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true

	s := test.RunServer(&opts)

	t.Cleanup(func() {
		s.Shutdown()
	})

	return s
}

func newStore(t *testing.T) *ncnats.Store {
	t.Helper()

	s := startTestServer(t)

	store, err := ncnats.NewStore(context.Background(),
		ncnats.WithServerURL(s.ClientURL()),
		ncnats.WithBucketName("test_nonces"),
		ncnats.WithMaxAge(time.Minute),
	)
	require.NoError(t, err)

	return store
}

func TestStoreFirstConsumeSucceeds(t *testing.T) {
	store := newStore(t)

	now := time.Now().Unix()
	require.True(t, store.Consume("jti-1", now+60))
}

func TestStoreSecondConsumeFailsBeforeExpiry(t *testing.T) {
	store := newStore(t)

	now := time.Now().Unix()
	require.True(t, store.Consume("jti-1", now+60))
	require.False(t, store.Consume("jti-1", now+60))
}

func TestStoreReclaimsAfterExpiry(t *testing.T) {
	store := newStore(t)

	past := time.Now().Unix() - 10
	require.True(t, store.Consume("jti-1", past))

	future := time.Now().Unix() + 60
	require.True(t, store.Consume("jti-1", future))
}
