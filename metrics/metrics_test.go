// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package metrics_test

import (
	"testing"

	"github.com/kopexa-grc/magiclink/metrics"
	"github.com/kopexa-grc/magiclink/verify"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveIssueIncrementsByKid(t *testing.T) {
	r := metrics.NewRegistry()

	r.ObserveIssue("k1")
	r.ObserveIssue("k1")
	r.ObserveIssue("k2")

	assert.InDelta(t, 2, testutil.ToFloat64(r.IssuedTotal.WithLabelValues("k1")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.IssuedTotal.WithLabelValues("k2")), 0)
}

func TestObserveVerifyIncrementsByReason(t *testing.T) {
	r := metrics.NewRegistry()

	r.ObserveVerify("")
	r.ObserveVerify(string(verify.ReasonReplayed))
	r.ObserveVerify(string(verify.ReasonReplayed))

	assert.InDelta(t, 1, testutil.ToFloat64(r.VerifiedTotal.WithLabelValues("")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.VerifiedTotal.WithLabelValues(string(verify.ReasonReplayed))), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.ReplayedTotal), 0)
}
