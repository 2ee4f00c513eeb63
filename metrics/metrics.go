// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package metrics wires issue/verify outcomes into prometheus counters,
// following the registry-wrapper shape used for HTTP metrics elsewhere in
// the codebase: a small struct around a *prometheus.Registry with the
// counters pre-registered, rather than relying on the global default
// registry.
package metrics

import (
	"github.com/kopexa-grc/magiclink/verify"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "magiclink"

// Labels used across the counters below.
const (
	LabelReason = "reason"
	LabelKid    = "kid"
)

// Registry holds the counters the issue and verify pipelines report to.
type Registry struct {
	*prometheus.Registry

	IssuedTotal   *prometheus.CounterVec
	VerifiedTotal *prometheus.CounterVec
	ReplayedTotal prometheus.Counter
}

// NewRegistry builds a fresh Registry with every counter registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	issued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issued_total",
		Help:      "Number of tokens issued, labeled by signing key id.",
	}, []string{LabelKid})

	verified := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verified_total",
		Help:      "Number of verify attempts, labeled by outcome reason (empty string for success).",
	}, []string{LabelReason})

	replayed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "replayed_total",
		Help:      "Number of verify attempts rejected specifically as replays.",
	})

	r.MustRegister(issued, verified, replayed)

	return &Registry{
		Registry:      r,
		IssuedTotal:   issued,
		VerifiedTotal: verified,
		ReplayedTotal: replayed,
	}
}

// ObserveIssue records a successful Issue call under kid.
func (r *Registry) ObserveIssue(kid string) {
	r.IssuedTotal.WithLabelValues(kid).Inc()
}

// ObserveVerify records a Verify outcome. reason is "" on success.
func (r *Registry) ObserveVerify(reason string) {
	r.VerifiedTotal.WithLabelValues(reason).Inc()

	if reason == string(verify.ReasonReplayed) {
		r.ReplayedTotal.Inc()
	}
}
