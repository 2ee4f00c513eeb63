// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package validation

import "strings"

// Allowlist is the capability spec.md §9 calls "a single-input
// string-to-bool capability": implementers may supply any func(string) bool,
// but most callers just want "starts with one of these origins", so this
// package offers a small builder for that common case.
type Allowlist func(returnTo string) bool

// NewOriginAllowlist returns an Allowlist that accepts a return_to value iff
// it has one of the given origins (scheme://host[:port]) as a prefix.
// Comparison is ordinary (non-constant-time): origins are not secret, so
// there is no timing side channel worth paying for here, unlike the
// signature/host/UA comparisons inside package verify.
func NewOriginAllowlist(origins ...string) Allowlist {
	allowed := make([]string, len(origins))
	copy(allowed, origins)

	return func(returnTo string) bool {
		for _, origin := range allowed {
			if strings.HasPrefix(returnTo, origin) {
				return true
			}
		}
		return false
	}
}
