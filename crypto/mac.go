// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package crypto implements the two cryptographic primitives the token
// pipeline needs: keyed HMAC-SHA-256 (mandatory integrity) and AES-256-GCM
// (optional confidentiality). Every comparison against attacker-supplied
// bytes here runs in constant time.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/kopexa-grc/magiclink/keys"
)

// Sign computes HMAC-SHA256(signingInput) under the key's raw secret.
func Sign(key keys.Key, signingInput []byte) []byte {
	mac := hmac.New(sha256.New, key.Secret)
	mac.Write(signingInput)

	return mac.Sum(nil)
}

// Verify reports whether signature is the correct HMAC-SHA256 of
// signingInput under key's secret. The candidate signature is compared
// against a freshly computed MAC using hmac.Equal, which runs in constant
// time — comparing attacker-controlled bytes any other way is the textbook
// timing side channel this whole package exists to avoid.
func Verify(key keys.Key, signingInput, signature []byte) bool {
	expected := Sign(key, signingInput)
	return hmac.Equal(expected, signature)
}
