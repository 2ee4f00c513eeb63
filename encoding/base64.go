// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package encoding implements the byte-deterministic building blocks the
// token pipeline signs over: URL-safe unpadded Base64 and canonical JSON.
// Every behavior here is load-bearing: a single reordered object key or a
// re-added padding byte changes the bytes HMAC is computed over and breaks
// every previously issued token.
package encoding

import (
	"encoding/base64"
	"regexp"

	merr "github.com/kopexa-grc/magiclink/errors"
)

var base64URLAlphabet = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

// Base64URLEncode encodes data as unpadded URL-safe Base64.
func Base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// Base64URLDecode decodes an unpadded URL-safe Base64 string. Empty input
// decodes to empty output. Any byte outside [A-Za-z0-9_-] is rejected with
// InvalidFormat before the underlying decode runs, so malformed segments
// never reach the standard library decoder with a confusing error.
func Base64URLDecode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}

	if !base64URLAlphabet.MatchString(s) {
		return nil, merr.NewInvalidFormat("base64url: invalid character in input")
	}

	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, merr.NewInvalidFormatf("base64url: decode failed", err)
	}

	return decoded, nil
}
