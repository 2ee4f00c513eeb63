// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package claims

import (
	"strings"

	merr "github.com/kopexa-grc/magiclink/errors"
)

// Token is the three-segment compact wire container:
//
//	base64url(header) "." base64url(payload) "." base64url(signature)
type Token struct {
	HeaderSegment    string
	PayloadSegment   string
	SignatureSegment string
}

// String renders the dot-joined compact token.
func (t Token) String() string {
	return t.HeaderSegment + "." + t.PayloadSegment + "." + t.SignatureSegment
}

// SigningInput returns the bytes the MAC is computed over: header "." payload.
func (t Token) SigningInput() []byte {
	return []byte(t.HeaderSegment + "." + t.PayloadSegment)
}

// ParseToken splits a compact token string into its three segments. This is
// pure syntax — it does not base64-decode or interpret the segments — so it
// never fails for any reason other than "not exactly three dot-separated
// parts", matching spec.md §4.6 step 1 (malformed_token).
func ParseToken(s string) (Token, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Token{}, merr.NewInvalidFormat("token: expected exactly three segments")
	}

	return Token{
		HeaderSegment:    parts[0],
		PayloadSegment:   parts[1],
		SignatureSegment: parts[2],
	}, nil
}
