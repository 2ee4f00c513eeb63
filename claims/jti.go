// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package claims

import (
	"github.com/google/uuid"
	"github.com/kopexa-grc/magiclink/encoding"
)

// GenerateJTI returns a fresh one-time token identifier: the base64url
// encoding of the 16 raw bytes of a new UUIDv4. Of those 128 bits, 122 are
// random; the 6 version and variant bits are fixed.
func GenerateJTI() string {
	id := uuid.New()
	return encoding.Base64URLEncode(id[:])
}
