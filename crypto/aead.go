// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	merr "github.com/kopexa-grc/magiclink/errors"
	"github.com/kopexa-grc/magiclink/keys"
)

const (
	// AESKeySize is the AES-256 key size in bytes.
	AESKeySize = 32
	// NonceSize is the GCM IV size in bytes (96 bits).
	NonceSize = 12
	// TagSize is the GCM authentication tag size in bytes (128 bits).
	TagSize = 16
)

// Envelope is the AEAD envelope spec.md §6 describes as the payload shape
// when the header carries enc=A256GCM: iv, tag and ct, each raw bytes (the
// caller base64url-encodes them for the wire format).
type Envelope struct {
	IV  []byte
	Tag []byte
	CT  []byte
}

// IsAvailable reports whether the runtime supports AES-256-GCM. This is
// always true on every platform the Go toolchain targets; the predicate
// exists so callers can probe availability before committing to an
// encrypted issue, and so a future constrained build (e.g. FIPS-only mode)
// has a single place to flip it off.
func IsAvailable() bool {
	return true
}

func aeadFor(secret []byte) (cipher.AEAD, error) {
	key := secret
	if len(key) > AESKeySize {
		// spec.md §4.4: "ingests the first 32 bytes of the key secret when longer".
		key = key[:AESKeySize]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, merr.NewCryptoErrorf("cipher: failed to construct AES block", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, merr.NewCryptoErrorf("cipher: failed to construct GCM", err)
	}

	return gcm, nil
}

// Encrypt seals plaintext under key.Secret with aad as associated data,
// returning a fresh random IV, the ciphertext, and the authentication tag.
// aad is always the encoded header segment (spec.md §4.4), binding the
// header to the ciphertext so it cannot be swapped after the fact.
func Encrypt(key keys.Key, plaintext, aad []byte) (Envelope, error) {
	if !key.SupportsAEAD() {
		return Envelope{}, merr.NewCryptoError("cipher: key secret too short for AES-256-GCM")
	}

	gcm, err := aeadFor(key.Secret)
	if err != nil {
		return Envelope{}, err
	}

	iv := make([]byte, NonceSize)
	if _, err := rand.Read(iv); err != nil {
		return Envelope{}, merr.NewCryptoErrorf("cipher: failed to generate iv", err)
	}

	sealed := gcm.Seal(nil, iv, plaintext, aad)
	ct := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	return Envelope{IV: iv, Tag: tag, CT: ct}, nil
}

// Decrypt opens an Envelope under key.Secret with aad as associated data.
// Any failure — wrong key, tampered ciphertext, tampered tag, mismatched
// aad — surfaces as CryptoError; callers in package verify translate that
// into the decrypt_failed reason code rather than propagating the error.
func Decrypt(key keys.Key, env Envelope, aad []byte) ([]byte, error) {
	if !key.SupportsAEAD() {
		return nil, merr.NewCryptoError("cipher: key secret too short for AES-256-GCM")
	}

	gcm, err := aeadFor(key.Secret)
	if err != nil {
		return nil, err
	}

	if len(env.IV) != NonceSize || len(env.Tag) != TagSize {
		return nil, merr.NewCryptoError("cipher: malformed envelope dimensions")
	}

	sealed := append(append([]byte(nil), env.CT...), env.Tag...)

	plaintext, err := gcm.Open(nil, env.IV, sealed, aad)
	if err != nil {
		return nil, merr.NewCryptoErrorf("cipher: decryption failed", err)
	}

	return plaintext, nil
}
