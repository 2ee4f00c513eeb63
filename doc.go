// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1
//
// Package magiclink implements passwordless sign-in tokens: short-lived,
// HMAC-SHA256-signed, optionally AES-256-GCM-encrypted bearer tokens
// carried in a URL, verified against a strict pipeline that rejects
// forged, expired, context-mismatched or replayed tokens before ever
// touching the caller's application state.
//
// Design Overview
// A Service bundles the four pieces of shared state the pipeline needs:
// a keys.KeySet (signing/verification key material, supports rotation),
// a clock.Clock (injectable for deterministic tests), a
// noncestore.NonceStore (replay ledger, in-memory or NATS-backed), and an
// optional metrics.Registry. Issue delegates to package link, Verify
// delegates to package verify; Service exists so callers wire the shared
// state once instead of threading KeySet/Clock/NonceStore through every
// call site.
//
// Wire Format
// A token is three dot-separated URL-safe Base64 segments:
// base64url(header_json) "." base64url(payload_json) "." base64url(hmac).
// The payload is either the claims object directly, or — when the header
// carries enc=A256GCM — an AEAD envelope {iv, tag, ct} whose plaintext is
// the claims object. Both header and payload are canonical JSON: sorted
// keys, no insignificant whitespace, unescaped slashes and unicode, so the
// same claims always sign to the same bytes.
//
// Security Notes
//   - MAC and envelope verification happen before any claims are parsed;
//     a forged or tampered token never reaches timing or context checks.
//   - The nonce store is consumed only after every other check passes, so
//     a forged, expired, or context-mismatched token never burns a jti.
//   - Host, UA hash and exact path comparisons run in constant time;
//     wildcard ("prefix*") path matches use an ordinary prefix check.
//
// Testing Guidance
// Tests should cover: issue/verify round trip (plain and encrypted),
// tamper detection on each segment, replay of a one-time token, clock
// skew and expiry boundaries, and key rotation (a token issued under an
// older key still verifies after a newer key becomes the signing key).
package magiclink
