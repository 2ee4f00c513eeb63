// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package verify implements the strict verification pipeline of
// spec.md §4.6: parse, authenticate, decrypt, validate timing and
// context, then — and only then — consume the replay nonce. No step
// ever raises a Go error for attacker-controlled input; every such
// failure funnels into a Result with exactly one Reason.
package verify

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/url"
	"strings"

	"github.com/kopexa-grc/magiclink/claims"
	mcrypto "github.com/kopexa-grc/magiclink/crypto"
	"github.com/kopexa-grc/magiclink/encoding"
	"github.com/kopexa-grc/magiclink/keys"
	"github.com/kopexa-grc/magiclink/logger"
	"github.com/kopexa-grc/magiclink/noncestore"
	"github.com/kopexa-grc/magiclink/ptr"
	"github.com/rs/zerolog/log"
)

// Reason is one of the value-error codes spec.md §7 enumerates.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonMalformedToken      Reason = "malformed_token"
	ReasonMalformedHeader     Reason = "malformed_header"
	ReasonMalformedPayload    Reason = "malformed_payload"
	ReasonUnknownKid          Reason = "unknown_kid"
	ReasonSignatureMismatch   Reason = "signature_mismatch"
	ReasonEncryptionUnavail   Reason = "encryption_unavailable"
	ReasonDecryptFailed       Reason = "decrypt_failed"
	ReasonTokenExpired        Reason = "token_expired"
	ReasonTokenEarly          Reason = "token_early"
	ReasonClockSkew           Reason = "clock_skew"
	ReasonAudMismatch         Reason = "aud_mismatch"
	ReasonPathMismatch        Reason = "path_mismatch"
	ReasonHostMismatch        Reason = "host_mismatch"
	ReasonUAMismatch          Reason = "ua_mismatch"
	ReasonReplayed            Reason = "replayed"
	ReasonOneTimeRequired     Reason = "one_time_required"
	ReasonReturnToDenied      Reason = "return_to_denied"
)

// Result is the outcome of a single Verify call: either Ok and Claims are
// populated, or Ok is false and Reason names exactly which step failed. Kid
// carries the header-claimed key id once the header has been decoded, for
// callers that want to log a rejection alongside the key it was issued
// under; it is empty for failures that occur before the header is parsed.
type Result struct {
	Ok     bool
	Claims claims.Claims
	Reason Reason
	Kid    string
}

func fail(reason Reason) Result {
	return Result{Ok: false, Reason: reason}
}

// Allowlist is an alias for the plain predicate type, so a
// validation.Allowlist (or any func(string) bool) can be passed without a
// conversion, and this package's public surface doesn't force every caller
// to import validation just to spell the option's type.
type Allowlist = func(returnTo string) bool

// Options controls what Verify checks beyond cryptographic integrity
// (spec.md §6, VerifyOptions).
type Options struct {
	// ExpectedAud, if set, must equal claims.aud.
	ExpectedAud string
	// ExpectedPath, if set, must match the caller-supplied Path per §4.6.1.
	ExpectedPath string
	// HasExpectedPath distinguishes "no path check" from an expected empty
	// path (which matches only an empty actual path).
	HasExpectedPath bool
	// Path is the caller-observed request path, checked against
	// ExpectedPath and independently against claims.app["bind.path"].
	Path string
	// ExpectedHost, if set, must equal Host under constant-time comparison.
	ExpectedHost string
	// HasExpectedHost mirrors HasExpectedPath for the host check.
	HasExpectedHost bool
	// Host is the caller-observed request host.
	Host string
	// RequireOneTime fails verification if claims.jti is absent.
	RequireOneTime bool
	// MaxClockSkew bounds tolerated drift between issuer and verifier
	// clocks; zero uses DefaultMaxClockSkew.
	MaxClockSkew int64
	// EnforceUAHash requires app["uah"] to match the hash of UserAgent.
	EnforceUAHash bool
	// UserAgent is the caller-observed User-Agent header value.
	UserAgent string
	// ReturnToAllowlist, if set, gates app["return_to"] when present.
	ReturnToAllowlist Allowlist
}

// DefaultMaxClockSkew is applied when Options.MaxClockSkew is zero
// (spec.md §6).
const DefaultMaxClockSkew = 120

// DefaultParamName is the URL query parameter a token travels under when a
// caller does not override it (spec.md §6, §4.6.2).
const DefaultParamName = "ml"

// Verifier runs the strict pipeline over a KeySet, a NonceStore and a
// current-time source.
type Verifier struct {
	Keys  *keys.KeySet
	Nonce noncestore.NonceStore
	Now   func() int64
}

// New constructs a Verifier.
func New(ks *keys.KeySet, nonce noncestore.NonceStore, now func() int64) *Verifier {
	return &Verifier{Keys: ks, Nonce: nonce, Now: now}
}

// Verify runs the full pipeline against a compact token string.
func (v *Verifier) Verify(token string, opts Options) Result {
	// 1-2. Segment split and Base64url decode.
	tok, err := claims.ParseToken(token)
	if err != nil {
		return fail(ReasonMalformedToken)
	}

	headerJSON, err := encoding.Base64URLDecode(tok.HeaderSegment)
	if err != nil {
		return fail(ReasonMalformedToken)
	}

	payloadRaw, err := encoding.Base64URLDecode(tok.PayloadSegment)
	if err != nil {
		return fail(ReasonMalformedToken)
	}

	signature, err := encoding.Base64URLDecode(tok.SignatureSegment)
	if err != nil {
		return fail(ReasonMalformedToken)
	}

	// 3-4. Header JSON decode and validation.
	headerMap, err := encoding.DecodeObject(headerJSON)
	if err != nil {
		return fail(ReasonMalformedHeader)
	}

	alg, _ := headerMap["alg"].(string)
	kid, _ := headerMap["kid"].(string)

	// failk mirrors fail but carries kid, now that the header has been
	// decoded; every remaining step in the pipeline can name the key a
	// rejected token claimed to be issued under.
	failk := func(reason Reason) Result {
		return Result{Ok: false, Reason: reason, Kid: kid}
	}

	if alg != "HS256" || kid == "" {
		return failk(ReasonMalformedHeader)
	}

	enc, hasEnc := headerMap["enc"]

	// 5. Key lookup.
	key, ok := v.Keys.Find(kid)
	if !ok {
		log.Debug().Str(logger.FieldKeyID, kid).Str(logger.FieldReason, string(ReasonUnknownKid)).Msg("magiclink: verify failed")
		return failk(ReasonUnknownKid)
	}

	// 6. MAC verify, before any decryption or claims parsing.
	if !mcrypto.Verify(key, tok.SigningInput(), signature) {
		log.Debug().Str(logger.FieldKeyID, kid).Str(logger.FieldReason, string(ReasonSignatureMismatch)).Msg("magiclink: verify failed")
		return failk(ReasonSignatureMismatch)
	}

	// 7. Encryption branch.
	claimsJSON := payloadRaw

	if hasEnc {
		encStr, ok := enc.(string)
		if !ok || encStr != "A256GCM" {
			return failk(ReasonMalformedHeader)
		}

		if !mcrypto.IsAvailable() {
			return failk(ReasonEncryptionUnavail)
		}

		envMap, err := encoding.DecodeObject(payloadRaw)
		if err != nil {
			return failk(ReasonMalformedPayload)
		}

		ivStr, okIV := envMap["iv"].(string)
		tagStr, okTag := envMap["tag"].(string)
		ctStr, okCT := envMap["ct"].(string)

		if !okIV || !okTag || !okCT {
			return failk(ReasonMalformedPayload)
		}

		iv, err := encoding.Base64URLDecode(ivStr)
		if err != nil {
			return failk(ReasonMalformedPayload)
		}

		tag, err := encoding.Base64URLDecode(tagStr)
		if err != nil {
			return failk(ReasonMalformedPayload)
		}

		ct, err := encoding.Base64URLDecode(ctStr)
		if err != nil {
			return failk(ReasonMalformedPayload)
		}

		plaintext, err := mcrypto.Decrypt(key, mcrypto.Envelope{IV: iv, Tag: tag, CT: ct}, []byte(tok.HeaderSegment))
		if err != nil {
			log.Debug().Str(logger.FieldKeyID, kid).Str(logger.FieldReason, string(ReasonDecryptFailed)).Msg("magiclink: verify failed")
			return failk(ReasonDecryptFailed)
		}

		claimsJSON = plaintext
	}

	payloadMap, err := encoding.DecodeObject(claimsJSON)
	if err != nil {
		return failk(ReasonMalformedPayload)
	}

	// 8. Claims shape.
	c, err := claims.FromMap(payloadMap)
	if err != nil {
		return failk(ReasonMalformedPayload)
	}

	// 9. Timing.
	skew := opts.MaxClockSkew
	if skew <= 0 {
		skew = DefaultMaxClockSkew
	}

	now := v.Now()

	if c.Iat > now+skew {
		return failk(ReasonClockSkew)
	}

	if ptr.Deref(c.Nbf, now) > now+skew {
		return failk(ReasonTokenEarly)
	}

	if c.Exp < now-skew {
		return failk(ReasonTokenExpired)
	}

	// 10. Audience.
	if opts.ExpectedAud != "" {
		if ptr.Deref(c.Aud, "") != opts.ExpectedAud {
			return failk(ReasonAudMismatch)
		}
	}

	// 11. Path.
	if opts.HasExpectedPath || opts.ExpectedPath != "" {
		if !pathMatches(opts.ExpectedPath, opts.Path) {
			return failk(ReasonPathMismatch)
		}
	}

	if boundPath, ok := c.AppString(claims.AppBindPath); ok {
		if !pathMatches(boundPath, opts.Path) {
			return failk(ReasonPathMismatch)
		}
	}

	// 12. Host.
	if opts.HasExpectedHost || opts.ExpectedHost != "" {
		if !constantTimeEqual(opts.ExpectedHost, opts.Host) {
			return failk(ReasonHostMismatch)
		}
	}

	if boundHost, ok := c.AppString(claims.AppBindHost); ok {
		if !constantTimeEqual(boundHost, opts.Host) {
			return failk(ReasonHostMismatch)
		}
	}

	// 13. User-Agent.
	if opts.EnforceUAHash {
		uah, ok := c.AppString(claims.AppUAHash)
		if !ok || opts.UserAgent == "" {
			return failk(ReasonUAMismatch)
		}

		sum := sha256.Sum256([]byte(opts.UserAgent))
		expected := encoding.Base64URLEncode(sum[:])

		if !constantTimeEqual(expected, uah) {
			return failk(ReasonUAMismatch)
		}
	}

	// 14. One-time required.
	if opts.RequireOneTime && c.Jti == nil {
		return failk(ReasonOneTimeRequired)
	}

	// 15. Return-URL allowlist.
	if returnTo, ok := c.AppString(claims.AppReturnTo); ok && opts.ReturnToAllowlist != nil {
		if !opts.ReturnToAllowlist(returnTo) {
			return failk(ReasonReturnToDenied)
		}
	}

	// 16. Replay.
	if c.Jti != nil {
		if !v.Nonce.Consume(*c.Jti, c.Exp) {
			return failk(ReasonReplayed)
		}
	}

	// 17. Success.
	return Result{Ok: true, Claims: c, Kid: kid}
}

// pathMatches implements §4.6.1: empty expected matches only empty actual;
// a trailing "*" is a literal prefix match; otherwise exact equality under
// constant-time comparison.
func pathMatches(expected, actual string) bool {
	if expected == "" {
		return actual == ""
	}

	if strings.HasSuffix(expected, "*") {
		return strings.HasPrefix(actual, strings.TrimSuffix(expected, "*"))
	}

	return constantTimeEqual(expected, actual)
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// VerifyFromRequest implements §4.6.2: if raw contains "://" it is parsed
// as a URL and the token is taken from its query parameter (paramName,
// DefaultParamName if empty); Path and Host in opts are overwritten from
// the URL. If the parameter is absent, the original string is retried as
// a raw token — tolerant but intentional (spec.md §9).
func (v *Verifier) VerifyFromRequest(raw, paramName string, opts Options) Result {
	if !strings.Contains(raw, "://") {
		return v.Verify(raw, opts)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fail(ReasonMalformedToken)
	}

	if paramName == "" {
		paramName = DefaultParamName
	}

	opts.Path = u.Path
	opts.Host = u.Host

	token := u.Query().Get(paramName)
	if token == "" {
		return v.Verify(raw, opts)
	}

	return v.Verify(token, opts)
}
