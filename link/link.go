// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package link implements LinkBuilder: the issuing half of the pipeline,
// turning a subject and a set of options into a signed, optionally
// encrypted compact token and, from there, a full magic-link URL.
package link

import (
	"net/url"

	"github.com/kopexa-grc/magiclink/claims"
	"github.com/kopexa-grc/magiclink/clock"
	mcrypto "github.com/kopexa-grc/magiclink/crypto"
	"github.com/kopexa-grc/magiclink/encoding"
	merr "github.com/kopexa-grc/magiclink/errors"
	"github.com/kopexa-grc/magiclink/keys"
	"github.com/kopexa-grc/magiclink/logger"
	"github.com/kopexa-grc/magiclink/ptr"
	"github.com/kopexa-grc/magiclink/validation"
	"github.com/rs/zerolog/log"
)

// DefaultTTLSeconds is the token lifetime applied when CreateOptions.TTLSeconds
// is zero (spec.md §6).
const DefaultTTLSeconds = 900

// DefaultParamName is the URL query parameter a token is carried under when
// the caller does not override it.
const DefaultParamName = "ml"

// CreateOptions controls how Issue composes a token (spec.md §6).
type CreateOptions struct {
	// Aud sets claims.aud for audience binding.
	Aud string
	// TTLSeconds sets exp = now + max(1, TTLSeconds); zero uses DefaultTTLSeconds.
	TTLSeconds int64
	// OneTime, when true (the zero value's effective default, see Issue),
	// emits a jti so the verify side can enforce single use.
	OneTime bool
	// OneTimeSet distinguishes "OneTime explicitly set to false" from
	// "caller didn't touch the field", since spec.md §6 says OneTime
	// defaults to true. Callers using NewCreateOptions never need this.
	OneTimeSet bool
	// EncryptPayload applies AEAD over the claims payload; Issue fails
	// with CryptoError if the signing key cannot support it.
	EncryptPayload bool
	// PathBind is stored as claims.app["bind.path"].
	PathBind string
	// ReturnTo is stored as claims.app["return_to"].
	ReturnTo string
	// App is a free-form claim bag merged under the reserved keys; core-set
	// keys (bind.path, return_to) overwrite colliding caller keys.
	App map[string]interface{}
}

// NewCreateOptions returns CreateOptions with OneTime defaulted to true, the
// spec's documented default (spec.md §6).
func NewCreateOptions() CreateOptions {
	return CreateOptions{OneTime: true, OneTimeSet: true}
}

func (o CreateOptions) oneTime() bool {
	if !o.OneTimeSet {
		return true
	}

	return o.OneTime
}

// header is the wire representation of the token header (spec.md §6).
type header struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Enc string `json:"enc,omitempty"`
}

// envelopePayload is the wire representation of an AEAD-encrypted payload
// (spec.md §6): iv, tag and ct, each URL-safe Base64 of the raw bytes.
type envelopePayload struct {
	IV  string `json:"iv"`
	Tag string `json:"tag"`
	CT  string `json:"ct"`
}

// LinkBuilder issues tokens and assembles magic-link URLs from them.
type LinkBuilder struct {
	Keys  *keys.KeySet
	Clock clock.Clock
}

// New constructs a LinkBuilder over the given key set and clock.
func New(ks *keys.KeySet, c clock.Clock) *LinkBuilder {
	return &LinkBuilder{Keys: ks, Clock: c}
}

// Issue runs the nine-step issue algorithm of spec.md §4.5 and returns the
// compact token string header.payload.signature.
func (b *LinkBuilder) Issue(subject string, opts CreateOptions) (string, error) {
	if subject == "" {
		return "", merr.NewCryptoError("link: subject must not be empty")
	}

	now := b.Clock.Now()

	// 1. Select signing key.
	key, err := b.Keys.GetForSign(now)
	if err != nil {
		return "", err
	}

	if opts.EncryptPayload && !key.SupportsAEAD() {
		return "", merr.NewCryptoError("link: signing key cannot support AES-256-GCM encryption")
	}

	// 2. Compute exp.
	ttl := opts.TTLSeconds
	if ttl == 0 {
		ttl = DefaultTTLSeconds
	}

	exp := now + max64(1, ttl)

	// 3. Generate jti if one-time.
	var jti *string
	if opts.oneTime() {
		id := claims.GenerateJTI()
		jti = &id
	}

	// 4. Compose app claims; core-set keys overwrite colliding caller keys.
	app := make(map[string]interface{}, len(opts.App)+2)
	for k, v := range opts.App {
		app[k] = v
	}

	if opts.PathBind != "" {
		app[claims.AppBindPath] = opts.PathBind
	}

	if opts.ReturnTo != "" {
		app[claims.AppReturnTo] = opts.ReturnTo
	}

	// 5. Build Claims.
	c := claims.Claims{
		Sub: subject,
		Iat: now,
		Exp: exp,
		Jti: jti,
	}

	if opts.Aud != "" {
		c.Aud = ptr.To(opts.Aud)
	}

	if len(app) > 0 {
		c.App = app
	}

	// 6. Build header; canonicalize and encode.
	h := header{Alg: "HS256", Kid: key.Kid}
	if opts.EncryptPayload {
		h.Enc = "A256GCM"
	}

	headerJSON, err := encoding.CanonicalJSON(h)
	if err != nil {
		return "", err
	}

	headerSegment := encoding.Base64URLEncode(headerJSON)

	// 7. Canonicalize the payload; encrypt if requested.
	payloadJSON, err := encoding.CanonicalJSON(c)
	if err != nil {
		return "", err
	}

	if opts.EncryptPayload {
		env, err := mcrypto.Encrypt(key, payloadJSON, []byte(headerSegment))
		if err != nil {
			return "", err
		}

		envJSON, err := encoding.CanonicalJSON(envelopePayload{
			IV:  encoding.Base64URLEncode(env.IV),
			Tag: encoding.Base64URLEncode(env.Tag),
			CT:  encoding.Base64URLEncode(env.CT),
		})
		if err != nil {
			return "", err
		}

		payloadJSON = envJSON

		log.Debug().Str(logger.FieldKeyID, key.Kid).Bool(logger.FieldEncrypted, true).Msg("magiclink: issued encrypted token")
	}

	payloadSegment := encoding.Base64URLEncode(payloadJSON)

	// 8. HMAC over header.payload.
	signingInput := []byte(headerSegment + "." + payloadSegment)
	signature := mcrypto.Sign(key, signingInput)
	signatureSegment := encoding.Base64URLEncode(signature)

	// 9. Return the compact token.
	tok := claims.Token{
		HeaderSegment:    headerSegment,
		PayloadSegment:   payloadSegment,
		SignatureSegment: signatureSegment,
	}

	return tok.String(), nil
}

// CreateURL assembles a URL by merging token into baseURL's query string
// under paramName (DefaultParamName if empty), preserving scheme,
// userinfo, host, port, path and fragment (spec.md §4.5).
func (b *LinkBuilder) CreateURL(baseURL, token, paramName string) (string, error) {
	if err := validation.IsValidURL(baseURL); err != nil {
		return "", merr.NewInvalidFormatf("link: invalid base URL", err)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", merr.NewInvalidFormatf("link: failed to parse base URL", err)
	}

	if paramName == "" {
		paramName = DefaultParamName
	}

	q := u.Query()
	q.Set(paramName, token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// IssueAndCreateURL issues a token for subject and immediately assembles
// the resulting magic-link URL, the common case for callers that never
// need the bare token string.
func (b *LinkBuilder) IssueAndCreateURL(subject string, opts CreateOptions, baseURL, paramName string) (string, error) {
	token, err := b.Issue(subject, opts)
	if err != nil {
		return "", err
	}

	return b.CreateURL(baseURL, token, paramName)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}
