// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

// Package claims implements the Claims payload value object and the
// three-segment Token container (spec.md §3). Claims are created once per
// issue, never mutated, and dropped as soon as a verify result has been
// handed back to the caller.
package claims

import (
	"encoding/json"
	"strconv"

	merr "github.com/kopexa-grc/magiclink/errors"
	"github.com/kopexa-grc/magiclink/ptr"
)

// Reserved keys the verifier inspects inside App. There is no schema beyond
// presence-and-type checks at these keys (spec.md §9).
const (
	AppBindPath = "bind.path"
	AppBindHost = "bind.host"
	AppUAHash   = "uah"
	AppReturnTo = "return_to"
)

// Claims is the token payload: a subject, a timing window, and a
// caller-defined application claim bag.
type Claims struct {
	Sub string                 `json:"sub"`
	Iat int64                  `json:"iat"`
	Exp int64                  `json:"exp"`
	Aud *string                `json:"aud,omitempty"`
	Nbf *int64                 `json:"nbf,omitempty"`
	Jti *string                `json:"jti,omitempty"`
	App map[string]interface{} `json:"app,omitempty"`
}

// FromMap validates and decodes a generic JSON object (as produced by
// encoding.DecodeObject) into Claims, enforcing the shape contract of
// spec.md §4.6 step 8. Only types are checked here; sub non-emptiness is
// a construction-time invariant and is not re-checked during verify.
func FromMap(m map[string]interface{}) (Claims, error) {
	sub, ok := m["sub"].(string)
	if !ok {
		return Claims{}, merr.NewInvalidFormat("claims: sub must be a string")
	}

	iat, err := intField(m, "iat")
	if err != nil {
		return Claims{}, err
	}

	exp, err := intField(m, "exp")
	if err != nil {
		return Claims{}, err
	}

	c := Claims{Sub: sub, Iat: iat, Exp: exp}

	if rawAud, present := m["aud"]; present {
		aud, ok := rawAud.(string)
		if !ok {
			return Claims{}, merr.NewInvalidFormat("claims: aud must be a string")
		}
		c.Aud = ptr.To(aud)
	}

	if _, present := m["nbf"]; present {
		nbf, err := intField(m, "nbf")
		if err != nil {
			return Claims{}, err
		}
		c.Nbf = ptr.To(nbf)
	}

	if rawJti, present := m["jti"]; present {
		jti, ok := rawJti.(string)
		if !ok {
			return Claims{}, merr.NewInvalidFormat("claims: jti must be a string")
		}
		c.Jti = ptr.To(jti)
	}

	if rawApp, present := m["app"]; present {
		app, ok := rawApp.(map[string]interface{})
		if !ok {
			return Claims{}, merr.NewInvalidFormat("claims: app must be an object")
		}
		c.App = app
	}

	return c, nil
}

func intField(m map[string]interface{}, key string) (int64, error) {
	raw, ok := m[key]
	if !ok {
		return 0, merr.NewInvalidFormat("claims: missing field " + key)
	}

	num, ok := raw.(json.Number)
	if !ok {
		return 0, merr.NewInvalidFormat("claims: " + key + " must be an integer")
	}

	v, err := strconv.ParseInt(num.String(), 10, 64)
	if err != nil {
		return 0, merr.NewInvalidFormatf("claims: "+key+" must be an integer", err)
	}

	return v, nil
}

// AppString returns App[key] as a string, along with whether it was present
// and string-typed. This is the presence-and-type check the verifier runs
// against bind.path/bind.host/uah/return_to.
func (c Claims) AppString(key string) (string, bool) {
	if c.App == nil {
		return "", false
	}

	v, ok := c.App[key].(string)

	return v, ok
}
