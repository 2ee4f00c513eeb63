// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package keys

import (
	"encoding/base64"
	"io"

	"github.com/goccy/go-yaml"
	merr "github.com/kopexa-grc/magiclink/errors"
)

// yamlKey mirrors the on-disk shape of one entry in a key set file:
//
//	keys:
//	  - kid: "int"
//	    secret: base64-encoded-bytes
//	    created_at: 1700000000
//	    expires_at: 1800000000 # optional
type yamlKey struct {
	Kid       string `yaml:"kid"`
	Secret    string `yaml:"secret"`
	CreatedAt int64  `yaml:"created_at"`
	ExpiresAt *int64 `yaml:"expires_at,omitempty"`
}

type yamlKeySet struct {
	Keys []yamlKey `yaml:"keys"`
}

// LoadKeySetYAML loads a static KeySet from a YAML document, using
// goccy/go-yaml for parsing. This is bootstrapping convenience only: the
// core never writes this file back out, and nothing in this package
// schedules a reload.
func LoadKeySetYAML(r io.Reader) (*KeySet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, merr.NewInvalidFormatf("keys: failed to read key set document", err)
	}

	var doc yamlKeySet
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, merr.NewInvalidFormatf("keys: failed to parse key set document", err)
	}

	set := NewKeySet()

	for _, yk := range doc.Keys {
		secret, err := base64.StdEncoding.DecodeString(yk.Secret)
		if err != nil {
			return nil, merr.NewInvalidFormatf("keys: secret for kid "+yk.Kid+" is not valid base64", err)
		}

		k, err := New(yk.Kid, secret, yk.CreatedAt, yk.ExpiresAt)
		if err != nil {
			return nil, err
		}

		set.Add(k)
	}

	return set, nil
}
