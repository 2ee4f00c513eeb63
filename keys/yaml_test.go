// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package keys_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/kopexa-grc/magiclink/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeySetYAML(t *testing.T) {
	doc := `
keys:
  - kid: int
    secret: ` + b64(32) + `
    created_at: 1000
  - kid: old
    secret: ` + b64(32) + `
    created_at: 500
    expires_at: 900
`

	set, err := keys.LoadKeySetYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())

	k, ok := set.Find("int")
	require.True(t, ok)
	assert.Nil(t, k.ExpiresAt)

	old, ok := set.Find("old")
	require.True(t, ok)
	require.NotNil(t, old.ExpiresAt)
	assert.Equal(t, int64(900), *old.ExpiresAt)
}

func TestLoadKeySetYAMLInvalidSecret(t *testing.T) {
	doc := `
keys:
  - kid: int
    secret: "not base64!!"
    created_at: 1000
`
	_, err := keys.LoadKeySetYAML(strings.NewReader(doc))
	require.Error(t, err)
}

func b64(n int) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", n)))
}
