// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package encoding_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/kopexa-grc/magiclink/encoding"
	merr "github.com/kopexa-grc/magiclink/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase64URLEncode(t *testing.T) {
	// Scenario #7: base64url of 0xF0 0x9F 0x92 0xA9 is the literal "8J-SqQ".
	got := encoding.Base64URLEncode([]byte{0xF0, 0x9F, 0x92, 0xA9})
	assert.Equal(t, "8J-SqQ", got)
}

func TestBase64URLRoundTrip(t *testing.T) {
	data := []byte("hello, magic link")
	encoded := encoding.Base64URLEncode(data)

	decoded, err := encoding.Base64URLDecode(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestBase64URLDecodeEmpty(t *testing.T) {
	decoded, err := encoding.Base64URLDecode("")
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestBase64URLDecodeInvalidCharacter(t *testing.T) {
	_, err := encoding.Base64URLDecode("not+valid/base64==")
	require.Error(t, err)
	assert.True(t, merr.IsInvalidFormat(err))
}

func TestCanonicalJSONKeyOrdering(t *testing.T) {
	// Scenario #8.
	input := map[string]interface{}{
		"z": 1,
		"a": 2,
		"nested": map[string]interface{}{
			"b": 1,
			"a": 2,
		},
	}

	out, err := encoding.CanonicalJSON(input)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"nested":{"a":2,"b":1},"z":1}`, string(out))
}

func TestCanonicalJSONStable(t *testing.T) {
	input := map[string]interface{}{"x": "a/b", "y": "ünïcödé"}

	first, err := encoding.CanonicalJSON(input)
	require.NoError(t, err)

	var reparsed interface{}
	require.NoError(t, json.Unmarshal(first, &reparsed))

	second, err := encoding.CanonicalJSON(reparsed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), "a/b")
	assert.NotContains(t, string(first), `\/`)
}

func TestCanonicalJSONRejectsNonFiniteFloat(t *testing.T) {
	_, err := encoding.CanonicalJSON(map[string]interface{}{"v": math.Inf(1)})
	require.Error(t, err)
	assert.True(t, merr.IsInvalidFormat(err))
}

func TestCanonicalJSONIntegerHasNoDecimalPoint(t *testing.T) {
	out, err := encoding.CanonicalJSON(map[string]interface{}{"n": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, `{"n":2}`, string(out))
}

func TestDecodeObjectRejectsArray(t *testing.T) {
	_, err := encoding.DecodeObject([]byte(`[1,2,3]`))
	require.Error(t, err)
	assert.True(t, merr.IsInvalidFormat(err))
}

func TestDecodeObjectRejectsScalar(t *testing.T) {
	_, err := encoding.DecodeObject([]byte(`"hi"`))
	require.Error(t, err)
	assert.True(t, merr.IsInvalidFormat(err))
}

func TestDecodeObjectAccepts(t *testing.T) {
	obj, err := encoding.DecodeObject([]byte(`{"alg":"HS256","kid":"int"}`))
	require.NoError(t, err)
	assert.Equal(t, "HS256", obj["alg"])
}
