// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package validation_test

import (
	"testing"

	"github.com/kopexa-grc/magiclink/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidURL(t *testing.T) {
	t.Run("valid https", func(t *testing.T) {
		assert.NoError(t, validation.IsValidURL("https://app.test/dashboard"))
	})

	t.Run("empty", func(t *testing.T) {
		err := validation.IsValidURL("")
		require.Error(t, err)
		var verr *validation.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, validation.ErrCodeEmptyURL, verr.Code)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		err := validation.IsValidURL("ftp://app.test/file")
		require.Error(t, err)
		var verr *validation.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, validation.ErrCodeUnsupportedScheme, verr.Code)
	})

	t.Run("invalid domain", func(t *testing.T) {
		err := validation.IsValidURL("https://not a host/")
		require.Error(t, err)
	})

	t.Run("too long", func(t *testing.T) {
		long := "https://app.test/" + string(make([]byte, validation.MaxURLLength))
		err := validation.IsValidURL(long)
		require.Error(t, err)
		var verr *validation.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, validation.ErrCodeURLTooLong, verr.Code)
	})
}

func TestOriginAllowlist(t *testing.T) {
	allow := validation.NewOriginAllowlist("https://app.test", "https://admin.test")

	assert.True(t, allow("https://app.test/dashboard"))
	assert.True(t, allow("https://admin.test/"))
	assert.False(t, allow("https://evil.test/app.test"))
	assert.False(t, allow(""))
}
