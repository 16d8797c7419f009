package loginflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAPIID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		apiID, err := parseAPIID(" 12345 ")
		require.NoError(t, err)
		require.Equal(t, 12345, apiID)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseAPIID("   ")
		require.Error(t, err)
	})

	t.Run("non numeric", func(t *testing.T) {
		_, err := parseAPIID("abc123")
		require.Error(t, err)
	})

	t.Run("negative", func(t *testing.T) {
		_, err := parseAPIID("-5")
		require.Error(t, err)
	})
}

func TestValidateAPIHash(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		hash, err := validateAPIHash(" 0123456789abcdef ")
		require.NoError(t, err)
		require.Equal(t, "0123456789abcdef", hash)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := validateAPIHash("")
		require.Error(t, err)
	})
}

func TestValidatePhoneNumber(t *testing.T) {
	t.Run("with country code", func(t *testing.T) {
		phone, err := validatePhoneNumber("+1 555 123 4567")
		require.NoError(t, err)
		require.Equal(t, "+15551234567", phone)
	})

	t.Run("digits only", func(t *testing.T) {
		phone, err := validatePhoneNumber("15551234567")
		require.NoError(t, err)
		require.Equal(t, "15551234567", phone)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := validatePhoneNumber("")
		require.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := validatePhoneNumber("+123")
		require.Error(t, err)
	})

	t.Run("letters", func(t *testing.T) {
		_, err := validatePhoneNumber("call-me")
		require.Error(t, err)
	})
}
