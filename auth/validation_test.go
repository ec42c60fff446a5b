package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridebook/go-ride-client/auth"
)

func TestNormalizeE164(t *testing.T) {
	t.Run("ten digits get the default country code", func(t *testing.T) {
		require.Equal(t, "+919876543210", auth.NormalizeE164("9876543210"))
	})

	t.Run("formatting characters are stripped before the length test", func(t *testing.T) {
		require.Equal(t, "+919876543210", auth.NormalizeE164("98765 43210"))
		require.Equal(t, "+919876543210", auth.NormalizeE164("987-654-3210"))
	})

	t.Run("leading plus passes through unchanged", func(t *testing.T) {
		require.Equal(t, "+15551234567", auth.NormalizeE164("+15551234567"))
		require.Equal(t, "+919876543210", auth.NormalizeE164("+919876543210"))
	})

	t.Run("other lengths pass through as given", func(t *testing.T) {
		require.Equal(t, "12345", auth.NormalizeE164("12345"))
		require.Equal(t, "", auth.NormalizeE164(""))
	})

	t.Run("normalization is deterministic", func(t *testing.T) {
		first := auth.NormalizeE164("9876543210")
		for i := 0; i < 5; i++ {
			require.Equal(t, first, auth.NormalizeE164("9876543210"))
		}
	})
}

func TestDigits(t *testing.T) {
	require.Equal(t, "9876543210", auth.Digits("+91 98765-43210")[2:])
	require.Equal(t, "", auth.Digits("abc"))
}

func TestValidateCode(t *testing.T) {
	t.Run("valid six digit code", func(t *testing.T) {
		require.NoError(t, auth.ValidateCode("123456"))
	})

	t.Run("empty", func(t *testing.T) {
		require.ErrorIs(t, auth.ValidateCode(""), auth.CodeRequiredErr)
	})

	t.Run("wrong length", func(t *testing.T) {
		require.ErrorIs(t, auth.ValidateCode("12345"), auth.CodeLengthErr)
		require.ErrorIs(t, auth.ValidateCode("1234567"), auth.CodeLengthErr)
	})

	t.Run("non-digits rejected", func(t *testing.T) {
		require.ErrorIs(t, auth.ValidateCode("12a456"), auth.CodeLengthErr)
	})
}
