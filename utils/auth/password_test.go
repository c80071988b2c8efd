package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hashed, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hashed)

	assert.NoError(t, VerifyPassword(hashed, "correct horse battery"))
	assert.Error(t, VerifyPassword(hashed, "wrong password"))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestVerifyPassword_EmptyHash(t *testing.T) {
	// OAuth-only accounts store no hash and must never verify
	assert.ErrorIs(t, VerifyPassword("", "any password"), ErrPasswordMismatch)
}
