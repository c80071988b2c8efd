package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-key",
		Expiry:        expiry,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "thesistrack-test",
	})
}

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	mgr := testManager(time.Hour)

	token, err := mgr.GenerateAccessToken("u1", "student@example.com", "student")
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "student@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "thesistrack-test", claims.Issuer)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	mgr := testManager(-time.Minute)

	token, err := mgr.GenerateAccessToken("u1", "student@example.com", "student")
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	mgr := testManager(time.Hour)
	other := NewJWTManager(JWTConfig{Secret: "other-secret", Expiry: time.Hour, RefreshExpiry: time.Hour})

	token, err := mgr.GenerateAccessToken("u1", "student@example.com", "student")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RefreshAccessToken(t *testing.T) {
	mgr := testManager(time.Hour)

	refresh, err := mgr.GenerateRefreshToken("u1", "student@example.com", "student")
	require.NoError(t, err)

	access, err := mgr.RefreshAccessToken(refresh)
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
}

func TestJWTManager_RefreshRejectsAccessToken(t *testing.T) {
	mgr := testManager(time.Hour)

	access, err := mgr.GenerateAccessToken("u1", "student@example.com", "student")
	require.NoError(t, err)

	_, err = mgr.RefreshAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
