package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("secret", "zaafa", "zaafa", time.Hour)

	token, err := a.GenerateToken("admin")
	require.NoError(t, err)

	parsed, err := a.ValidateToken(token)
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, RoleAdmin, claims["role"])
}

func TestTokenRejectsOtherSecretAndExpiry(t *testing.T) {
	a := NewJWTAuthenticator("secret", "zaafa", "zaafa", time.Hour)
	token, err := a.GenerateToken("admin")
	require.NoError(t, err)

	other := NewJWTAuthenticator("other", "zaafa", "zaafa", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	expired := NewJWTAuthenticator("secret", "zaafa", "zaafa", -time.Minute)
	stale, err := expired.GenerateToken("admin")
	require.NoError(t, err)
	_, err = a.ValidateToken(stale)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestCredentials(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	c := Credentials{User: "admin", PasswordHash: hash}

	assert.NoError(t, c.Check("admin", "hunter2"))
	assert.ErrorIs(t, c.Check("admin", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, c.Check("root", "hunter2"), ErrInvalidCredentials)
	assert.ErrorIs(t, Credentials{}.Check("", ""), ErrInvalidCredentials)
}
