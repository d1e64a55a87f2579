package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestHashPasswordClampsCost(t *testing.T) {
	// out-of-range costs fall back to the bcrypt default instead of
	// erroring
	hash, err := HashPassword("s3cret-pass", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
}

func TestRefreshTokenHashing(t *testing.T) {
	tok, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, tok.Raw, 96)

	h1 := HashRefreshRaw(tok.Raw)
	h2 := HashRefreshRaw(tok.Raw)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, tok.Raw, h1)
	assert.Len(t, h1, 64)
}

func TestAccessTokenExpiry(t *testing.T) {
	tok, err := NewAccessToken("secret", 7, "CUSTOMER", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.True(t, tok.Exp.After(time.Now()))
	assert.True(t, tok.Exp.Before(time.Now().Add(6*time.Minute)))
}
