package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)
	assert.NotContains(t, hash, "admin123")

	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "Admin123"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestHashPasswordIsSalted(t *testing.T) {
	h1, err := HashPassword("same-secret")
	require.NoError(t, err)
	h2, err := HashPassword("same-secret")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCheckPasswordRejectsMalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "admin123"))
}
