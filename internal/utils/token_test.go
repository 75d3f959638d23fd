package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken()
	require.NoError(t, err)
	b, err := NewOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", a)
	assert.NotEqual(t, a, b)
}

func TestHashTokenRawIsStable(t *testing.T) {
	h1 := HashTokenRaw("some-token")
	h2 := HashTokenRaw("some-token")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotEqual(t, h1, HashTokenRaw("other-token"))
	assert.NotEqual(t, "some-token", h1)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong horse"))
}

func TestVerifyPasswordEmptyHashNeverMatches(t *testing.T) {
	// a user without a hash has not activated yet
	assert.False(t, VerifyPassword("", ""))
	assert.False(t, VerifyPassword("", "anything"))
}
