package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, pw := range []string{"password123", "correct horse battery staple", "ünïcödé-pässwörd", ""} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hash, "hash must not contain the plaintext")
		assert.True(t, h.Verify(pw, hash), "verify(%q, hash(%q))", pw, pw)
	}
}

func TestHasher_MismatchFails(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("password123")
	require.NoError(t, err)

	assert.False(t, h.Verify("password124", hash))
	assert.False(t, h.Verify("Password123", hash))
	assert.False(t, h.Verify("", hash))
}

func TestHasher_SaltedPerCall(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same-password", a))
	assert.True(t, h.Verify("same-password", b))
}

func TestHasher_MalformedHashIsMismatch(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, stored := range []string{"", "not-a-hash", "$2a$10$short", strings.Repeat("$", 60)} {
		assert.NotPanics(t, func() {
			assert.False(t, h.Verify("password123", stored))
		})
	}
}

func TestHasher_RejectsOverlongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestNewHasher_InvalidCostFallsBackToDefault(t *testing.T) {
	h := NewHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}
