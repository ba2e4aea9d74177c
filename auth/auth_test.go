package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, algorithm, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmBcrypt, algorithm)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, VerifyPassword(hash, algorithm, "hunter2hunter2"))
	assert.False(t, VerifyPassword(hash, algorithm, "wrong"))
	assert.False(t, VerifyPassword(hash, "argon2", "hunter2hunter2"), "unknown algorithm tag never verifies")
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Generate("acc-1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenRejection(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Hour)
		token, err := other.Generate("acc-1", "user")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		short := NewTokenManager("test-secret", -time.Minute)
		token, err := short.Generate("acc-1", "user")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
