package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", TokenTTL)

	token, err := svc.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Hour)

	token, err := svc.Issue("user-123")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_Invalid(t *testing.T) {
	svc := NewTokenService("test-secret", TokenTTL)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService("other-secret", TokenTTL)
		token, err := other.Issue("user-123")
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("empty subject", func(t *testing.T) {
		token, err := svc.Issue("")
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
