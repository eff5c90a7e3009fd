package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessToken_RoundTrip(t *testing.T) {
	at, err := NewAccessToken(testSecret, 42, 30)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)

	uid, fresh, err := VerifyAndRefresh(testSecret, at.Token, 30, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(42), uid)
	require.Empty(t, fresh, "a token far from expiry should not be reissued")
}

func TestVerifyAndRefresh_NearExpiryReissues(t *testing.T) {
	// 1-minute TTL with a 5-minute refresh window: always inside the window.
	at, err := NewAccessToken(testSecret, 7, 1)
	require.NoError(t, err)

	uid, fresh, err := VerifyAndRefresh(testSecret, at.Token, 30, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(7), uid)
	require.NotEmpty(t, fresh)

	// The reissued token must verify on its own.
	uid2, _, err := VerifyAndRefresh(testSecret, fresh, 30, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(7), uid2)
}

func TestVerifyAndRefresh_WrongSecret(t *testing.T) {
	at, err := NewAccessToken(testSecret, 42, 30)
	require.NoError(t, err)

	_, _, err = VerifyAndRefresh("other-secret", at.Token, 30, 5)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAndRefresh_Garbage(t *testing.T) {
	_, _, err := VerifyAndRefresh(testSecret, "not-a-token", 30, 5)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashAndVerifyPassword(t *testing.T) {
	h, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	require.True(t, VerifyPassword(h, "s3cret"))
	require.False(t, VerifyPassword(h, "wrong"))
}

func TestRandomDigits(t *testing.T) {
	code, err := RandomDigits(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		require.GreaterOrEqual(t, r, '0')
		require.LessOrEqual(t, r, '9')
	}
}
