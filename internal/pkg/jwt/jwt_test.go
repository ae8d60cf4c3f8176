package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_AccessTokenRoundTrip(t *testing.T) {
	codec := NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)

	token, err := codec.IssueAccessToken(42)
	require.NoError(t, err)

	claims, err := codec.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestCodec_RefreshTokenRoundTrip(t *testing.T) {
	codec := NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)

	token, err := codec.IssueRefreshToken(42)
	require.NoError(t, err)

	claims, err := codec.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestCodec_IssuedTokensAreUnique(t *testing.T) {
	codec := NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)

	// Back-to-back issuance lands in the same second; the tokens must still
	// differ or rotation could not distinguish old from new.
	first, err := codec.IssueRefreshToken(42)
	require.NoError(t, err)
	second, err := codec.IssueRefreshToken(42)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	firstAccess, err := codec.IssueAccessToken(42)
	require.NoError(t, err)
	secondAccess, err := codec.IssueAccessToken(42)
	require.NoError(t, err)
	assert.NotEqual(t, firstAccess, secondAccess)
}

func TestCodec_SecretsAreNotInterchangeable(t *testing.T) {
	codec := NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)

	access, err := codec.IssueAccessToken(42)
	require.NoError(t, err)
	refresh, err := codec.IssueRefreshToken(42)
	require.NoError(t, err)

	// An access token must not pass refresh verification, and vice versa.
	_, err = codec.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = codec.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodec_ExpiredTokenFails(t *testing.T) {
	codec := NewCodec("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	access, err := codec.IssueAccessToken(42)
	require.NoError(t, err)
	refresh, err := codec.IssueRefreshToken(42)
	require.NoError(t, err)

	_, err = codec.VerifyAccessToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = codec.VerifyRefreshToken(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodec_MalformedTokenFails(t *testing.T) {
	codec := NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)

	for _, tokenStr := range []string{"", "garbage", "a.b.c"} {
		_, err := codec.VerifyRefreshToken(tokenStr)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}

func TestCodec_TamperedTokenFails(t *testing.T) {
	codec := NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	other := NewCodec("different-access", "different-refresh", time.Minute, time.Hour)

	token, err := other.IssueRefreshToken(42)
	require.NoError(t, err)

	_, err = codec.VerifyRefreshToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
