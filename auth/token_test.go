package auth

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount() *Account {
	acc := NewAccount("alice", "alice@x.com", "Alice A")
	acc.ID = NewID()
	return acc
}

func TestTokenIssuer_IssuePair(t *testing.T) {
	now := time.Now()
	ti := NewTokenIssuer(testTokenConfig)
	ti.now = func() time.Time { return now }
	acc := testAccount()

	pair, err := ti.IssuePair(acc)
	require.NoError(t, err)

	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, now.Add(time.Hour).Unix(), pair.AccessExpiresAt.Unix())
	assert.Equal(t, now.Add(30*24*time.Hour).Unix(), pair.RefreshExpiresAt.Unix())

	access, err := ti.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, string(acc.ID), access.AccountID)
	assert.Equal(t, "alice", access.Username)
	assert.Equal(t, "alice@x.com", access.Email)
	assert.Equal(t, "Alice A", access.FullName)
	assert.Equal(t, pair.AccessExpiresAt.Unix(), access.ExpiresAt)

	refresh, err := ti.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, string(acc.ID), refresh.AccountID)
	assert.Equal(t, pair.RefreshExpiresAt.Unix(), refresh.ExpiresAt)
}

func TestTokenIssuer_KindsDoNotCrossVerify(t *testing.T) {
	ti := NewTokenIssuer(testTokenConfig)
	pair, err := ti.IssuePair(testAccount())
	require.NoError(t, err)

	_, err = ti.VerifyAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ti.VerifyRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsInvalidTokens(t *testing.T) {
	ti := NewTokenIssuer(testTokenConfig)
	acc := testAccount()

	expiredIssuer := NewTokenIssuer(testTokenConfig)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredIssuer.IssueAccessToken(acc)
	require.NoError(t, err)

	otherIssuer := NewTokenIssuer(TokenConfig{AccessSecret: []byte("other"), AccessTTL: time.Hour})
	wrongSecret, _, err := otherIssuer.IssueAccessToken(acc)
	require.NoError(t, err)

	noExpiry, err := sign(AccessClaims{AccountID: string(acc.ID)}, testTokenConfig.AccessSecret)
	require.NoError(t, err)

	noID, err := sign(AccessClaims{StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()}}, testTokenConfig.AccessSecret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		AccountID:      string(acc.ID),
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": wrongSecret,
		"malformed":    "not.a.token",
		"empty":        "",
		"no expiry":    noExpiry,
		"no id":        noID,
		"alg none":     unsigned,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := ti.VerifyAccessToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenIssuer_SameSecondTokensDiffer(t *testing.T) {
	now := time.Now()
	ti := NewTokenIssuer(testTokenConfig)
	ti.now = func() time.Time { return now }
	acc := testAccount()

	first, err := ti.IssuePair(acc)
	require.NoError(t, err)
	second, err := ti.IssuePair(acc)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	claims, err := ti.VerifyRefreshToken(first.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.Id)
}
