package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer("access-secret", "refresh-secret")
}

func testIdentity() Identity {
	return Identity{UserID: "u-1", Username: "alice", Role: "radiologist"}
}

func TestSignAccess_RoundTrip(t *testing.T) {
	issuer := testIssuer()

	token, err := issuer.SignAccess(testIdentity())
	require.NoError(t, err)

	claims, err := issuer.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "radiologist", claims.Role)
	assert.Equal(t, testIdentity(), claims.Identity())
}

func TestSignRefresh_RoundTrip(t *testing.T) {
	issuer := testIssuer()

	token, err := issuer.SignRefresh(testIdentity())
	require.NoError(t, err)

	claims, err := issuer.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestTokenClasses_NotInterchangeable(t *testing.T) {
	issuer := testIssuer()

	access, err := issuer.SignAccess(testIdentity())
	require.NoError(t, err)
	refresh, err := issuer.SignRefresh(testIdentity())
	require.NoError(t, err)

	_, err = issuer.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccess_Expired(t *testing.T) {
	issuer := testIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.SignAccess(testIdentity())
	require.NoError(t, err)

	// Restore the clock so the 15-minute token is now past expiry.
	issuer.now = time.Now
	_, err = issuer.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccess_WrongSecret(t *testing.T) {
	token, err := testIssuer().SignAccess(testIdentity())
	require.NoError(t, err)

	other := NewTokenIssuer("different-secret", "refresh-secret")
	_, err = other.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccess_Garbage(t *testing.T) {
	_, err := testIssuer().VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, hasher.Verify("secret1", hash))
	assert.False(t, hasher.Verify("secret2", hash))
	assert.False(t, hasher.Verify("", hash))
}

func TestPasswordHasher_DistinctSalts(t *testing.T) {
	hasher := NewPasswordHasher()

	h1, err := hasher.Hash("secret1")
	require.NoError(t, err)
	h2, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
