package jwtverifier

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epaws/internal/platform/sentinel"
	"epaws/internal/ports/auth"
)

func TestVerify_RoundTrip(t *testing.T) {
	v, err := New("s3cret", "epaws")
	require.NoError(t, err)

	tok, err := v.Issue(auth.Claims{UserID: "org-1", Email: "hola@patitas.cl", Role: auth.RoleOrganization}, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "org-1", Email: "hola@patitas.cl", Role: auth.RoleOrganization}, got)
}

func TestVerify_Rejects(t *testing.T) {
	v, err := New("s3cret", "epaws")
	require.NoError(t, err)
	other, err := New("otro", "epaws")
	require.NoError(t, err)
	foreign, err := New("s3cret", "someone-else")
	require.NoError(t, err)

	claims := auth.Claims{UserID: "u-1", Role: auth.RoleUser}

	wrongKey, err := other.Issue(claims, time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := foreign.Issue(claims, time.Hour)
	require.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := v.Issue(claims, time.Hour)
	require.NoError(t, err)
	v.now = time.Now

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"expired":      expired,
		"alg none":     none,
		"garbage":      "not.a.token",
	} {
		_, err := v.Verify(context.Background(), tok)
		assert.ErrorIs(t, err, sentinel.ErrUnauthorized, name)
	}
}

func TestVerify_UnknownRoleFallsBackToUser(t *testing.T) {
	v, err := New("s3cret", "")
	require.NoError(t, err)

	tok, err := v.Issue(auth.Claims{UserID: "u-1", Role: "superuser"}, time.Hour)
	require.NoError(t, err)

	got, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, got.Role)
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New("  ", "epaws")
	require.ErrorIs(t, err, ErrSecretRequired)
}
