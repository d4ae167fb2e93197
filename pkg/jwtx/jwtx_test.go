package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager("quiero-test")
	require.NoError(t, err)

	claims := NewAccessClaims(
		"user-1",
		[]string{"coach"},
		15*time.Minute,
		"quiero-test",
		"coach@example.com",
		"Coach One",
		time.Now().UTC(),
	)

	token, err := km.Signer.Sign(claims)
	require.NoError(t, err)

	got, err := km.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, []string{"coach"}, got.Roles)
	require.Equal(t, "coach@example.com", got.Email)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager("expected-issuer")
	require.NoError(t, err)

	claims := NewAccessClaims(
		"user-1", nil, time.Minute, "another-issuer", "", "", time.Now().UTC(),
	)
	token, err := km.Signer.Sign(claims)
	require.NoError(t, err)

	_, err = km.Verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager("quiero-test")
	require.NoError(t, err)

	claims := NewAccessClaims(
		"user-1", nil, time.Minute, "quiero-test", "", "",
		time.Now().UTC().Add(-time.Hour),
	)
	token, err := km.Signer.Sign(claims)
	require.NoError(t, err)

	_, err = km.Verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	issuerA, err := NewKeyManager("quiero-test")
	require.NoError(t, err)
	issuerB, err := NewKeyManager("quiero-test")
	require.NoError(t, err)

	claims := NewAccessClaims(
		"user-1", nil, time.Minute, "quiero-test", "", "", time.Now().UTC(),
	)
	token, err := issuerA.Signer.Sign(claims)
	require.NoError(t, err)

	_, err = issuerB.Verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager("quiero-test")
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"})
	unsigned.Header["kid"] = km.Signer.KID()
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = km.Verifier.Verify(raw)
	require.Error(t, err)
}

func TestJWKSPublishesSigningKey(t *testing.T) {
	t.Parallel()

	km, err := NewKeyManager("quiero-test")
	require.NoError(t, err)

	doc := km.KeySet.JWKS()
	require.Len(t, doc.Keys, 1)
	require.Equal(t, "OKP", doc.Keys[0].Kty)
	require.Equal(t, "Ed25519", doc.Keys[0].Crv)
	require.Equal(t, km.Signer.KID(), doc.Keys[0].Kid)
	require.NotEmpty(t, doc.Keys[0].X)
	require.True(t, km.KeySet.IsReady())
}
