package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *HS256 {
	t.Helper()
	s, err := NewHS256([]byte("test-secret-at-least-32-bytes-long!!"), "tallybook")
	require.NoError(t, err)
	return s
}

func TestHS256RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestSigner(t)

	token, err := s.Sign(NewAccessClaims("alice@test.io", "tallybook", time.Minute, time.Now()))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice@test.io", claims.Subject)
}

func TestHS256RejectsForgedTokens(t *testing.T) {
	t.Parallel()
	s := newTestSigner(t)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewHS256([]byte("a-completely-different-secret-value!"), "tallybook")
		require.NoError(t, err)

		token, err := other.Sign(NewAccessClaims("bob@test.io", "tallybook", time.Minute, time.Now()))
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := s.Verify("not.a.jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("unsigned alg rejected", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone,
			NewAccessClaims("bob@test.io", "tallybook", time.Minute, time.Now()))
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Verify(raw)
		require.Error(t, err)
	})
}

func TestHS256Expiry(t *testing.T) {
	t.Parallel()
	s := newTestSigner(t)

	t.Run("expired token", func(t *testing.T) {
		token, err := s.Sign(NewAccessClaims(
			"old@test.io", "tallybook", time.Minute, time.Now().Add(-time.Hour)))
		require.NoError(t, err)

		_, err = s.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("expiry boundary is inclusive", func(t *testing.T) {
		// A claim expiring exactly now must already count as expired.
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "edge@test.io",
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC()),
		}}
		require.ErrorIs(t, claims.ValidateExpiry(), ErrExpired)
	})

	t.Run("future nbf rejected", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "early@test.io",
			NotBefore: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
		}}
		require.ErrorIs(t, claims.ValidateExpiry(), ErrNotYetValid)
	})
}

func TestHS256IsValidFor(t *testing.T) {
	t.Parallel()
	s := newTestSigner(t)

	token, err := s.Sign(NewAccessClaims("carol@test.io", "tallybook", time.Minute, time.Now()))
	require.NoError(t, err)

	require.True(t, s.IsValidFor(token, "carol@test.io"))
	require.False(t, s.IsValidFor(token, "mallory@test.io"))
	require.False(t, s.IsValidFor("junk", "carol@test.io"))
}

func TestHS256IssuerMismatch(t *testing.T) {
	t.Parallel()

	issued, err := NewHS256([]byte("test-secret-at-least-32-bytes-long!!"), "someone-else")
	require.NoError(t, err)
	token, err := issued.Sign(NewAccessClaims("dan@test.io", "someone-else", time.Minute, time.Now()))
	require.NoError(t, err)

	s := newTestSigner(t)
	_, err = s.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}
