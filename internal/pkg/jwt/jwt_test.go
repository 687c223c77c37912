package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("k", 64))

func newTestJWT(t *testing.T, clk *clock.Manual) *Symmetric {
	t.Helper()

	s, err := NewHS512(Config{
		Secret:    testSecret,
		Issuer:    "otpauth",
		Audiences: []string{"otpauth-api"},
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	return s
}

func TestNewHS512(t *testing.T) {
	clk := clock.NewManual(time.Now())

	_, err := NewHS512(Config{Clock: clk, UUID: uid.NewUUID()})
	require.ErrorIs(t, err, ErrSecretRequired)

	_, err = NewHS512(Config{Secret: []byte("short"), Clock: clk, UUID: uid.NewUUID()})
	require.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSymmetric_RoundTrip(t *testing.T) {
	// Arrange
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	clk := clock.NewManual(now)
	s := newTestJWT(t, clk)

	// Act
	token, err := s.Generate("0190f3c4-8a8e-7c3e-9f00-aa11bb22cc33")
	require.NoError(t, err)
	claims, err := s.Verify(token)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "0190f3c4-8a8e-7c3e-9f00-aa11bb22cc33", claims.Subject)
	require.Equal(t, claims.Subject, claims.UserIdentifier)
	require.Equal(t, token, claims.Raw)
	require.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt.Time), "expires at %s", claims.ExpiresAt.Time)
}

func TestSymmetric_RejectsUniformly(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	clk := clock.NewManual(now)
	s := newTestJWT(t, clk)

	token, err := s.Generate("user-1")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		clk.Set(now.Add(time.Hour + time.Second))
		t.Cleanup(func() { clk.Set(now) })

		_, err := s.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		parts := strings.Split(token, ".")
		forged := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

		_, err := s.Verify(forged)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewHS512(Config{
			Secret:    []byte(strings.Repeat("x", 64)),
			Issuer:    "otpauth",
			Audiences: []string{"otpauth-api"},
			Clock:     clk,
			UUID:      uid.NewUUID(),
		})
		require.NoError(t, err)
		foreign, err := other.Generate("user-1")
		require.NoError(t, err)

		_, err = s.Verify(foreign)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := libJWT.NewWithClaims(libJWT.SigningMethodNone, Claims{
			RegisteredClaims: libJWT.RegisteredClaims{Subject: "user-1"},
			UserIdentifier:   "user-1",
		}).SignedString(libJWT.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Verify(unsigned)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSymmetric_GenerateRequiresSubject(t *testing.T) {
	s := newTestJWT(t, clock.NewManual(time.Now()))

	_, err := s.Generate("")
	require.ErrorIs(t, err, ErrSubjectRequired)
}

func TestAuthContext(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, GetAuth(ctx))

	ctx = SetAuth(ctx, Claims{UserIdentifier: "u", Raw: "tok"})
	clm := GetAuth(ctx)
	require.NotNil(t, clm)
	require.Equal(t, "u", clm.UserIdentifier)
	require.Equal(t, "tok", clm.Raw)
}
