package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSecretRequired is returned at construction when no signing secret is configured.
	ErrSecretRequired = errors.New("jwt: signing secret is required")

	// ErrSigningKeyTooShort is returned at construction when the HS512 key is under 64 bytes.
	ErrSigningKeyTooShort = errors.New("jwt: HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrSubjectRequired is returned when generating a token for an empty identifier.
	ErrSubjectRequired = errors.New("jwt: subject is required")

	// ErrInvalidToken is the only verification failure callers ever see.
	ErrInvalidToken = errors.New("jwt: invalid or expired token")
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = time.Hour

// JWT issues and verifies session tokens bound to a user identifier.
type JWT interface {
	// Generate creates a signed token whose only payload is the user identifier.
	Generate(userIdentifier string) (string, error)
	// Verify checks signature, issuer, audience and expiry.
	Verify(token string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type authContextKey struct{}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// Audiences are the accepted token audiences.
	Audiences []string
	// TTL is the token lifetime; zero means DefaultTTL.
	TTL time.Duration
	// Clock provides the current time.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Claims are the registered claims plus the bound user identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserIdentifier string `json:"uid"`
	// Raw is the token the claims were parsed from; never serialized.
	Raw string `json:"-"`
}

// GetAuth returns the verified claims stored in ctx, or nil.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(authContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores verified claims in ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authContextKey{}, clm)
}
