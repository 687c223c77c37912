// Package jwt issues and verifies session tokens.
//
// A session token is an HS512 JWT whose only payload is the user identifier.
// Verification does not tell callers why a token was rejected: expired,
// tampered and malformed tokens all yield ErrInvalidToken.
package jwt
