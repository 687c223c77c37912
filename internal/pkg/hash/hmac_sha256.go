package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 is a keyed, deterministic digest for short-lived secrets such as
// OTP codes and session tokens, where a lookup-friendly value is needed and a
// slow KDF would add nothing.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a keyed hasher.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

// Hash returns the hex encoded HMAC of plaintext.
func (s *HMACSHA256) Hash(plaintext string) ([]byte, error) {
	return s.sum(plaintext), nil
}

// Verify compares in constant time. A value that is not 64 hex characters is malformed.
func (s *HMACSHA256) Verify(hashed, plaintext string) (bool, error) {
	if len(hashed) != hex.EncodedLen(sha256.Size) {
		return false, ErrMalformedHash
	}

	return hmac.Equal([]byte(hashed), s.sum(plaintext)), nil
}

func (s *HMACSHA256) sum(plaintext string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(plaintext))

	return hex.AppendEncode(nil, mac.Sum(nil))
}
