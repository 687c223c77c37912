package hash

import "errors"

// ErrMalformedHash is returned by Verify when the stored value cannot be parsed.
var ErrMalformedHash = errors.New("hash: malformed hashed value")

// Hash is a one-way transform with a matching verifier.
//
// Verify returns (false, nil) on a plain mismatch. A non-nil error means the
// stored value or the primitive itself is broken and must not be treated as a
// failed credential check.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) (bool, error)
}

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// NewPassword picks the password hasher configured by name. Unknown names
// fall back to bcrypt.
func NewPassword(algorithm string, bcryptCost int, pepper string) Hash {
	if algorithm == AlgorithmArgon2id {
		return NewArgon2id(pepper)
	}

	return NewBcrypt(bcryptCost, pepper)
}
