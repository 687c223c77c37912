package otp

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	libotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Alphabet is the fixed symbol set secrets are drawn from. Its length is a
	// power of two, so masking a random byte selects a symbol uniformly.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567abcdefghijklmnopqrstuvwxyz189@#$"

	// SecretLength is the number of symbols in a generated secret.
	SecretLength = 16

	// DefaultStep is the width of one code window.
	DefaultStep = 30 * time.Second

	// CodeLength is the number of digits in a derived code.
	CodeLength = 6
)

var (
	// ErrEmptySecret is returned when deriving a code from an empty secret.
	ErrEmptySecret = errors.New("otp: secret is empty")
	// ErrInvalidStep is returned when the step is not a positive whole number of seconds.
	ErrInvalidStep = errors.New("otp: step must be a positive whole number of seconds")
)

// Engine generates shared secrets and derives time-windowed numeric codes.
//
// Codes are HMAC-SHA1 over the 8-byte big-endian window, keyed with the raw
// secret bytes, dynamically truncated and reduced to six digits. The raw-byte
// key means codes are not interchangeable with authenticator apps, which
// base32-decode their secret first.
type Engine struct {
	step time.Duration
}

// New builds an Engine. A zero step means DefaultStep.
func New(step time.Duration) (*Engine, error) {
	if step == 0 {
		step = DefaultStep
	}
	if step < time.Second || step%time.Second != 0 {
		return nil, ErrInvalidStep
	}

	return &Engine{step: step}, nil
}

// Step returns the window width.
func (e *Engine) Step() time.Duration {
	return e.step
}

// GenerateSecret returns SecretLength symbols drawn from Alphabet with crypto/rand.
func (e *Engine) GenerateSecret() (string, error) {
	var buf [SecretLength]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}

	out := make([]byte, SecretLength)
	for i, b := range buf {
		out[i] = Alphabet[b&byte(len(Alphabet)-1)]
	}

	return string(out), nil
}

// Window returns floor(unix(at) / step).
func (e *Engine) Window(at time.Time) uint64 {
	return uint64(at.Unix()) / uint64(e.step/time.Second)
}

// DeriveCode returns the six digit code for secret in the window containing at.
func (e *Engine) DeriveCode(secret string, at time.Time) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	// The library base32-decodes the secret it is given; encoding the raw bytes
	// here makes it key the HMAC with exactly those bytes.
	key := base32.StdEncoding.EncodeToString([]byte(secret))

	return totp.GenerateCodeCustom(key, at, totp.ValidateOpts{
		Period:    uint(e.step / time.Second),
		Digits:    libotp.DigitsSix,
		Algorithm: libotp.AlgorithmSHA1,
	})
}
