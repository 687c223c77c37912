// Package otp is the one-time passcode engine.
//
// It draws random shared secrets and derives six digit codes that stay stable
// within a time window. Codes carry no single-use guarantee of their own:
// callers enforce single use by discarding a code once it is consumed and by
// checking their own expiry timestamp.
package otp
