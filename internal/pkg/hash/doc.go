// Package hash verifies credentials against stored one-way digests.
//
// Passwords go through bcrypt or argon2id (salted, tunable work factor).
// Pending OTP codes and session tokens are stored as HMAC-SHA256 digests.
package hash
