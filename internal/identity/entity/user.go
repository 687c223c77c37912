package entity

import "time"

// Purpose scopes a pending challenge to the flow that issued it.
type Purpose string

const (
	PurposeLogin            Purpose = "login"
	PurposePasswordChange   Purpose = "password_change"
	PurposePasswordRecovery Purpose = "password_recovery"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeLogin, PurposePasswordChange, PurposePasswordRecovery:
		return true
	default:
		return false
	}
}

// Challenge is the pending one-time code of an account. The code is stored
// only as an HMAC. A nil *Challenge means no challenge is pending.
type Challenge struct {
	CodeHash  string
	Purpose   Purpose
	ExpiresAt time.Time
}

// Expired reports whether now is past the expiry.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// User is an account row. ID is the internal record key and never leaves
// the service; Identifier is the public id carried by session tokens.
type User struct {
	ID           int64
	Identifier   string
	Name         string
	Email        string
	Mobile       string
	PasswordHash string
	Challenge    *Challenge
	SessionHash  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the only public view of a User.
type Profile struct {
	Name       string
	Email      string
	Mobile     string
	Identifier string
	Token      string
}

func (u User) Profile(token string) Profile {
	return Profile{
		Name:       u.Name,
		Email:      u.Email,
		Mobile:     u.Mobile,
		Identifier: u.Identifier,
		Token:      token,
	}
}
