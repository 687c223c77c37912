package inbound

import "github.com/shandysiswandi/otpauth/internal/identity/entity"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Identifier string `json:"identifier"`
}

func (RegisterResponse) Message() string { return "User registered" }

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct{}

func (LoginResponse) Message() string {
	return "User logged in. A verification code has been sent."
}

type Verify2FARequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ProfileResponse struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`
	Identifier string `json:"identifier"`
	Token      string `json:"token"`
}

func newProfileResponse(p *entity.Profile) ProfileResponse {
	return ProfileResponse{
		Name:       p.Name,
		Email:      p.Email,
		Mobile:     p.Mobile,
		Identifier: p.Identifier,
		Token:      p.Token,
	}
}

type Verify2FAResponse struct {
	ProfileResponse
}

func (Verify2FAResponse) Message() string { return "Two-factor verification successful" }

type ProfileUpdateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type ProfileUpdateResponse struct {
	ProfileResponse
}

func (ProfileUpdateResponse) Message() string { return "User updated" }

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
}

type PasswordChangeResponse struct{}

func (PasswordChangeResponse) Message() string {
	return "A verification code has been sent to confirm the password change."
}

type PasswordChangeVerifyRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type PasswordChangeVerifyResponse struct{}

func (PasswordChangeVerifyResponse) Message() string { return "Password changed" }

type PasswordForgotRequest struct {
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

type PasswordForgotResponse struct{}

func (PasswordForgotResponse) Message() string {
	return "A verification code has been sent to reset the password."
}

type PasswordForgotVerifyRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type PasswordForgotVerifyResponse struct{}

func (PasswordForgotVerifyResponse) Message() string { return "Password reset" }
