package inbound

import (
	"github.com/shandysiswandi/otpauth/internal/identity/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for registration, login and password workflows.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a new user account.
// @Summary Register user
// @Description Creates an account. No code is sent.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 200 {object} router.successResponse{data=RegisterResponse} "User registered"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Email or mobile already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{Identifier: resp.Identifier}, nil
}

// Login checks credentials and sends a one-time code.
// @Summary Start login
// @Description Validates credentials and sends a login code. No session is issued.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid email or password"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many codes requested"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return nil, err
	}

	return LoginResponse{}, nil
}

// Verify2FA completes login and issues a session token.
// @Summary Complete login
// @Description Consumes the login code and returns the profile with a session token.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body Verify2FARequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=Verify2FAResponse} "Session issued"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/verify-2fa [post]
func (h *HTTPEndpoint) Verify2FA(r *router.Request) (any, error) {
	var req Verify2FARequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify2FA(r.Context(), usecase.Verify2FAInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return Verify2FAResponse{ProfileResponse: newProfileResponse(resp)}, nil
}

// ProfileUpdate changes the name and/or email of the authenticated user.
// @Summary Update profile
// @Tags Identity, Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User identifier"
// @Param request body ProfileUpdateRequest true "Fields to change"
// @Success 200 {object} router.successResponse{data=ProfileUpdateResponse} "Updated profile"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired token"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/update-user/{userId} [put]
func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	var req ProfileUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{
		Identifier: r.GetParam("userId"),
		Name:       req.Name,
		Email:      req.Email,
	})
	if err != nil {
		return nil, err
	}

	return ProfileUpdateResponse{ProfileResponse: newProfileResponse(resp)}, nil
}

// PasswordChange checks the current password and sends a confirmation code.
// @Summary Start password change
// @Tags Identity, Password
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User identifier"
// @Param request body PasswordChangeRequest true "Current password"
// @Success 200 {object} router.successResponse{data=PasswordChangeResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid token or password"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many codes requested"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/change-password/{userId} [post]
func (h *HTTPEndpoint) PasswordChange(r *router.Request) (any, error) {
	var req PasswordChangeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordChange(r.Context(), usecase.PasswordChangeInput{
		Identifier:      r.GetParam("userId"),
		CurrentPassword: req.CurrentPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordChangeResponse{}, nil
}

// PasswordChangeVerify consumes the confirmation code and sets the new password.
// @Summary Confirm password change
// @Tags Identity, Password
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User identifier"
// @Param request body PasswordChangeVerifyRequest true "Code and new password"
// @Success 200 {object} router.successResponse{data=PasswordChangeVerifyResponse} "Password changed"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/verify-password-change/{userId} [post]
func (h *HTTPEndpoint) PasswordChangeVerify(r *router.Request) (any, error) {
	var req PasswordChangeVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordChangeVerify(r.Context(), usecase.PasswordChangeVerifyInput{
		Identifier:  r.GetParam("userId"),
		Code:        req.Code,
		NewPassword: req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordChangeVerifyResponse{}, nil
}

// PasswordForgot sends a recovery code when email and mobile match one account.
// @Summary Start password recovery
// @Tags Identity, Password
// @Accept json
// @Produce json
// @Param request body PasswordForgotRequest true "Email and mobile"
// @Success 200 {object} router.successResponse{data=PasswordForgotResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many codes requested"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/forgot-password [post]
func (h *HTTPEndpoint) PasswordForgot(r *router.Request) (any, error) {
	var req PasswordForgotRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordForgot(r.Context(), usecase.PasswordForgotInput{
		Email:  req.Email,
		Mobile: req.Mobile,
	}); err != nil {
		return nil, err
	}

	return PasswordForgotResponse{}, nil
}

// PasswordForgotVerify consumes the recovery code and sets the new password.
// @Summary Complete password recovery
// @Tags Identity, Password
// @Accept json
// @Produce json
// @Param request body PasswordForgotVerifyRequest true "Email, code and new password"
// @Success 200 {object} router.successResponse{data=PasswordForgotVerifyResponse} "Password reset"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/auth/verify-password-change-forgot-pass [post]
func (h *HTTPEndpoint) PasswordForgotVerify(r *router.Request) (any, error) {
	var req PasswordForgotVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordForgotVerify(r.Context(), usecase.PasswordForgotVerifyInput{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordForgotVerifyResponse{}, nil
}
