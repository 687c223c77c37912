package inbound

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/identity/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) error
	Verify2FA(ctx context.Context, in usecase.Verify2FAInput) (*entity.Profile, error)

	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) (*entity.Profile, error)

	PasswordChange(ctx context.Context, in usecase.PasswordChangeInput) error
	PasswordChangeVerify(ctx context.Context, in usecase.PasswordChangeVerifyInput) error
	PasswordForgot(ctx context.Context, in usecase.PasswordForgotInput) error
	PasswordForgotVerify(ctx context.Context, in usecase.PasswordForgotVerifyInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, verifier jwt.JWT) {
	end := &HTTPEndpoint{uc: uc}
	auth := router.Authenticate(verifier)

	// Registration & two-step login
	r.POST("/api/auth/register", end.Register)
	r.POST("/api/auth/login", end.Login)
	r.POST("/api/auth/verify-2fa", end.Verify2FA)

	// Profile (need authenticated)
	r.PUT("/api/auth/update-user/:userId", end.ProfileUpdate, auth)

	// Password Management
	r.POST("/api/auth/change-password/:userId", end.PasswordChange, auth)
	r.POST("/api/auth/verify-password-change/:userId", end.PasswordChangeVerify, auth)
	r.POST("/api/auth/forgot-password", end.PasswordForgot)
	r.POST("/api/auth/verify-password-change-forgot-pass", end.PasswordForgotVerify)
}
