package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type PasswordChangeInput struct {
	Identifier      string `validate:"required"`
	CurrentPassword string `validate:"required"`
}

// PasswordChange checks the current password and sends a password change code.
func (s *Usecase) PasswordChange(ctx context.Context, in PasswordChangeInput) error {
	ctx, span := s.startSpan(ctx, "PasswordChange")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, _, err := s.authorize(ctx, in.Identifier)
	if err != nil {
		return err
	}

	if err := s.verifyPassword(ctx, user, in.CurrentPassword); err != nil {
		return err
	}

	return s.issueChallenge(ctx, user, entity.PurposePasswordChange)
}

type PasswordChangeVerifyInput struct {
	Identifier  string `validate:"required"`
	Code        string `validate:"required"`
	NewPassword string `validate:"required,password"`
}

// PasswordChangeVerify consumes a password change code and stores the new
// password. The current session stays valid.
func (s *Usecase) PasswordChangeVerify(ctx context.Context, in PasswordChangeVerifyInput) error {
	ctx, span := s.startSpan(ctx, "PasswordChangeVerify")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, _, err := s.authorize(ctx, in.Identifier)
	if err != nil {
		return err
	}

	return s.replacePassword(ctx, user, entity.PurposePasswordChange, in.Code, in.NewPassword)
}

func (s *Usecase) replacePassword(ctx context.Context, user *entity.User, purpose entity.Purpose, code, password string) error {
	if err := s.checkChallenge(ctx, user, purpose, code); err != nil {
		return err
	}

	passHash, err := s.password.Hash(password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	err = s.repoDB.ConsumeChallengeWithPassword(ctx, user.ID, user.Challenge.CodeHash, string(passHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp code consumed concurrently", "user_id", user.ID)
		return errInvalidCode()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume challenge with password", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user password replaced", "user_id", user.ID, "purpose", string(purpose))

	return nil
}
