package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type PasswordForgotInput struct {
	Email  string `validate:"required,email"`
	Mobile string `validate:"required,mobile"`
}

// PasswordForgot sends a recovery code when email and mobile belong to the
// same account.
func (s *Usecase) PasswordForgot(ctx context.Context, in PasswordForgotInput) error {
	ctx, span := s.startSpan(ctx, "PasswordForgot")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Mobile = strings.TrimSpace(in.Mobile)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.userByEmail(ctx, in.Email)
	if err != nil {
		return err
	}

	if user.Mobile != in.Mobile {
		slog.WarnContext(ctx, "mobile does not match account", "user_id", user.ID)
		return goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}

	return s.issueChallenge(ctx, user, entity.PurposePasswordRecovery)
}

type PasswordForgotVerifyInput struct {
	Email       string `validate:"required,email"`
	Code        string `validate:"required"`
	NewPassword string `validate:"required,password"`
}

// PasswordForgotVerify consumes a recovery code and stores the new password.
func (s *Usecase) PasswordForgotVerify(ctx context.Context, in PasswordForgotVerifyInput) error {
	ctx, span := s.startSpan(ctx, "PasswordForgotVerify")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.userByEmail(ctx, in.Email)
	if err != nil {
		return err
	}

	return s.replacePassword(ctx, user, entity.PurposePasswordRecovery, in.Code, in.NewPassword)
}
