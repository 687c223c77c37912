package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Login checks the password and sends a login code. It never issues a session.
func (s *Usecase) Login(ctx context.Context, in LoginInput) error {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	user, err := s.userByEmail(ctx, in.Email)
	if err != nil {
		return err
	}

	if err := s.verifyPassword(ctx, user, in.Password); err != nil {
		return err
	}

	return s.issueChallenge(ctx, user, entity.PurposeLogin)
}

func (s *Usecase) userByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", email)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}

// verifyPassword maps a malformed stored hash to an internal error, never
// to a wrong password.
func (s *Usecase) verifyPassword(ctx context.Context, user *entity.User, password string) error {
	ok, err := s.password.Verify(user.PasswordHash, password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify password hash", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	if !ok {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return goerror.NewBusiness("Invalid email or password", goerror.CodeUnauthorized)
	}

	return nil
}
