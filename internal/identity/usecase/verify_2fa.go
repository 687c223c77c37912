package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type Verify2FAInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required"`
}

// Verify2FA consumes a login code and starts a session. The new session
// replaces any previous one.
func (s *Usecase) Verify2FA(ctx context.Context, in Verify2FAInput) (*entity.Profile, error) {
	ctx, span := s.startSpan(ctx, "Verify2FA")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.userByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	if err := s.checkChallenge(ctx, user, entity.PurposeLogin, in.Code); err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(user.Identifier)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	sessionHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	err = s.repoDB.ConsumeChallengeWithSession(ctx, user.ID, user.Challenge.CodeHash, string(sessionHash))
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp code consumed concurrently", "user_id", user.ID)
		return nil, errInvalidCode()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume challenge with session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	profile := user.Profile(token)

	return &profile, nil
}
