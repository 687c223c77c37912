package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

type ProfileUpdateInput struct {
	Identifier string  `validate:"required"`
	Name       *string `validate:"omitempty,min=1,max=100"`
	Email      *string `validate:"omitempty,email,max=254"`
}

// ProfileUpdate changes name and/or email. Fields left nil keep their value.
func (s *Usecase) ProfileUpdate(ctx context.Context, in ProfileUpdateInput) (*entity.Profile, error) {
	ctx, span := s.startSpan(ctx, "ProfileUpdate")
	defer span.End()

	if in.Name != nil {
		in.Name = lo.ToPtr(strings.TrimSpace(*in.Name))
	}
	if in.Email != nil {
		in.Email = lo.ToPtr(strings.ToLower(strings.TrimSpace(*in.Email)))
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Name == nil && in.Email == nil {
		return nil, goerror.NewInvalidInput(nil, "name", "name or email is required")
	}

	user, clm, err := s.authorize(ctx, in.Identifier)
	if err != nil {
		return nil, err
	}

	user.Name = lo.FromPtrOr(in.Name, user.Name)
	user.Email = lo.FromPtrOr(in.Email, user.Email)

	err = s.repoDB.UpdateUserProfile(ctx, user.ID, user.Name, user.Email)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "email already registered", "user_id", user.ID)
		return nil, goerror.NewBusiness("Email or mobile already registered", goerror.CodeConflict)
	}
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found on update", "user_id", user.ID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update user profile", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	profile := user.Profile(clm.Raw)

	return &profile, nil
}
