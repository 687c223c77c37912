package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
)

// authorize loads the account named by identifier for a protected operation.
// The caller's token must belong to that account and be its current session.
func (s *Usecase) authorize(ctx context.Context, identifier string) (*entity.User, *jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if clm.UserIdentifier != identifier {
		slog.WarnContext(ctx, "token subject does not match path user", "subject", clm.UserIdentifier, "identifier", identifier)
		return nil, nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "identifier", identifier)
		return nil, nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by identifier", "identifier", identifier, "error", err)
		return nil, nil, goerror.NewServer(err)
	}

	if user.SessionHash == nil {
		slog.WarnContext(ctx, "user has no active session", "user_id", user.ID)
		return nil, nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}

	ok, err := s.hmac.Verify(*user.SessionHash, clm.Raw)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify session hash", "user_id", user.ID, "error", err)
		return nil, nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "token is not the current session", "user_id", user.ID)
		return nil, nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}

	return user, clm, nil
}
