package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/notify"
)

const msgInvalidCode = "Invalid or expired code"

func errInvalidCode() error {
	return goerror.NewBusiness(msgInvalidCode, goerror.CodeUnauthorized)
}

// issueChallenge stores a fresh code for user and hands it to the notifier.
// The store write is the last step that can fail the call: a delivery
// failure is logged only.
func (s *Usecase) issueChallenge(ctx context.Context, user *entity.User, purpose entity.Purpose) error {
	if err := s.throttle(ctx, user); err != nil {
		return err
	}

	now := s.clock.Now()

	secret, err := s.otp.GenerateSecret()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp secret", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	code, err := s.otp.DeriveCode(secret, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to derive otp code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	ttl := s.otpTTL()
	if err := s.repoDB.UpdateUserChallenge(ctx, user.ID, entity.Challenge{
		CodeHash:  string(codeHash),
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo update user challenge", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	notice := notify.Notice{
		Channel:     s.otpChannel(),
		Destination: user.Mobile,
		Subject:     "Your verification code",
		Body:        fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(ttl.Minutes())),
		Tags: map[string]string{
			"user_id": strconv.FormatInt(user.ID, 10),
			"purpose": string(purpose),
		},
	}
	if notice.Channel == notify.ChannelEmail {
		notice.Destination = user.Email
	}

	res := s.notifier.Send(ctx, notice)
	notify.Log(ctx, res, "user_id", user.ID, "purpose", string(purpose))

	return nil
}

// throttle fails open: a limiter fault is logged and the challenge proceeds.
func (s *Usecase) throttle(ctx context.Context, user *entity.User) error {
	if s.limiter == nil {
		return nil
	}

	limit, window := s.otpThrottle()
	d, err := s.limiter.Allow(ctx, "otp:"+user.Identifier, limit, window)
	if err != nil {
		slog.WarnContext(ctx, "otp throttle unavailable", "user_id", user.ID, "error", err)
		return nil
	}

	if !d.Allowed {
		slog.WarnContext(ctx, "otp issuance throttled", "user_id", user.ID, "count", d.Count, "reset_in", d.ResetIn.String())
		return goerror.NewBusiness("Too many verification codes requested, try again later", goerror.CodeTooManyRequest)
	}

	return nil
}

// checkChallenge accepts code only when a challenge for purpose is pending,
// the hash matches and the expiry has not passed. Every failing half yields
// the same error.
func (s *Usecase) checkChallenge(ctx context.Context, user *entity.User, purpose entity.Purpose, code string) error {
	ch := user.Challenge
	if ch == nil {
		slog.WarnContext(ctx, "no pending challenge", "user_id", user.ID)
		return errInvalidCode()
	}

	ok, err := s.hmac.Verify(ch.CodeHash, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify otp code hash", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	switch {
	case !ok:
		slog.WarnContext(ctx, "otp code mismatch", "user_id", user.ID)
		return errInvalidCode()
	case ch.Purpose != purpose:
		slog.WarnContext(ctx, "otp code issued for another flow", "user_id", user.ID, "purpose", string(ch.Purpose))
		return errInvalidCode()
	case ch.Expired(s.clock.Now()):
		slog.WarnContext(ctx, "otp code expired", "user_id", user.ID)
		return errInvalidCode()
	}

	return nil
}
