package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/otpauth/internal/notification/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpauth/internal/pkg/notify"
)

// dispatchMemory outlives any code TTL so a late redelivery is still recognized.
const dispatchMemory = 24 * time.Hour

type DeliverOTPInput struct {
	DispatchID  string
	Channel     string `validate:"required,oneof=sms email"`
	Destination string `validate:"required"`
	Subject     string
	Body        string `validate:"required"`
	Tags        map[string]string
}

// DeliverOTP sends one code and records the outcome. It fails only on
// malformed input, which is dropped rather than redelivered; a failed
// delivery is logged and audited, never returned. A dispatch id already
// delivered is skipped.
func (s *Usecase) DeliverOTP(ctx context.Context, in DeliverOTPInput) error {
	ctx, span := s.startSpan(ctx, "DeliverOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	if s.idemp == nil || in.DispatchID == "" {
		s.deliver(ctx, in)
		return nil
	}

	err := s.idemp.Exec(ctx, "otp-dispatch:"+in.DispatchID, func(ctx context.Context) error {
		s.deliver(ctx, in)
		return nil
	}, idempotency.WithStateTTL(dispatchMemory))
	switch {
	case err == nil:
	case errors.Is(err, idempotency.ErrAlreadyCompleted), errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.InfoContext(ctx, "duplicate otp dispatch skipped", "dispatch_id", in.DispatchID)
	default:
		// tracker down: sending twice beats not sending
		slog.WarnContext(ctx, "failed to track otp dispatch", "dispatch_id", in.DispatchID, "error", err)
		s.deliver(ctx, in)
	}

	return nil
}

func (s *Usecase) deliver(ctx context.Context, in DeliverOTPInput) {
	userID, _ := strconv.ParseInt(in.Tags["user_id"], 10, 64)
	purpose := in.Tags["purpose"]

	res := s.notifier.Send(ctx, notify.Notice{
		Channel:     notify.Channel(in.Channel),
		Destination: in.Destination,
		Subject:     in.Subject,
		Body:        in.Body,
		Tags:        in.Tags,
	})
	notify.Log(ctx, res, "user_id", userID, "purpose", purpose)

	s.audit(ctx, userID, purpose, res)
}

func (s *Usecase) audit(ctx context.Context, userID int64, purpose string, res notify.Result) {
	if s.repoDB == nil {
		return
	}

	dl := entity.DeliveryLog{
		ID:        s.uid.Generate(),
		UserID:    userID,
		Purpose:   purpose,
		Channel:   string(res.Channel),
		Provider:  res.Provider,
		Status:    entity.DeliveryStatusFailed,
		Reference: res.Reference,
		CreatedAt: s.clock.Now(),
	}
	if res.Delivered() {
		dl.Status = entity.DeliveryStatusDelivered
	}
	if res.Err != nil {
		dl.Error = res.Err.Error()
	}

	if err := s.repoDB.CreateDeliveryLog(ctx, dl); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "user_id", userID, "error", err)
	}
}
