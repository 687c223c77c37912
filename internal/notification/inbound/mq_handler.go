package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/otpauth/internal/notification/usecase"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/messaging"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/shared/event"
)

type uc interface {
	DeliverOTP(ctx context.Context, in usecase.DeliverOTPInput) error
}

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers map[string]string) context.Context {
	if cID := headers[event.HeaderCorrelationID]; cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// OTPDispatch never logs the body: it carries the code.
func (h *MQHandler) OTPDispatch(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OTPDispatch")
	defer span.End()

	slog.InfoContext(ctx, "consume: otp dispatch", "msg_id", msg.ID)

	var payload event.OTPDispatchMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp dispatch", "msg_id", msg.ID, "error", err)
		return nil
	}

	if err := h.uc.DeliverOTP(ctx, usecase.DeliverOTPInput{
		DispatchID:  payload.DispatchID,
		Channel:     payload.Channel,
		Destination: payload.Destination,
		Subject:     payload.Subject,
		Body:        payload.Body,
		Tags:        payload.Tags,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp", "msg_id", msg.ID, "error", err)
		return err
	}

	return nil
}
