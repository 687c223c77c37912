package provider

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/notify"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Provider traces every delivery made through the wrapped notifier.
type Provider struct {
	client notify.Notifier
	ins    instrument.Instrumentation
}

func New(client notify.Notifier, ins instrument.Instrumentation) *Provider {
	return &Provider{client: client, ins: ins}
}

func (p *Provider) Send(ctx context.Context, n notify.Notice) notify.Result {
	ctx, span := p.ins.Tracer("notification.outbound.provider").Start(ctx, "Send")
	defer span.End()

	res := p.client.Send(ctx, n)
	span.SetAttributes(
		attribute.String("notify.channel", string(n.Channel)),
		attribute.String("notify.provider", res.Provider),
		attribute.String("notify.status", string(res.Status)),
	)
	if !res.Delivered() && res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}

	return res
}
