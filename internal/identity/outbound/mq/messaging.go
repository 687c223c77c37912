package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/messaging"
	"github.com/shandysiswandi/otpauth/internal/pkg/notify"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const provider = "queue"

// Messaging is a notify.Notifier that hands the notice to the notification
// module over the broker. Delivered means the broker accepted it.
type Messaging struct {
	client messaging.Broker
	uuid   uid.StringID
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Broker, uuid uid.StringID, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, uuid: uuid, ins: ins}
}

func (m *Messaging) Send(ctx context.Context, n notify.Notice) notify.Result {
	ctx, span := m.ins.Tracer("identity.outbound.mq").Start(ctx, "PublishOTPDispatch")
	defer span.End()

	dispatchID := m.uuid.Generate()
	res := notify.Result{Status: notify.StatusFailed, Channel: n.Channel, Provider: provider, Reference: dispatchID}

	body, err := json.Marshal(event.OTPDispatchMessage{
		DispatchID:  dispatchID,
		Channel:     string(n.Channel),
		Destination: n.Destination,
		Subject:     n.Subject,
		Body:        n.Body,
		Tags:        n.Tags,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res.Err = err
		return res
	}

	cID := instrument.GetCorrelationID(ctx)
	if err := m.client.Publish(ctx, event.OTPDispatchDestination, body, map[string]string{
		event.HeaderCorrelationID: cID,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res.Err = err
		return res
	}

	res.Status = notify.StatusDelivered
	return res
}
