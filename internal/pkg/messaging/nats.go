package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

var ErrNATSURLRequired = errors.New("messaging: nats url is required")

type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS is a Broker over core NATS subjects. Groups map to queue groups.
// Core NATS has no redelivery, so a failed handler only logs.
type NATS struct {
	conn *nats.Conn
}

func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}

	return &NATS{conn: conn}, nil
}

func (n *NATS) Publish(ctx context.Context, destination string, body []byte, headers map[string]string) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	msg := nats.NewMsg(destination)
	msg.Data = body
	for k, v := range headers {
		msg.Header.Set(k, v)
	}

	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}

	if _, ok := ctx.Deadline(); ok {
		return n.conn.FlushWithContext(ctx)
	}
	return n.conn.FlushTimeout(flushTimeout)
}

const flushTimeout = 5 * time.Second

func (n *NATS) Subscribe(ctx context.Context, source, group string, h Handler) error {
	if err := check(source, h); err != nil {
		return err
	}

	cb := func(m *nats.Msg) {
		headers := make(map[string]string, len(m.Header))
		for k := range m.Header {
			headers[k] = m.Header.Get(k)
		}

		_ = invoke(ctx, DriverNATS, h, Message{
			Destination: m.Subject,
			Body:        m.Data,
			Headers:     headers,
			Timestamp:   time.Now(),
		})
	}

	var (
		sub *nats.Subscription
		err error
	)
	if group != "" {
		sub, err = n.conn.QueueSubscribe(source, group, cb)
	} else {
		sub, err = n.conn.Subscribe(source, cb)
	}
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe: %w", err)
	}

	<-ctx.Done()

	return sub.Drain()
}

func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}
	return nil
}
