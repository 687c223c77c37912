package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

var ErrNSQAddrRequired = errors.New("messaging: nsq nsqd address is required")

type NSQConfig struct {
	// NSQDAddr is used for publishing and, without lookupd, for consuming.
	NSQDAddr     string
	LookupdAddrs []string
	// DefaultChannel is the channel used when Subscribe gets no group.
	DefaultChannel string
}

// NSQ is a Broker over nsqd. NSQ has no message headers, so headers and
// body travel together in a JSON envelope. Groups map to channels.
type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer
}

type nsqEnvelope struct {
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body"`
}

func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.NSQDAddr == "" {
		return nil, ErrNSQAddrRequired
	}
	if cfg.DefaultChannel == "" {
		cfg.DefaultChannel = "default"
	}

	p, err := nsq.NewProducer(cfg.NSQDAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{cfg: cfg, producer: p}, nil
}

func (n *NSQ) Publish(_ context.Context, destination string, body []byte, headers map[string]string) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	data, err := json.Marshal(nsqEnvelope{Headers: headers, Body: body})
	if err != nil {
		return err
	}

	if err := n.producer.Publish(destination, data); err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return nil
}

func (n *NSQ) Subscribe(ctx context.Context, source, group string, h Handler) error {
	if err := check(source, h); err != nil {
		return err
	}
	if group == "" {
		group = n.cfg.DefaultChannel
	}

	c, err := nsq.NewConsumer(source, group, nsq.NewConfig())
	if err != nil {
		return fmt.Errorf("messaging: nsq consumer: %w", err)
	}
	c.SetLoggerLevel(nsq.LogLevelError)

	c.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		var env nsqEnvelope
		if err := json.Unmarshal(m.Body, &env); err != nil {
			// not ours; finish so it is not redelivered forever
			return nil
		}

		return invoke(ctx, DriverNSQ, h, Message{
			ID:          string(m.ID[:]),
			Destination: source,
			Body:        env.Body,
			Headers:     env.Headers,
			Timestamp:   time.Unix(0, m.Timestamp),
		})
	}))

	if len(n.cfg.LookupdAddrs) > 0 {
		err = c.ConnectToNSQLookupds(n.cfg.LookupdAddrs)
	} else {
		err = c.ConnectToNSQD(n.cfg.NSQDAddr)
	}
	if err != nil {
		c.Stop()
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	<-ctx.Done()
	c.Stop()
	<-c.StopChan

	return nil
}

func (n *NSQ) Close() error {
	n.producer.Stop()
	return nil
}
