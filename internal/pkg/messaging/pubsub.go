package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

var ErrPubSubProjectRequired = errors.New("messaging: pubsub project id is required")

type PubSubConfig struct {
	ProjectID string
	// Endpoint points the client at an emulator; it also disables auth.
	Endpoint        string
	CredentialsFile string
}

// PubSub is a Broker over Google Pub/Sub. Destinations are topic IDs; on
// Subscribe the group (or the source when group is empty) names the
// subscription, which must already exist.
type PubSub struct {
	client *pubsub.Client

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.ProjectID == "" {
		return nil, ErrPubSubProjectRequired
	}

	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	} else if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	c, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub client: %w", err)
	}

	return &PubSub{client: c, publishers: map[string]*pubsub.Publisher{}}, nil
}

func (p *PubSub) publisher(topic string) *pubsub.Publisher {
	p.mu.Lock()
	defer p.mu.Unlock()

	pub, ok := p.publishers[topic]
	if !ok {
		pub = p.client.Publisher(topic)
		p.publishers[topic] = pub
	}
	return pub
}

func (p *PubSub) Publish(ctx context.Context, destination string, body []byte, headers map[string]string) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	res := p.publisher(destination).Publish(ctx, &pubsub.Message{Data: body, Attributes: headers})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("messaging: pubsub publish: %w", err)
	}

	return nil
}

func (p *PubSub) Subscribe(ctx context.Context, source, group string, h Handler) error {
	if err := check(source, h); err != nil {
		return err
	}

	name := group
	if name == "" {
		name = source
	}

	err := p.client.Subscriber(name).Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		err := invoke(ctx, DriverPubSub, h, Message{
			ID:          m.ID,
			Destination: source,
			Body:        m.Data,
			Headers:     m.Attributes,
			Timestamp:   m.PublishTime,
		})
		if err != nil {
			m.Nack()
			return
		}
		m.Ack()
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("messaging: pubsub receive: %w", err)
	}

	return nil
}

func (p *PubSub) Close() error {
	p.mu.Lock()
	pubs := p.publishers
	p.publishers = map[string]*pubsub.Publisher{}
	p.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}

	return p.client.Close()
}
