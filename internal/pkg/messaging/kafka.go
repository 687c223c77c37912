package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/segmentio/kafka-go"
)

var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

type KafkaConfig struct {
	Brokers []string
	// DefaultGroup is the consumer group used when Subscribe gets none.
	DefaultGroup string
}

// Kafka is a Broker over kafka-go. Offsets are committed after the handler
// returns, whether or not it failed; failures are logged.
type Kafka struct {
	writer       *kafka.Writer
	brokers      []string
	defaultGroup string

	mu      sync.Mutex
	readers []*kafka.Reader
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		brokers:      cfg.Brokers,
		defaultGroup: cfg.DefaultGroup,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, destination string, body []byte, headers map[string]string) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	msg := kafka.Message{Topic: destination, Value: body}
	for key, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: key, Value: []byte(v)})
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("messaging: kafka write: %w", err)
	}

	return nil
}

func (k *Kafka) Subscribe(ctx context.Context, source, group string, h Handler) error {
	if err := check(source, h); err != nil {
		return err
	}
	if group == "" {
		group = k.defaultGroup
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: k.brokers,
		GroupID: group,
		Topic:   source,
	})
	k.mu.Lock()
	k.readers = append(k.readers, r)
	k.mu.Unlock()

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("messaging: kafka fetch: %w", err)
		}

		headers := make(map[string]string, len(m.Headers))
		for _, hd := range m.Headers {
			headers[hd.Key] = string(hd.Value)
		}

		err = invoke(ctx, DriverKafka, h, Message{
			ID:          strconv.Itoa(m.Partition) + ":" + strconv.FormatInt(m.Offset, 10),
			Destination: m.Topic,
			Body:        m.Value,
			Headers:     headers,
			Timestamp:   m.Time,
		})
		if err != nil {
			slog.WarnContext(ctx, "kafka handler failed, committing anyway", "topic", m.Topic, "offset", m.Offset, "error", err)
		}

		if err := r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			return fmt.Errorf("messaging: kafka commit: %w", err)
		}
	}
}

func (k *Kafka) Close() error {
	k.mu.Lock()
	readers := k.readers
	k.readers = nil
	k.mu.Unlock()

	errs := []error{k.writer.Close()}
	for _, r := range readers {
		errs = append(errs, r.Close())
	}

	return errors.Join(errs...)
}
