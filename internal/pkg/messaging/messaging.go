package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/stacktrace"
)

var (
	ErrDestinationRequired = errors.New("messaging: destination is required")
	ErrHandlerRequired     = errors.New("messaging: handler is required")
	ErrClosed              = errors.New("messaging: broker is closed")
)

// Message is a delivered payload.
type Message struct {
	ID          string
	Destination string
	Body        []byte
	Headers     map[string]string
	Timestamp   time.Time
}

// Handler processes one message.
type Handler func(ctx context.Context, msg Message) error

// Broker publishes to and subscribes on named destinations.
type Broker interface {
	io.Closer

	Publish(ctx context.Context, destination string, body []byte, headers map[string]string) error

	// Subscribe delivers messages from source to h until ctx is done.
	// Subscribers sharing a group split the stream; distinct groups each
	// receive every message.
	Subscribe(ctx context.Context, source, group string, h Handler) error
}

func invoke(ctx context.Context, driver string, h Handler, msg Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in messaging handler",
				"driver", driver,
				"destination", msg.Destination,
				"panic", rvr,
				"stack", stacktrace.Frames(debug.Stack()),
			)
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	return h(ctx, msg)
}

func check(destination string, h Handler) error {
	if destination == "" {
		return ErrDestinationRequired
	}
	if h == nil {
		return ErrHandlerRequired
	}
	return nil
}
