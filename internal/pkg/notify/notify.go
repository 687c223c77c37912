// Package notify delivers one-time passcodes and other short notices to a
// user over SMS or email. Every delivery yields a Result; callers log it
// and do not fail the surrounding operation.
package notify

import (
	"context"
	"errors"
	"log/slog"
)

type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

var (
	ErrUnsupportedChannel = errors.New("notify: unsupported channel")
	ErrNoDestination      = errors.New("notify: destination is required")
)

// Notice is one message to one destination (a phone number or an address).
// Tags are opaque labels for logs and audit; providers ignore them.
type Notice struct {
	Channel     Channel
	Destination string
	Subject     string
	Body        string
	Tags        map[string]string
}

// Result reports what happened to a Notice. Reference is the provider's
// message id when there is one.
type Result struct {
	Status    Status
	Channel   Channel
	Provider  string
	Reference string
	Err       error
}

func (r Result) Delivered() bool { return r.Status == StatusDelivered }

// Notifier sends a Notice. It never panics on provider failure; failures
// come back as a Result with StatusFailed.
type Notifier interface {
	Send(ctx context.Context, n Notice) Result
}

func delivered(n Notice, provider, ref string) Result {
	return Result{Status: StatusDelivered, Channel: n.Channel, Provider: provider, Reference: ref}
}

func failed(n Notice, provider string, err error) Result {
	return Result{Status: StatusFailed, Channel: n.Channel, Provider: provider, Err: err}
}

// Log writes r at info when delivered and at warn otherwise.
func Log(ctx context.Context, r Result, attrs ...any) {
	attrs = append(attrs,
		"status", string(r.Status),
		"channel", string(r.Channel),
		"provider", r.Provider,
	)

	if r.Delivered() {
		slog.InfoContext(ctx, "notice delivered", append(attrs, "reference", r.Reference)...)
		return
	}

	slog.WarnContext(ctx, "notice not delivered", append(attrs, "error", r.Err)...)
}

// Mux routes a Notice to the Notifier registered for its channel.
type Mux map[Channel]Notifier

func (m Mux) Send(ctx context.Context, n Notice) Result {
	next, ok := m[n.Channel]
	if !ok || next == nil {
		return failed(n, "mux", ErrUnsupportedChannel)
	}
	return next.Send(ctx, n)
}
