package mail

import "context"

// Message is a single plain-text email.
type Message struct {
	// From overrides the configured sender when set.
	From    string
	To      []string
	Subject string
	Body    string
}

// Mail sends messages.
type Mail interface {
	Send(ctx context.Context, msg Message) error
}
