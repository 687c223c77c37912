package notify

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
)

// Email delivers through a mail.Mail. SMTP has no message id to report.
type Email struct {
	mailer mail.Mail
}

func NewEmail(mailer mail.Mail) *Email {
	return &Email{mailer: mailer}
}

func (e *Email) Send(ctx context.Context, n Notice) Result {
	if n.Channel != ChannelEmail {
		return failed(n, "smtp", ErrUnsupportedChannel)
	}
	if n.Destination == "" {
		return failed(n, "smtp", ErrNoDestination)
	}

	err := e.mailer.Send(ctx, mail.Message{
		To:      []string{n.Destination},
		Subject: n.Subject,
		Body:    n.Body,
	})
	if err != nil {
		return failed(n, "smtp", err)
	}

	return delivered(n, "smtp", "")
}
