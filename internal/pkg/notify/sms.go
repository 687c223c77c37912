package notify

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/pkg/sms"
)

// SMS delivers through an sms.Sender.
type SMS struct {
	sender   sms.Sender
	provider string
}

func NewSMS(sender sms.Sender, provider string) *SMS {
	return &SMS{sender: sender, provider: provider}
}

func (s *SMS) Send(ctx context.Context, n Notice) Result {
	if n.Channel != ChannelSMS {
		return failed(n, s.provider, ErrUnsupportedChannel)
	}
	if n.Destination == "" {
		return failed(n, s.provider, ErrNoDestination)
	}

	ref, err := s.sender.Send(ctx, n.Destination, n.Body)
	if err != nil {
		return failed(n, s.provider, err)
	}

	return delivered(n, s.provider, ref)
}
