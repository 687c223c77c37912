package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/mail"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	to, body string
	ref      string
	err      error
}

func (f *fakeSender) Send(_ context.Context, to, body string) (string, error) {
	f.to, f.body = to, body
	return f.ref, f.err
}

type fakeMail struct {
	got mail.Message
	err error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.got = msg
	return f.err
}

type flaky struct {
	calls    int
	failures int
	err      error
}

func (f *flaky) Send(_ context.Context, n Notice) Result {
	f.calls++
	if f.calls <= f.failures {
		return failed(n, "flaky", f.err)
	}
	return delivered(n, "flaky", "ref")
}

// hung never answers until its context ends.
type hung struct {
	calls int
}

func (h *hung) Send(ctx context.Context, n Notice) Result {
	h.calls++
	<-ctx.Done()
	return failed(n, "hung", ctx.Err())
}

func TestSMS(t *testing.T) {
	t.Run("delivered", func(t *testing.T) {
		// Arrange
		s := &fakeSender{ref: "SM1"}
		n := NewSMS(s, "twilio")

		// Act
		res := n.Send(context.Background(), Notice{Channel: ChannelSMS, Destination: "+1000", Body: "code"})

		// Assert
		require.True(t, res.Delivered())
		require.Equal(t, Result{Status: StatusDelivered, Channel: ChannelSMS, Provider: "twilio", Reference: "SM1"}, res)
		require.Equal(t, "+1000", s.to)
		require.Equal(t, "code", s.body)
	})

	t.Run("provider failure", func(t *testing.T) {
		n := NewSMS(&fakeSender{err: errors.New("down")}, "twilio")

		res := n.Send(context.Background(), Notice{Channel: ChannelSMS, Destination: "+1000"})

		require.Equal(t, StatusFailed, res.Status)
		require.EqualError(t, res.Err, "down")
	})

	t.Run("wrong channel", func(t *testing.T) {
		res := NewSMS(&fakeSender{}, "twilio").Send(context.Background(), Notice{Channel: ChannelEmail, Destination: "x"})
		require.ErrorIs(t, res.Err, ErrUnsupportedChannel)
	})

	t.Run("no destination", func(t *testing.T) {
		res := NewSMS(&fakeSender{}, "twilio").Send(context.Background(), Notice{Channel: ChannelSMS})
		require.ErrorIs(t, res.Err, ErrNoDestination)
	})
}

func TestEmail(t *testing.T) {
	m := &fakeMail{}
	res := NewEmail(m).Send(context.Background(), Notice{Channel: ChannelEmail, Destination: "a@x.io", Subject: "s", Body: "b"})

	require.True(t, res.Delivered())
	require.Equal(t, mail.Message{To: []string{"a@x.io"}, Subject: "s", Body: "b"}, m.got)

	m.err = errors.New("smtp down")
	res = NewEmail(m).Send(context.Background(), Notice{Channel: ChannelEmail, Destination: "a@x.io"})
	require.Equal(t, StatusFailed, res.Status)
	require.Equal(t, "smtp", res.Provider)
}

func TestMux(t *testing.T) {
	mux := Mux{ChannelSMS: NewSMS(&fakeSender{ref: "r"}, "twilio")}

	require.True(t, mux.Send(context.Background(), Notice{Channel: ChannelSMS, Destination: "+1"}).Delivered())

	res := mux.Send(context.Background(), Notice{Channel: ChannelEmail, Destination: "a@x.io"})
	require.ErrorIs(t, res.Err, ErrUnsupportedChannel)
}

func TestRetry(t *testing.T) {
	n := Notice{Channel: ChannelSMS, Destination: "+1"}

	t.Run("recovers", func(t *testing.T) {
		f := &flaky{failures: 2, err: errors.New("503")}

		res := NewRetry(f, 3, time.Millisecond).Send(context.Background(), n)

		require.True(t, res.Delivered())
		require.Equal(t, 3, f.calls)
	})

	t.Run("gives up", func(t *testing.T) {
		f := &flaky{failures: 10, err: errors.New("503")}

		res := NewRetry(f, 2, time.Millisecond).Send(context.Background(), n)

		require.Equal(t, StatusFailed, res.Status)
		require.EqualError(t, res.Err, "503")
		require.Equal(t, 3, f.calls)
	})

	t.Run("does not retry validation failures", func(t *testing.T) {
		f := &flaky{failures: 10, err: ErrNoDestination}

		res := NewRetry(f, 5, time.Millisecond).Send(context.Background(), n)

		require.ErrorIs(t, res.Err, ErrNoDestination)
		require.Equal(t, 1, f.calls)
	})

	t.Run("stops on context end", func(t *testing.T) {
		f := &flaky{failures: 10, err: errors.New("503")}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		res := NewRetry(f, 5, time.Second).Send(ctx, n)

		require.Equal(t, StatusFailed, res.Status)
		require.ErrorIs(t, res.Err, context.DeadlineExceeded)
		require.Equal(t, 1, f.calls)
	})

	t.Run("bounds each attempt", func(t *testing.T) {
		// Arrange
		h := &hung{}
		r := NewRetry(h, 2, time.Millisecond, WithAttemptTimeout(20*time.Millisecond), WithMaxWait(5*time.Millisecond))
		start := time.Now()

		// Act
		res := r.Send(context.Background(), n)

		// Assert
		require.Equal(t, StatusFailed, res.Status)
		require.ErrorIs(t, res.Err, context.DeadlineExceeded)
		require.Equal(t, 3, h.calls)
		require.Less(t, time.Since(start), 2*time.Second)
	})
}
