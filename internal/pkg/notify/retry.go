package notify

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

var errUnknown = errors.New("notify: delivery failed without a cause")

// Retry re-sends a failed Notice with exponential backoff. Validation
// failures (unsupported channel, empty destination) are not retried.
//
// Each try runs under its own timeout, so one Send takes at most
// (attempts+1)*timeout plus the backoff waits.
type Retry struct {
	next     Notifier
	attempts uint64
	base     time.Duration
	maxWait  time.Duration
	timeout  time.Duration
}

type RetryOption func(*Retry)

// WithAttemptTimeout bounds a single try. Zero or less keeps the default.
func WithAttemptTimeout(d time.Duration) RetryOption {
	return func(r *Retry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMaxWait caps one backoff wait. Zero or less keeps the default.
func WithMaxWait(d time.Duration) RetryOption {
	return func(r *Retry) {
		if d > 0 {
			r.maxWait = d
		}
	}
}

// NewRetry wraps next. attempts counts retries after the first try.
func NewRetry(next Notifier, attempts uint64, base time.Duration, opts ...RetryOption) *Retry {
	if base <= 0 {
		base = 200 * time.Millisecond
	}

	r := &Retry{next: next, attempts: attempts, base: base, maxWait: 2 * time.Second, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Retry) try(ctx context.Context, n Notice) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.next.Send(ctx, n)
}

func (r *Retry) Send(ctx context.Context, n Notice) Result {
	b := retry.WithCappedDuration(r.maxWait, retry.NewExponential(r.base))
	b = retry.WithMaxRetries(r.attempts, b)

	var res Result
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		res = r.try(ctx, n)
		if res.Delivered() {
			return nil
		}
		if res.Err == nil {
			res.Err = errUnknown
		}
		if errors.Is(res.Err, ErrUnsupportedChannel) || errors.Is(res.Err, ErrNoDestination) {
			return res.Err
		}
		return retry.RetryableError(res.Err)
	})
	if res.Status == "" {
		return failed(n, "", err)
	}
	if err != nil && !errors.Is(err, res.Err) {
		// backoff interrupted by ctx
		res.Err = errors.Join(res.Err, err)
	}

	return res
}
