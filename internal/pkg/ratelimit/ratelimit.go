// Package ratelimit counts events per key in fixed Redis windows.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidLimit is returned when limit or window is not positive.
var ErrInvalidLimit = errors.New("ratelimit: limit and window must be positive")

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	Count   int64
	// ResetIn is how long until the current window ends.
	ResetIn time.Duration
}

// Limiter admits or rejects one event for key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (Decision, error)
}

// FixedWindow implements Limiter with INCR and EXPIRE NX so the window
// starts at the first event and is never extended by later ones.
type FixedWindow struct {
	client redis.Cmdable
	prefix string
}

func NewFixedWindow(client redis.Cmdable, prefix string) *FixedWindow {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &FixedWindow{client: client, prefix: prefix}
}

func (f *FixedWindow) Allow(ctx context.Context, key string, limit int64, window time.Duration) (Decision, error) {
	if limit <= 0 || window <= 0 {
		return Decision{}, ErrInvalidLimit
	}

	fk := f.prefix + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := f.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, fk)
		p.ExpireNX(ctx, fk, window)
		ttl = p.PTTL(ctx, fk)
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	count := incr.Val()
	reset := ttl.Val()
	if reset < 0 {
		reset = window
	}

	return Decision{Allowed: count <= limit, Count: count, ResetIn: reset}, nil
}
