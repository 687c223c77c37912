// Package idempotency runs a keyed operation at most once across consumers,
// tracking its state in Redis.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
)

type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

func (s State) String() string {
	return string(s)
}

// Idempotency runs fn once per key. A failed fn releases the key so a
// redelivery can try again.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long a crashed holder blocks the key.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = d
	}
}

// WithStateTTL sets how long a completed key is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) {
		o.stateTTL = d
	}
}

// StateTracker implements Idempotency with SET NX.
type StateTracker struct {
	client redis.Cmdable
	prefix string
}

func New(client redis.Cmdable, prefix string) *StateTracker {
	if prefix == "" {
		prefix = "idempotency:"
	}
	return &StateTracker{client: client, prefix: prefix}
}

func (s *StateTracker) acquire(ctx context.Context, key string, lock time.Duration) error {
	// one retry covers a key that expired between SET NX and GET
	for range 2 {
		ok, err := s.client.SetNX(ctx, key, StateInProgress.String(), lock).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		v, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return err
		}

		switch State(v) {
		case StateInProgress:
			return ErrAlreadyInProgress
		case StateCompleted:
			return ErrAlreadyCompleted
		default:
			return ErrInvalidState
		}
	}

	return ErrInvalidState
}

func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := &execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(o)
	}
	if o.lockDuration <= 0 {
		o.lockDuration = defaultLockDuration
	}
	if o.stateTTL <= 0 {
		o.stateTTL = defaultStateTTL
	}

	fk := s.prefix + key
	if err := s.acquire(ctx, fk, o.lockDuration); err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		return errors.Join(err, s.client.Del(context.WithoutCancel(ctx), fk).Err())
	}

	return s.client.Set(ctx, fk, StateCompleted.String(), o.stateTTL).Err()
}
