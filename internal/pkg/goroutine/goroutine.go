// Package goroutine runs long-lived background tasks with a concurrency cap
// and panic recovery.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/otpauth/internal/pkg/stacktrace"
)

const DefaultLimit = 64

var (
	ErrClosed = errors.New("goroutine: manager is closed")
	ErrFull   = errors.New("goroutine: concurrency limit reached")
)

// Manager starts tasks and collects their errors for Wait.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	mu     sync.Mutex
	errs   []error
	closed bool
}

func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager{sema: make(chan struct{}, limit)}
}

// Go starts f under name. It does not block: when the limit is reached or
// the manager is closed the task is refused and an error returned.
func (m *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	select {
	case m.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "goroutine limit reached", "task", name)
		return ErrFull
	}

	m.wg.Go(func() {
		defer func() { <-m.sema }()

		if err := m.run(ctx, name, f); err != nil {
			m.mu.Lock()
			m.errs = append(m.errs, err)
			m.mu.Unlock()
		}
	})

	return nil
}

func (m *Manager) run(ctx context.Context, name string, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in background task",
				"task", name,
				"because", rvr,
				"stack", stacktrace.Frames(debug.Stack()),
			)
			err = fmt.Errorf("%s: panic: %v", name, rvr)
		}
	}()

	if err := f(ctx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Wait refuses new tasks, blocks until running ones return and joins their errors.
func (m *Manager) Wait() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}
