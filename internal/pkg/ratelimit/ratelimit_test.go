package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedWindow_InvalidLimit(t *testing.T) {
	lim := NewFixedWindow(nil, "")
	require.Equal(t, "ratelimit:", lim.prefix)

	_, err := lim.Allow(context.Background(), "k", 0, time.Minute)
	require.ErrorIs(t, err, ErrInvalidLimit)

	_, err = lim.Allow(context.Background(), "k", 1, 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
}
