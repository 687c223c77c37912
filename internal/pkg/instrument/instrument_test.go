package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestCorrelationID(t *testing.T) {
	require.Empty(t, GetCorrelationID(context.Background()))

	ctx := SetCorrelationID(context.Background(), "cid-1")
	require.Equal(t, "cid-1", GetCorrelationID(ctx))
}

func TestHandler(t *testing.T) {
	t.Run("adds context fields and masks", func(t *testing.T) {
		// Arrange
		buf := &bytes.Buffer{}
		log := slog.New(newHandler(buf, Config{ServiceName: "otpauth", MaskFields: []string{"Password", " otp_code "}}, nil))
		ctx := SetCorrelationID(context.Background(), "cid-2")

		// Act
		log.InfoContext(ctx, "hello",
			"password", "secret",
			"user", map[string]any{"otp_code": "123456", "email": "a@x.io"},
			slog.Group("req", slog.String("OTP_CODE", "654321")),
		)

		// Assert
		out := decode(t, buf)
		require.Equal(t, "hello", out["msg"])
		require.Equal(t, "INFO", out["severity"])
		require.Equal(t, "cid-2", out["_cID"])
		require.Equal(t, "otpauth", out["service"])
		require.Equal(t, "***", out["password"])
		require.Equal(t, map[string]any{"otp_code": "***", "email": "a@x.io"}, out["user"])
		require.Equal(t, map[string]any{"OTP_CODE": "***"}, out["req"])
		require.Contains(t, out, "ts")
	})

	t.Run("level filter", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := slog.New(newHandler(buf, Config{LogLevel: "warn"}, nil))

		log.Info("dropped")
		require.Zero(t, buf.Len())

		log.Warn("kept")
		require.Equal(t, "WARN", decode(t, buf)["severity"])
	})

	t.Run("with attrs are masked", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := slog.New(newHandler(buf, Config{MaskFields: []string{"token"}}, nil)).With("token", "abc")

		log.Info("x")
		require.Equal(t, "***", decode(t, buf)["token"])
	})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLevel("warning"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestNew_Disabled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	ins, err := New(context.Background(), Config{})
	require.NoError(t, err)

	_, span := ins.Tracer("t").Start(context.Background(), "s")
	span.End()
	require.NoError(t, ins.Shutdown(context.Background()))
}
