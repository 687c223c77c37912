//go:build integration

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/notify"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const configTemplate = `
app:
  tz: UTC
  server:
    max_goroutine: 8
instrument:
  enabled: false
jwt:
  secret: %s
  issuer: otpauth
  audiences: otpauth-api
  ttl_minutes: 60
hash:
  hmac:
    secret: e2e-hmac-secret
  password:
    algorithm: bcrypt
    bcrypt_cost: 4
database:
  url: %s
  migrate: true
  pool:
    max_conns: 4
    min_conns: 1
    max_conn_lifetime_seconds: 300
    max_conn_idle_seconds: 60
    health_check_period_seconds: 30
redis:
  url: %s
  ratelimit_prefix: "e2e:"
sms:
  twilio:
    account_sid: AC-e2e
    auth_token: e2e
    from: "+15550000000"
messaging:
  driver: memory
modules:
  identity:
    enabled: true
    notifier:
      mode: queue
    otp:
      channel: sms
      ttl_minutes: 10
      max_per_window: 100
      window_minutes: 15
  notification:
    enabled: true
    consumer_names: otp_dispatch_notification
`

var reCode = regexp.MustCompile(`\b\d{6}\b`)

type captureNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (c *captureNotifier) Send(_ context.Context, n notify.Notice) notify.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notices = append(c.notices, n)

	return notify.Result{Status: notify.StatusDelivered, Channel: n.Channel, Provider: "capture"}
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.notices)
}

// settle waits until no notice has arrived for a short while and returns the count.
func (c *captureNotifier) settle() int {
	n := c.count()
	for {
		time.Sleep(300 * time.Millisecond)
		m := c.count()
		if m == n {
			return n
		}
		n = m
	}
}

func (c *captureNotifier) lastCode(t *testing.T) string {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	require.NotEmpty(t, c.notices)
	code := reCode.FindString(c.notices[len(c.notices)-1].Body)
	require.NotEmpty(t, code)

	return code
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

type client struct {
	base string
	http *http.Client
}

func (c client) do(t *testing.T, method, path string, payload any, token string) (int, envelope) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req, err := http.NewRequest(method, c.base+path, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	return resp.StatusCode, env
}

func startApp(t *testing.T) (client, *captureNotifier) {
	t.Helper()

	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("otpauth"),
		tcpostgres.WithUsername("otpauth"),
		tcpostgres.WithPassword("otpauth"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)
	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rd, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, rd)
	require.NoError(t, err)
	redisURL, err := rd.ConnectionString(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	secret := strings.Repeat("k", 64)
	require.NoError(t, os.WriteFile(path, fmt.Appendf(nil, configTemplate, secret, dsn, redisURL), 0o600))
	t.Setenv("CONFIG_PATH", path)

	appCtx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: appCtx, cancel: cancel}
	capture := &captureNotifier{}

	a.initConfig()
	a.initInstrument()
	a.initLibraries()
	a.initJWT()
	a.initDatabase()
	a.initCache()
	a.notifier = capture
	a.initMessaging()
	a.initHTTPServer()
	a.initModules()
	a.initClosers()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errChan := a.Serve(l)

	t.Cleanup(func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		a.Stop(stopCtx)
		require.ErrorIs(t, <-errChan, http.ErrServerClosed)
	})

	return client{base: "http://" + l.Addr().String(), http: &http.Client{Timeout: 5 * time.Second}}, capture
}

func TestApp(t *testing.T) {
	c, capture := startApp(t)

	const (
		email    = "ada@example.com"
		mobile   = "+15551234567"
		password = "correct-horse"
		changed  = "battery-staple"
	)

	var (
		identifier string
		token      string
	)

	t.Run("Health", func(t *testing.T) {
		// Act
		status, env := c.do(t, http.MethodGet, "/api/health", nil, "")

		// Assert
		require.Equal(t, http.StatusOK, status)
		require.True(t, env.Success)
	})

	t.Run("Register", func(t *testing.T) {
		// Act
		status, env := c.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name":     "Ada",
			"email":    email,
			"mobile":   mobile,
			"password": password,
		}, "")

		// Assert
		require.Equal(t, http.StatusOK, status, env.Message)
		var data struct {
			Identifier string `json:"identifier"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.NotEmpty(t, data.Identifier)
		identifier = data.Identifier
	})

	t.Run("LoginAndVerify", func(t *testing.T) {
		// Arrange
		// the consumer subscribes in the background; log in until a code arrives
		require.Eventually(t, func() bool {
			status, _ := c.do(t, http.MethodPost, "/api/auth/login", map[string]string{
				"email":    email,
				"password": password,
			}, "")
			return status == http.StatusOK && capture.count() > 0
		}, 10*time.Second, 200*time.Millisecond)

		before := capture.settle()
		status, env := c.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    email,
			"password": password,
		}, "")
		require.Equal(t, http.StatusOK, status, env.Message)
		require.Eventually(t, func() bool { return capture.count() == before+1 }, 5*time.Second, 50*time.Millisecond)
		code := capture.lastCode(t)

		// Act
		status, env = c.do(t, http.MethodPost, "/api/auth/verify-2fa", map[string]string{
			"email": email,
			"code":  code,
		}, "")

		// Assert
		require.Equal(t, http.StatusOK, status, env.Message)
		var data struct {
			Identifier string `json:"identifier"`
			Token      string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Equal(t, identifier, data.Identifier)
		require.NotEmpty(t, data.Token)
		token = data.Token
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		// Act
		status, env := c.do(t, http.MethodPut, "/api/auth/update-user/"+identifier, map[string]string{
			"name": "Ada Lovelace",
		}, token)

		// Assert
		require.Equal(t, http.StatusOK, status, env.Message)
		var data struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Equal(t, "Ada Lovelace", data.Name)
	})

	t.Run("UpdateProfileWithoutToken", func(t *testing.T) {
		// Act
		status, env := c.do(t, http.MethodPut, "/api/auth/update-user/"+identifier, map[string]string{
			"name": "Mallory",
		}, "")

		// Assert
		require.Equal(t, http.StatusUnauthorized, status)
		require.False(t, env.Success)
	})

	t.Run("ChangePassword", func(t *testing.T) {
		// Arrange
		before := capture.count()
		status, env := c.do(t, http.MethodPost, "/api/auth/change-password/"+identifier, map[string]string{
			"current_password": password,
		}, token)
		require.Equal(t, http.StatusOK, status, env.Message)
		require.Eventually(t, func() bool { return capture.count() > before }, 5*time.Second, 50*time.Millisecond)

		// Act
		status, env = c.do(t, http.MethodPost, "/api/auth/verify-password-change/"+identifier, map[string]string{
			"code":         capture.lastCode(t),
			"new_password": changed,
		}, token)

		// Assert
		require.Equal(t, http.StatusOK, status, env.Message)

		status, _ = c.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    email,
			"password": password,
		}, "")
		require.Equal(t, http.StatusUnauthorized, status)

		status, _ = c.do(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    email,
			"password": changed,
		}, "")
		require.Equal(t, http.StatusOK, status)
	})
}
