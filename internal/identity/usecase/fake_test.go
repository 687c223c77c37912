package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
	"github.com/shandysiswandi/otpauth/internal/pkg/notify"
	"github.com/shandysiswandi/otpauth/internal/pkg/otp"
	"github.com/shandysiswandi/otpauth/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps users in memory with the same uniqueness and
// compare-and-clear rules as the postgres store.
type fakeRepo struct {
	mu    sync.Mutex
	users map[int64]entity.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]entity.User{}}
}

func (r *fakeRepo) CreateUser(_ context.Context, u entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, x := range r.users {
		if x.Email == u.Email || x.Mobile == u.Mobile {
			return goerror.ErrConflict
		}
	}
	r.users[u.ID] = u

	return nil
}

func (r *fakeRepo) find(match func(entity.User) bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			cp := u
			if u.Challenge != nil {
				ch := *u.Challenge
				cp.Challenge = &ch
			}
			if u.SessionHash != nil {
				sh := *u.SessionHash
				cp.SessionHash = &sh
			}
			return &cp, nil
		}
	}

	return nil, goerror.ErrNotFound
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email })
}

func (r *fakeRepo) GetUserByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Identifier == identifier })
}

func (r *fakeRepo) UpdateUserChallenge(_ context.Context, userID int64, ch entity.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	u.Challenge = &ch
	r.users[userID] = u

	return nil
}

func (r *fakeRepo) UpdateUserProfile(_ context.Context, userID int64, name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	for id, x := range r.users {
		if id != userID && x.Email == email {
			return goerror.ErrConflict
		}
	}
	u.Name, u.Email = name, email
	r.users[userID] = u

	return nil
}

func (r *fakeRepo) consume(userID int64, codeHash string, apply func(*entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || u.Challenge == nil || u.Challenge.CodeHash != codeHash {
		return goerror.ErrNotFound
	}
	u.Challenge = nil
	apply(&u)
	r.users[userID] = u

	return nil
}

func (r *fakeRepo) ConsumeChallengeWithSession(_ context.Context, userID int64, codeHash, sessionHash string) error {
	return r.consume(userID, codeHash, func(u *entity.User) { u.SessionHash = &sessionHash })
}

func (r *fakeRepo) ConsumeChallengeWithPassword(_ context.Context, userID int64, codeHash, passwordHash string) error {
	return r.consume(userID, codeHash, func(u *entity.User) { u.PasswordHash = passwordHash })
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
	fail    bool
}

func (f *fakeNotifier) Send(_ context.Context, n notify.Notice) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notices = append(f.notices, n)
	if f.fail {
		return notify.Result{Status: notify.StatusFailed, Channel: n.Channel, Provider: "fake", Err: context.DeadlineExceeded}
	}
	return notify.Result{Status: notify.StatusDelivered, Channel: n.Channel, Provider: "fake", Reference: "ref"}
}

var reCode = regexp.MustCompile(`\b\d{6}\b`)

// lastCode returns the code carried by the latest notice.
func (f *fakeNotifier) lastCode(t *testing.T) string {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.notices, "no notice was sent")
	code := reCode.FindString(f.notices[len(f.notices)-1].Body)
	require.NotEmpty(t, code)

	return code
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.notices)
}

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit int64, window time.Duration) (ratelimit.Decision, error) {
	if f.err != nil {
		return ratelimit.Decision{}, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.counts[key]++
	n := f.counts[key]

	return ratelimit.Decision{Allowed: n <= limit, Count: n, ResetIn: window}, nil
}

func otpConfig(channel string, perWindow int) string {
	return fmt.Sprintf(`
modules:
  identity:
    otp:
      ttl_minutes: 10
      channel: %s
      max_per_window: %d
      window_minutes: 15
`, channel, perWindow)
}

type fixture struct {
	uc       *Usecase
	repo     *fakeRepo
	notifier *fakeNotifier
	limiter  *fakeLimiter
	clock    *clock.Manual
	jwt      *jwt.Symmetric
	password hash.Hash
}

func newFixture(t *testing.T, yaml ...string) *fixture {
	t.Helper()

	doc := otpConfig("sms", 5)
	if len(yaml) > 0 {
		doc = yaml[0]
	}
	cfg, err := config.NewViperFromBytes("yaml", []byte(doc))
	require.NoError(t, err)

	v, err := validator.NewV10()
	require.NoError(t, err)

	engine, err := otp.New(otp.DefaultStep)
	require.NoError(t, err)

	snow, err := uid.NewSnowflake(1)
	require.NoError(t, err)

	clk := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	tokens, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "otpauth",
		Audiences: []string{"otpauth-api"},
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	f := &fixture{
		repo:     newFakeRepo(),
		notifier: &fakeNotifier{},
		limiter:  &fakeLimiter{counts: map[string]int64{}},
		clock:    clk,
		jwt:      tokens,
		password: hash.NewBcrypt(4, "pepper"),
	}

	f.uc = New(Dependency{
		RepoDB:     f.repo,
		Notifier:   f.notifier,
		Limiter:    f.limiter,
		Validator:  v,
		Config:     cfg,
		Password:   f.password,
		HMAC:       hash.NewHMACSHA256("hmac-secret"),
		OTP:        engine,
		UID:        snow,
		UUID:       uid.NewUUID(),
		Clock:      clk,
		JWT:        tokens,
		Instrument: instrument.NewNoop(),
	})

	return f
}

const (
	testName     = "Ada Lovelace"
	testEmail    = "ada@example.com"
	testMobile   = "+15550001111"
	testPassword = "correct-horse"
)

func (f *fixture) register(t *testing.T) string {
	t.Helper()

	out, err := f.uc.Register(context.Background(), RegisterInput{
		Name:     testName,
		Email:    testEmail,
		Mobile:   testMobile,
		Password: testPassword,
	})
	require.NoError(t, err)

	return out.Identifier
}

// signIn registers a user and completes the login flow.
func (f *fixture) signIn(t *testing.T) *entity.Profile {
	t.Helper()

	f.register(t)
	require.NoError(t, f.uc.Login(context.Background(), LoginInput{Email: testEmail, Password: testPassword}))

	p, err := f.uc.Verify2FA(context.Background(), Verify2FAInput{Email: testEmail, Code: f.notifier.lastCode(t)})
	require.NoError(t, err)

	return p
}

// authed returns a context carrying the verified claims of token.
func (f *fixture) authed(t *testing.T, token string) context.Context {
	t.Helper()

	clm, err := f.jwt.Verify(token)
	require.NoError(t, err)

	return jwt.SetAuth(context.Background(), clm)
}

func (f *fixture) stored(t *testing.T) *entity.User {
	t.Helper()

	u, err := f.repo.GetUserByEmail(context.Background(), testEmail)
	require.NoError(t, err)

	return u
}

// wrongCode returns a six digit code different from code.
func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func requireCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	require.Error(t, err)
	require.Equal(t, code, goerror.CodeOf(err), "got %v", err)
}
