package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpauth/internal/identity/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
	"github.com/shandysiswandi/otpauth/internal/pkg/notify"
	"github.com/shandysiswandi/otpauth/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOTPTTL       = 10 * time.Minute
	defaultOTPWindow    = 15 * time.Minute
	defaultOTPPerWindow = 5
)

type repoDB interface {
	CreateUser(ctx context.Context, u entity.User) error
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*entity.User, error)

	// UpdateUserChallenge replaces any pending challenge.
	UpdateUserChallenge(ctx context.Context, userID int64, ch entity.Challenge) error
	UpdateUserProfile(ctx context.Context, userID int64, name, email string) error

	// The Consume* methods clear the challenge only while its stored hash
	// still equals codeHash, and return goerror.ErrNotFound otherwise.
	ConsumeChallengeWithSession(ctx context.Context, userID int64, codeHash, sessionHash string) error
	ConsumeChallengeWithPassword(ctx context.Context, userID int64, codeHash, passwordHash string) error
}

type otpEngine interface {
	GenerateSecret() (string, error)
	DeriveCode(secret string, at time.Time) (string, error)
}

type Usecase struct {
	repoDB    repoDB
	notifier  notify.Notifier
	limiter   ratelimit.Limiter
	validator validator.Validator
	cfg       config.Config
	password  hash.Hash
	hmac      hash.Hash
	otp       otpEngine
	uid       uid.NumberID
	uuid      uid.StringID
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	Notifier   notify.Notifier
	Limiter    ratelimit.Limiter
	Validator  validator.Validator
	Config     config.Config
	Password   hash.Hash
	HMAC       hash.Hash
	OTP        otpEngine
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		notifier:  dep.Notifier,
		limiter:   dep.Limiter,
		validator: dep.Validator,
		cfg:       dep.Config,
		password:  dep.Password,
		hmac:      dep.HMAC,
		otp:       dep.OTP,
		uid:       dep.UID,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		jwt:       dep.JWT,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) otpTTL() time.Duration {
	if d := s.cfg.GetMinute("modules.identity.otp.ttl_minutes"); d > 0 {
		return d
	}
	return defaultOTPTTL
}

func (s *Usecase) otpChannel() notify.Channel {
	if notify.Channel(s.cfg.GetString("modules.identity.otp.channel")) == notify.ChannelEmail {
		return notify.ChannelEmail
	}
	return notify.ChannelSMS
}

func (s *Usecase) otpThrottle() (int64, time.Duration) {
	limit := s.cfg.GetInt64("modules.identity.otp.max_per_window")
	if limit <= 0 {
		limit = defaultOTPPerWindow
	}

	window := s.cfg.GetMinute("modules.identity.otp.window_minutes")
	if window <= 0 {
		window = defaultOTPWindow
	}

	return limit, window
}
