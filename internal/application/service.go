package application

import (
	"time"

	"github.com/hernanharco/authcenter-backend/internal/ports"
	"go.uber.org/zap"
)

const (
	defaultExtendedTokenTTL     = 7 * 24 * time.Hour
	defaultListLimitMax         = 100
	defaultLoginHistoryMax      = 50
	defaultFailedLoginThreshold = 5
	defaultLockoutDuration      = 15 * time.Minute
)

// Service is the account lifecycle and authentication use-case layer.
// It is safe for concurrent use; all state lives behind its ports.
type Service struct {
	cfg           Config
	accounts      ports.AccountRepository
	loginAttempts ports.LoginAttemptRepository
	lockouts      ports.LockoutStore
	hasher        ports.PasswordHasher
	tokens        ports.TokenService
	oauth         ports.OAuthExchanger
	nowFn         func() time.Time
}

// Dependencies groups the adapters the service is built from.
// LoginAttempts, Lockouts and OAuth are optional.
type Dependencies struct {
	Config        Config
	Accounts      ports.AccountRepository
	LoginAttempts ports.LoginAttemptRepository
	Lockouts      ports.LockoutStore
	Hasher        ports.PasswordHasher
	Tokens        ports.TokenService
	OAuth         ports.OAuthExchanger
	// Clock defaults to the UTC wall clock.
	Clock func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ExtendedTokenTTL <= 0 {
		cfg.ExtendedTokenTTL = defaultExtendedTokenTTL
	}
	if cfg.ListLimitMax <= 0 {
		cfg.ListLimitMax = defaultListLimitMax
	}
	if cfg.LoginHistoryMax <= 0 {
		cfg.LoginHistoryMax = defaultLoginHistoryMax
	}
	if cfg.FailedLoginThreshold <= 0 {
		cfg.FailedLoginThreshold = defaultFailedLoginThreshold
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaultLockoutDuration
	}
	nowFn := deps.Clock
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:           cfg,
		accounts:      deps.Accounts,
		loginAttempts: deps.LoginAttempts,
		lockouts:      deps.Lockouts,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		oauth:         deps.OAuth,
		nowFn:         nowFn,
	}
}

// DefaultTokenTTL is the lifetime of a session that was not remembered.
func (s *Service) DefaultTokenTTL() time.Duration {
	return s.tokens.DefaultTTL()
}

// ExtendedTokenTTL is the lifetime of a remembered session.
func (s *Service) ExtendedTokenTTL() time.Duration {
	return s.cfg.ExtendedTokenTTL
}

// OAuthConfigured reports whether Google login can be attempted at all.
func (s *Service) OAuthConfigured() bool {
	return s.oauth != nil
}

func logger() *zap.Logger {
	return zap.L().With(
		zap.String("module", "application"),
		zap.String("layer", "application"),
	)
}
