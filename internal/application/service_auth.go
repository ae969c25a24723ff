package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/domain"
	"go.uber.org/zap"
)

const (
	maxUsernameAttempts = 5
	usernameMinLen      = 3
	usernameMaxLen      = 50
)

// Login authenticates a local username-or-email and password pair.
// A wrong password and an unknown identifier fail the same way.
func (s *Service) Login(ctx context.Context, req LoginRequest) (SessionResponse, error) {
	identifier := req.identifier()
	if identifier == "" || req.Password == "" {
		return SessionResponse{}, fmt.Errorf("%w: username_or_email and password are required", domain.ErrInvalidInput)
	}

	lockKey := "login:" + strings.ToLower(identifier)
	if err := s.checkLockout(ctx, lockKey); err != nil {
		s.recordAttempt(ctx, nil, domain.LoginMethodPassword, domain.LoginStatusFailure, "locked_out", req.IPAddress, req.UserAgent)
		return SessionResponse{}, err
	}

	account, err := s.accounts.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return SessionResponse{}, fmt.Errorf("find account: %w", err)
		}
		s.recordAttempt(ctx, nil, domain.LoginMethodPassword, domain.LoginStatusFailure, "unknown_account", req.IPAddress, req.UserAgent)
		s.registerLockoutFailure(ctx, lockKey)
		return SessionResponse{}, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(req.Password, account.PasswordHash) {
		if err := s.accounts.RecordLoginFailure(ctx, account.ID, s.nowFn()); err != nil {
			logger().Warn("failed to record login failure",
				zap.String("operation", "login"),
				zap.String("outcome", "warning"),
				zap.String("account_id", account.ID.String()),
				zap.Error(err),
			)
		}
		s.recordAttempt(ctx, &account.ID, domain.LoginMethodPassword, domain.LoginStatusFailure, "invalid_password", req.IPAddress, req.UserAgent)
		s.registerLockoutFailure(ctx, lockKey)
		return SessionResponse{}, domain.ErrInvalidCredentials
	}

	if !account.CanLogin() {
		s.recordAttempt(ctx, &account.ID, domain.LoginMethodPassword, domain.LoginStatusFailure, "account_inactive", req.IPAddress, req.UserAgent)
		return SessionResponse{}, domain.ErrAccountInactive
	}

	s.clearLockout(ctx, lockKey)

	ttl := s.tokens.DefaultTTL()
	if req.RememberMe {
		ttl = s.cfg.ExtendedTokenTTL
	}
	return s.completeLogin(ctx, account, domain.LoginMethodPassword, ttl, req.IPAddress, req.UserAgent)
}

// LoginWithGoogle exchanges an authorization code for a verified Google
// identity and signs in the matching account, provisioning it on first use.
// Every exchange failure is reported as a *domain.OAuthError.
func (s *Service) LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (SessionResponse, error) {
	code := req.code()
	if code == "" {
		return SessionResponse{}, &domain.OAuthError{Cause: errors.New("authorization code is required")}
	}
	if s.oauth == nil {
		return SessionResponse{}, &domain.OAuthError{Cause: errors.New("google login is not configured")}
	}

	identity, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.recordAttempt(ctx, nil, domain.LoginMethodGoogle, domain.LoginStatusFailure, "exchange_failed", req.IPAddress, req.UserAgent)
		var oauthErr *domain.OAuthError
		if errors.As(err, &oauthErr) {
			return SessionResponse{}, oauthErr
		}
		return SessionResponse{}, &domain.OAuthError{Cause: err}
	}

	email := normalizeEmail(identity.Email)
	if email == "" {
		return SessionResponse{}, &domain.OAuthError{Cause: errors.New("identity has no email")}
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		account, err = s.provisionGoogleAccount(ctx, email, identity.Name)
		if err != nil {
			return SessionResponse{}, err
		}
	case err != nil:
		return SessionResponse{}, fmt.Errorf("find account by email: %w", err)
	}

	if !account.CanLogin() {
		s.recordAttempt(ctx, &account.ID, domain.LoginMethodGoogle, domain.LoginStatusFailure, "account_inactive", req.IPAddress, req.UserAgent)
		return SessionResponse{}, domain.ErrAccountInactive
	}

	return s.completeLogin(ctx, account, domain.LoginMethodGoogle, s.tokens.DefaultTTL(), req.IPAddress, req.UserAgent)
}

func (s *Service) completeLogin(ctx context.Context, account domain.Account, method string, ttl time.Duration, ip, userAgent string) (SessionResponse, error) {
	now := s.nowFn()
	if err := s.accounts.RecordLoginSuccess(ctx, account.ID, now); err != nil {
		return SessionResponse{}, fmt.Errorf("record login: %w", err)
	}
	account.LastLogin = &now
	account.FailedLoginAttempts = 0

	token, expiresAt, err := s.tokens.Issue(account.ID.String(), ttl)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("issue token: %w", err)
	}

	s.recordAttempt(ctx, &account.ID, method, domain.LoginStatusSuccess, "", ip, userAgent)
	logger().Info("login succeeded",
		zap.String("operation", "login"),
		zap.String("outcome", "success"),
		zap.String("method", method),
		zap.String("account_id", account.ID.String()),
	)

	return SessionResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(ttl / time.Second),
		User:        toAccountView(account),
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) provisionGoogleAccount(ctx context.Context, email, name string) (domain.Account, error) {
	base := usernameFromEmail(email)
	fullName := truncateRunes(normalizeFullName(name), 100)

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		username := base
		if attempt > 0 {
			username = truncateRunes(base, usernameMaxLen-5) + "_" + randomHex(2)
		}
		displayName := fullName
		if len([]rune(displayName)) < 2 {
			displayName = username
		}
		now := s.nowFn()
		created, err := s.accounts.Create(ctx, domain.Account{
			ID:           uuid.New(),
			Username:     username,
			Email:        email,
			PasswordHash: domain.OAuthManagedPasswordHash,
			FullName:     displayName,
			Role:         domain.RoleUser,
			Status:       domain.StatusActive,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err == nil {
			logger().Info("account provisioned from google identity",
				zap.String("operation", "provision_google_account"),
				zap.String("outcome", "success"),
				zap.String("account_id", created.ID.String()),
			)
			return created, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return domain.Account{}, fmt.Errorf("provision account: %w", err)
		}
		// A concurrent first login may have created the account already.
		if existing, findErr := s.accounts.FindByEmail(ctx, email); findErr == nil {
			return existing, nil
		}
	}
	return domain.Account{}, fmt.Errorf("%w: no free username for google account", domain.ErrConflict)
}

// usernameFromEmail derives a valid username from the local part of email.
func usernameFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	username := b.String()
	for len(username) < usernameMinLen {
		username += "_"
	}
	return truncateRunes(username, usernameMaxLen)
}

func (s *Service) checkLockout(ctx context.Context, key string) error {
	if s.lockouts == nil {
		return nil
	}
	state, err := s.lockouts.Get(ctx, key)
	if err != nil {
		logger().Warn("lockout state unavailable",
			zap.String("operation", "check_lockout"),
			zap.String("outcome", "warning"),
			zap.Error(err),
		)
		return nil
	}
	if state.LockedUntil != nil && state.LockedUntil.After(s.nowFn()) {
		return domain.ErrAccountLocked
	}
	return nil
}

func (s *Service) registerLockoutFailure(ctx context.Context, key string) {
	if s.lockouts == nil {
		return
	}
	state, err := s.lockouts.RecordFailure(ctx, key, s.nowFn(), s.cfg.FailedLoginThreshold, s.cfg.LockoutDuration)
	if err != nil {
		logger().Warn("failed to record lockout failure",
			zap.String("operation", "record_lockout_failure"),
			zap.String("outcome", "warning"),
			zap.Error(err),
		)
		return
	}
	if state.LockedUntil != nil {
		logger().Warn("login key locked out",
			zap.String("operation", "record_lockout_failure"),
			zap.String("outcome", "locked"),
			zap.Int("failed_count", state.FailedCount),
			zap.Time("locked_until", *state.LockedUntil),
		)
	}
}

func (s *Service) clearLockout(ctx context.Context, key string) {
	if s.lockouts == nil {
		return
	}
	if err := s.lockouts.Clear(ctx, key); err != nil {
		logger().Warn("failed to clear lockout state",
			zap.String("operation", "clear_lockout"),
			zap.String("outcome", "warning"),
			zap.Error(err),
		)
	}
}
