package http_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	httpadapter "github.com/hernanharco/authcenter-backend/internal/adapters/http"
	"github.com/hernanharco/authcenter-backend/internal/adapters/security"
	"github.com/hernanharco/authcenter-backend/internal/application"
	"github.com/hernanharco/authcenter-backend/internal/domain"
	"github.com/hernanharco/authcenter-backend/internal/ports"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	apiPrefix    = "/api/v1"
	testPassword = "SecurePass123"
)

type testServer struct {
	router   http.Handler
	accounts *memAccounts
	tokens   *security.JWTService
	oauth    *stubOAuth
	hasher   *security.BcryptHasher
}

type serverOption func(*httpadapter.Config)

func withProduction() serverOption {
	return func(cfg *httpadapter.Config) {
		cfg.Cookie = httpadapter.NewCookiePolicy(true)
	}
}

func withErrorDetail() serverOption {
	return func(cfg *httpadapter.Config) { cfg.ExposeErrorDetail = true }
}

func withReadiness(fn func(context.Context) error) serverOption {
	return func(cfg *httpadapter.Config) { cfg.Readiness = fn }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	tokens, err := security.NewJWTService(security.JWTConfig{
		Secret:     "http-test-secret",
		Algorithm:  "HS256",
		DefaultTTL: time.Hour,
	})
	require.NoError(t, err)

	s := &testServer{
		accounts: &memAccounts{byID: map[uuid.UUID]domain.Account{}},
		tokens:   tokens,
		oauth:    &stubOAuth{},
		hasher:   security.NewBcryptHasher(bcrypt.MinCost),
	}
	svc := application.NewService(application.Dependencies{
		Config:   application.Config{ListLimitMax: 100},
		Accounts: s.accounts,
		Hasher:   s.hasher,
		Tokens:   tokens,
		OAuth:    s.oauth,
	})

	cfg := httpadapter.Config{
		APIPrefix:   apiPrefix,
		CORSOrigins: []string{"http://localhost:3000"},
		Cookie:      httpadapter.NewCookiePolicy(false),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	s.router = httpadapter.NewRouter(httpadapter.NewHandler(svc, cfg))
	return s
}

func (s *testServer) seed(t *testing.T, username string, role domain.Role, mutate ...func(*domain.Account)) domain.Account {
	t.Helper()

	hash, err := s.hasher.Hash(testPassword)
	require.NoError(t, err)
	now := time.Now().UTC()
	acct := domain.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		FullName:     "Test " + username,
		Role:         role,
		Status:       domain.StatusActive,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, fn := range mutate {
		fn(&acct)
	}
	s.accounts.mu.Lock()
	s.accounts.byID[acct.ID] = acct
	s.accounts.mu.Unlock()
	return acct
}

func (s *testServer) tokenFor(t *testing.T, acct domain.Account) string {
	t.Helper()
	token, _, err := s.tokens.Issue(acct.ID.String(), 0)
	require.NoError(t, err)
	return token
}

type memAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Account
}

func (m *memAccounts) get(id uuid.UUID) domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

func (m *memAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *memAccounts) Create(_ context.Context, a domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Username, a.Username) || strings.EqualFold(existing.Email, a.Email) {
			return domain.Account{}, domain.ErrConflict
		}
	}
	m.byID[a.ID] = a
	return a, nil
}

func (m *memAccounts) FindByID(_ context.Context, id uuid.UUID) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (m *memAccounts) find(match func(domain.Account) bool) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if match(a) {
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (domain.Account, error) {
	return m.find(func(a domain.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (m *memAccounts) FindByUsername(_ context.Context, username string) (domain.Account, error) {
	return m.find(func(a domain.Account) bool { return strings.EqualFold(a.Username, username) })
}

func (m *memAccounts) FindByUsernameOrEmail(_ context.Context, identifier string) (domain.Account, error) {
	return m.find(func(a domain.Account) bool {
		return strings.EqualFold(a.Username, identifier) || strings.EqualFold(a.Email, identifier)
	})
}

func (m *memAccounts) List(_ context.Context, filter ports.AccountFilter) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Account, 0, len(m.byID))
	for _, a := range m.byID {
		if filter.Role != nil && a.Role != *filter.Role {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memAccounts) Update(_ context.Context, a domain.Account) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.byID[a.ID]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	a.PasswordHash = current.PasswordHash
	a.LastLogin = current.LastLogin
	m.byID[a.ID] = a
	return a, nil
}

func (m *memAccounts) modify(id uuid.UUID, fn func(*domain.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&a)
	m.byID[id] = a
	return nil
}

func (m *memAccounts) SetPasswordHash(_ context.Context, id uuid.UUID, hash string, _ time.Time) error {
	return m.modify(id, func(a *domain.Account) { a.PasswordHash = hash })
}

func (m *memAccounts) RecordLoginSuccess(_ context.Context, id uuid.UUID, at time.Time) error {
	return m.modify(id, func(a *domain.Account) {
		a.LastLogin = &at
		a.FailedLoginAttempts = 0
	})
}

func (m *memAccounts) RecordLoginFailure(_ context.Context, id uuid.UUID, _ time.Time) error {
	return m.modify(id, func(a *domain.Account) { a.FailedLoginAttempts++ })
}

type stubOAuth struct {
	mu       sync.Mutex
	identity ports.ExternalIdentity
	err      error
}

func (s *stubOAuth) set(identity ports.ExternalIdentity, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity, s.err = identity, err
}

func (s *stubOAuth) Exchange(_ context.Context, code string) (ports.ExternalIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return ports.ExternalIdentity{}, s.err
	}
	if s.identity.Email == "" {
		return ports.ExternalIdentity{}, errors.New("no identity for code " + code)
	}
	return s.identity, nil
}
