package application_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/adapters/security"
	"github.com/hernanharco/authcenter-backend/internal/application"
	"github.com/hernanharco/authcenter-backend/internal/domain"
	"github.com/hernanharco/authcenter-backend/internal/ports"
	"github.com/stretchr/testify/require"
)

const testPassword = "SecurePass123"

type fixture struct {
	service  *application.Service
	accounts *fakeAccounts
	attempts *fakeLoginAttempts
	lockouts *fakeLockouts
	oauth    *fakeOAuth
	tokens   *security.JWTService
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens, err := security.NewJWTService(security.JWTConfig{
		Secret:     "test-secret-key",
		Algorithm:  "HS256",
		DefaultTTL: time.Hour,
		Now:        clock.Now,
	})
	require.NoError(t, err)

	f := &fixture{
		accounts: newFakeAccounts(),
		attempts: &fakeLoginAttempts{},
		lockouts: &fakeLockouts{state: map[string]ports.LockoutState{}},
		oauth:    &fakeOAuth{identities: map[string]ports.ExternalIdentity{}},
		tokens:   tokens,
		clock:    clock,
	}
	f.service = application.NewService(application.Dependencies{
		Config: application.Config{
			ExtendedTokenTTL:     7 * 24 * time.Hour,
			ListLimitMax:         100,
			FailedLoginThreshold: 3,
			LockoutDuration:      15 * time.Minute,
		},
		Accounts:      f.accounts,
		LoginAttempts: f.attempts,
		Lockouts:      f.lockouts,
		Hasher:        fakeHasher{},
		Tokens:        tokens,
		OAuth:         f.oauth,
		Clock:         clock.Now,
	})
	return f
}

// seed stores an account directly, bypassing validation.
func (f *fixture) seed(username string, role domain.Role, mutate ...func(*domain.Account)) domain.Account {
	now := f.clock.Now()
	acct := domain.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash:" + testPassword,
		FullName:     strings.ToUpper(username[:1]) + username[1:] + " Tester",
		Role:         role,
		Status:       domain.StatusActive,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, fn := range mutate {
		fn(&acct)
	}
	f.accounts.put(acct)
	return acct
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Account
	// beforeCreate, when set, runs once at the start of the next Create.
	beforeCreate func()
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: make(map[uuid.UUID]domain.Account)}
}

func (f *fakeAccounts) put(a domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[a.ID] = a
}

func (f *fakeAccounts) get(id uuid.UUID) domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeAccounts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeAccounts) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	f.mu.Lock()
	hook := f.beforeCreate
	f.beforeCreate = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Username, account.Username) || strings.EqualFold(existing.Email, account.Email) {
			return domain.Account{}, domain.ErrConflict
		}
	}
	f.byID[account.ID] = account
	return account, nil
}

func (f *fakeAccounts) FindByID(_ context.Context, id uuid.UUID) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) find(match func(domain.Account) bool) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if match(a) {
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (domain.Account, error) {
	return f.find(func(a domain.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (f *fakeAccounts) FindByUsername(_ context.Context, username string) (domain.Account, error) {
	return f.find(func(a domain.Account) bool { return strings.EqualFold(a.Username, username) })
}

func (f *fakeAccounts) FindByUsernameOrEmail(_ context.Context, identifier string) (domain.Account, error) {
	identifier = strings.TrimSpace(identifier)
	return f.find(func(a domain.Account) bool {
		return strings.EqualFold(a.Username, identifier) || strings.EqualFold(a.Email, identifier)
	})
}

func (f *fakeAccounts) List(_ context.Context, filter ports.AccountFilter) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(filter.Search)
	out := make([]domain.Account, 0, len(f.byID))
	for _, a := range f.byID {
		if filter.Role != nil && a.Role != *filter.Role {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Username), needle) &&
			!strings.Contains(strings.ToLower(a.Email), needle) &&
			!strings.Contains(strings.ToLower(a.FullName), needle) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if filter.Offset >= len(out) {
		return []domain.Account{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeAccounts) Update(_ context.Context, account domain.Account) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.byID[account.ID]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	for id, existing := range f.byID {
		if id != account.ID && strings.EqualFold(existing.Email, account.Email) {
			return domain.Account{}, domain.ErrConflict
		}
	}
	current.Email = account.Email
	current.FullName = account.FullName
	current.Role = account.Role
	current.Status = account.Status
	current.Active = account.Active
	current.Locked = account.Locked
	current.FailedLoginAttempts = account.FailedLoginAttempts
	current.UpdatedAt = account.UpdatedAt
	f.byID[account.ID] = current
	return current, nil
}

func (f *fakeAccounts) modify(id uuid.UUID, fn func(*domain.Account)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&a)
	f.byID[id] = a
	return nil
}

func (f *fakeAccounts) SetPasswordHash(_ context.Context, id uuid.UUID, hash string, at time.Time) error {
	return f.modify(id, func(a *domain.Account) {
		a.PasswordHash = hash
		a.UpdatedAt = at
	})
}

func (f *fakeAccounts) RecordLoginSuccess(_ context.Context, id uuid.UUID, at time.Time) error {
	return f.modify(id, func(a *domain.Account) {
		a.LastLogin = &at
		a.FailedLoginAttempts = 0
	})
}

func (f *fakeAccounts) RecordLoginFailure(_ context.Context, id uuid.UUID, _ time.Time) error {
	return f.modify(id, func(a *domain.Account) { a.FailedLoginAttempts++ })
}

type fakeLoginAttempts struct {
	mu      sync.Mutex
	records []domain.LoginAttempt
	fail    bool
}

func (f *fakeLoginAttempts) Insert(_ context.Context, attempt domain.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("audit table unavailable")
	}
	f.records = append(f.records, attempt)
	return nil
}

func (f *fakeLoginAttempts) ListByAccount(_ context.Context, accountID uuid.UUID, limit int) ([]domain.LoginAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LoginAttempt
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		r := f.records[i]
		if r.AccountID != nil && *r.AccountID == accountID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLoginAttempts) all() []domain.LoginAttempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.LoginAttempt(nil), f.records...)
}

type fakeLockouts struct {
	mu    sync.Mutex
	state map[string]ports.LockoutState
}

func (f *fakeLockouts) Get(_ context.Context, key string) (ports.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state[key], nil
}

func (f *fakeLockouts) RecordFailure(_ context.Context, key string, now time.Time, threshold int, window time.Duration) (ports.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state[key]
	st.FailedCount++
	if st.FailedCount >= threshold {
		until := now.Add(window)
		st.LockedUntil = &until
	}
	f.state[key] = st
	return st, nil
}

func (f *fakeLockouts) Clear(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state, key)
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (fakeHasher) Verify(password, hash string) bool { return hash == "hash:"+password }

type fakeOAuth struct {
	mu         sync.Mutex
	identities map[string]ports.ExternalIdentity
	err        error
	calls      int
}

func (f *fakeOAuth) Exchange(_ context.Context, code string) (ports.ExternalIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return ports.ExternalIdentity{}, f.err
	}
	identity, ok := f.identities[code]
	if !ok {
		return ports.ExternalIdentity{}, errors.New("invalid_grant")
	}
	return identity, nil
}
