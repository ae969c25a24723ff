package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hernanharco/authcenter-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	assert.True(t, h.Verify("Secret123", hash))
	assert.False(t, h.Verify("secret123", hash))
}

func TestBcryptVerifyMalformedHashIsFalse(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	for _, hash := range []string{"", "not-a-hash", domain.OAuthManagedPasswordHash, "$2a$10$short"} {
		assert.False(t, h.Verify("google-oauth-managed", hash), "hash %q", hash)
	}
}

func TestBcryptLongPasswordsUseFirst72Bytes(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	long := "Aa1" + strings.Repeat("x", 100)
	hash, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, h.Verify(long, hash))
	assert.True(t, h.Verify(long[:72], hash))
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestJWT(t *testing.T, clock *testClock) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret",
		Algorithm:  "HS256",
		DefaultTTL: time.Hour,
		Now:        clock.Now,
	})
	require.NoError(t, err)
	return svc
}

func TestJWTIssueVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestJWT(t, clock)

	token, expiresAt, err := svc.Issue("acct-1", 0)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(time.Hour), expiresAt)

	subject, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", subject)
}

func TestJWTVerifyExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestJWT(t, clock)

	token, _, err := svc.Issue("acct-1", 10*time.Minute)
	require.NoError(t, err)

	clock.now = clock.now.Add(11 * time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.NotErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTVerifyRejectsForeignSignature(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Now()}
	svc := newTestJWT(t, clock)
	other, err := NewJWTService(JWTConfig{Secret: "other-secret", Now: clock.Now})
	require.NoError(t, err)

	token, _, err := other.Issue("acct-1", 0)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTVerifyRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Now()}
	svc := newTestJWT(t, clock)

	claims := jwt.RegisteredClaims{Subject: "acct-1", ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour))}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(none)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(hs512)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = svc.Verify("garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTRequiresExpiry(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Now()}
	svc := newTestJWT(t, clock)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "acct-1"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(noExp)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestNewJWTServiceValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(JWTConfig{Secret: ""})
	assert.Error(t, err)

	_, err = NewJWTService(JWTConfig{Secret: "s", Algorithm: "RS256"})
	assert.Error(t, err)

	svc, err := NewJWTService(JWTConfig{Secret: "s", Algorithm: "hs384"})
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, svc.DefaultTTL())
}
