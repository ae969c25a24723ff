package ports

import (
	"context"
	"time"
)

// PasswordHasher hashes and checks local passwords.
// Verify never fails loudly: a malformed hash is reported as a mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenService issues and verifies session tokens.
// Verify returns domain.ErrTokenInvalid or domain.ErrTokenExpired.
type TokenService interface {
	Issue(subject string, ttl time.Duration) (token string, expiresAt time.Time, err error)
	Verify(token string) (subject string, err error)
	DefaultTTL() time.Duration
}

// ExternalIdentity is the verified assertion returned by the OAuth provider.
type ExternalIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// OAuthExchanger trades an authorization code for a verified identity.
type OAuthExchanger interface {
	Exchange(ctx context.Context, code string) (ExternalIdentity, error)
}
