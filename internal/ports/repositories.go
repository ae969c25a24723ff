package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/domain"
)

// AccountFilter narrows ListAccounts. Search is a case-insensitive substring
// over username, email and full name.
type AccountFilter struct {
	Search string
	Role   *domain.Role
	Offset int
	Limit  int
}

// AccountRepository is the persistence side of the credential store.
// Lookups return domain.ErrNotFound when no row matches; writes that hit a
// unique constraint return domain.ErrConflict.
type AccountRepository interface {
	// Create checks username/email availability and inserts in one transaction.
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Account, error)
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	FindByUsername(ctx context.Context, username string) (domain.Account, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	// Update persists the mutable profile and lifecycle fields of account.
	Update(ctx context.Context, account domain.Account) (domain.Account, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string, at time.Time) error
	RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error
	RecordLoginFailure(ctx context.Context, id uuid.UUID, at time.Time) error
}

// LoginAttemptRepository stores login outcomes for the history endpoint.
type LoginAttemptRepository interface {
	Insert(ctx context.Context, attempt domain.LoginAttempt) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LoginAttempt, error)
}
