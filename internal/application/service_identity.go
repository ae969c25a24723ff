package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/domain"
)

// ResolveIdentity turns a session token into the account it asserts.
// Any token or lookup failure is ErrUnauthenticated; an inactive account is
// ErrAccountInactive.
func (s *Service) ResolveIdentity(ctx context.Context, token string) (domain.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Account{}, domain.ErrUnauthenticated
	}

	subject, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Account{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	accountID, err := uuid.Parse(subject)
	if err != nil {
		return domain.Account{}, fmt.Errorf("%w: malformed subject", domain.ErrUnauthenticated)
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Account{}, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthenticated)
		}
		return domain.Account{}, fmt.Errorf("load account: %w", err)
	}
	if !account.Active {
		return domain.Account{}, domain.ErrAccountInactive
	}
	return account, nil
}

// RequireRole denies every role not listed.
func RequireRole(account domain.Account, roles ...domain.Role) error {
	if account.HasRole(roles...) {
		return nil
	}
	return domain.ErrForbidden
}
