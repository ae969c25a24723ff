package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/domain"
	"github.com/hernanharco/authcenter-backend/internal/ports"
	"go.uber.org/zap"
)

func (s *Service) CreateAccount(ctx context.Context, actor domain.Account, req CreateAccountRequest) (AccountView, error) {
	if err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return AccountView{}, err
	}
	role, status, err := validateCreate(&req)
	if err != nil {
		return AccountView{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return AccountView{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	created, err := s.accounts.Create(ctx, domain.Account{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
		Status:       status,
		Active:       status == domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return AccountView{}, err
	}

	logger().Info("account created",
		zap.String("operation", "create_account"),
		zap.String("outcome", "success"),
		zap.String("account_id", created.ID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return toAccountView(created), nil
}

func (s *Service) ListAccounts(ctx context.Context, actor domain.Account, req ListAccountsRequest) ([]AccountView, error) {
	if err := RequireRole(actor, domain.RoleAdmin, domain.RoleManager); err != nil {
		return nil, err
	}
	if req.Skip < 0 {
		return nil, fmt.Errorf("%w: skip must not be negative", domain.ErrInvalidInput)
	}

	filter := ports.AccountFilter{
		Search: strings.TrimSpace(req.Search),
		Offset: req.Skip,
		Limit:  clampLimit(req.Limit, s.cfg.ListLimitMax),
	}
	if strings.TrimSpace(req.Role) != "" {
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = &role
	}

	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	views := make([]AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, toAccountView(account))
	}
	return views, nil
}

// GetAccount allows self access and admin access. The permission check runs
// before the lookup so a denied caller cannot probe for ids.
func (s *Service) GetAccount(ctx context.Context, actor domain.Account, id uuid.UUID) (AccountView, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return AccountView{}, domain.ErrForbidden
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return AccountView{}, err
	}
	return toAccountView(account), nil
}

// UpdateAccount applies a partial update. For a caller who is not an admin
// the role, status, active and locked fields are dropped without error.
func (s *Service) UpdateAccount(ctx context.Context, actor domain.Account, id uuid.UUID, patch UpdateAccountRequest) (AccountView, error) {
	target, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return AccountView{}, err
	}
	if actor.ID != id && !actor.IsAdmin() {
		return AccountView{}, domain.ErrForbidden
	}
	if !actor.IsAdmin() {
		patch = patch.withoutProtectedFields()
	}
	if err := validateUpdate(&patch); err != nil {
		return AccountView{}, err
	}

	if patch.Email != nil {
		target.Email = *patch.Email
	}
	if patch.FullName != nil {
		target.FullName = *patch.FullName
	}
	if patch.Role != nil {
		target.Role, _ = domain.ParseRole(*patch.Role)
	}
	if patch.Status != nil {
		target.Status, _ = domain.ParseStatus(*patch.Status)
	}
	if patch.IsActive != nil {
		target.Active = *patch.IsActive
	}
	if patch.IsLocked != nil {
		if target.Locked && !*patch.IsLocked {
			target.FailedLoginAttempts = 0
		}
		target.Locked = *patch.IsLocked
	}
	target.UpdatedAt = s.nowFn()

	updated, err := s.accounts.Update(ctx, target)
	if err != nil {
		return AccountView{}, err
	}
	logger().Info("account updated",
		zap.String("operation", "update_account"),
		zap.String("outcome", "success"),
		zap.String("account_id", updated.ID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return toAccountView(updated), nil
}

// DeactivateAccount is the logical delete. Deactivating an inactive account
// succeeds and leaves it unchanged.
func (s *Service) DeactivateAccount(ctx context.Context, actor domain.Account, id uuid.UUID) error {
	if err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if actor.ID == id {
		return fmt.Errorf("%w: cannot deactivate your own account", domain.ErrInvalidOperation)
	}
	target, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return err
	}

	target.Deactivate(s.nowFn())
	if _, err := s.accounts.Update(ctx, target); err != nil {
		return err
	}
	logger().Info("account deactivated",
		zap.String("operation", "deactivate_account"),
		zap.String("outcome", "success"),
		zap.String("account_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

// SetPassword replaces the local password of an account. It is also how an
// account provisioned through Google gains a usable local password.
func (s *Service) SetPassword(ctx context.Context, actor domain.Account, id uuid.UUID, req SetPasswordRequest) error {
	if err := RequireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := validatePassword(req); err != nil {
		return err
	}
	if _, err := s.accounts.FindByID(ctx, id); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.SetPasswordHash(ctx, id, hash, s.nowFn()); err != nil {
		return err
	}
	logger().Info("account password replaced",
		zap.String("operation", "set_password"),
		zap.String("outcome", "success"),
		zap.String("account_id", id.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

func (s *Service) LoginHistory(ctx context.Context, actor domain.Account, id uuid.UUID, limit int) ([]LoginAttemptView, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if s.loginAttempts == nil {
		return []LoginAttemptView{}, nil
	}
	attempts, err := s.loginAttempts.ListByAccount(ctx, id, clampLimit(limit, s.cfg.LoginHistoryMax))
	if err != nil {
		return nil, fmt.Errorf("list login attempts: %w", err)
	}
	views := make([]LoginAttemptView, 0, len(attempts))
	for _, attempt := range attempts {
		views = append(views, toLoginAttemptView(attempt))
	}
	return views, nil
}
