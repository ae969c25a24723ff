package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/domain"
	"go.uber.org/zap"
)

// SeedAdmin makes sure an active admin with the given username exists.
// An existing account is promoted, reactivated, unlocked and given the new
// password. The boolean reports whether a new account was created.
func (s *Service) SeedAdmin(ctx context.Context, req SeedAdminRequest) (AccountView, bool, error) {
	input := CreateAccountRequest{
		Username:        req.Username,
		Email:           req.Email,
		FullName:        req.FullName,
		Password:        req.Password,
		ConfirmPassword: req.Password,
		Role:            domain.RoleAdmin.String(),
		Status:          domain.StatusActive.String(),
	}
	if _, _, err := validateCreate(&input); err != nil {
		return AccountView{}, false, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return AccountView{}, false, fmt.Errorf("hash password: %w", err)
	}
	now := s.nowFn()

	existing, err := s.accounts.FindByUsername(ctx, input.Username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		created, err := s.accounts.Create(ctx, domain.Account{
			ID:           uuid.New(),
			Username:     input.Username,
			Email:        input.Email,
			PasswordHash: hash,
			FullName:     input.FullName,
			Role:         domain.RoleAdmin,
			Status:       domain.StatusActive,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return AccountView{}, false, err
		}
		logger().Info("admin account seeded",
			zap.String("operation", "seed_admin"),
			zap.String("outcome", "created"),
			zap.String("account_id", created.ID.String()),
		)
		return toAccountView(created), true, nil
	case err != nil:
		return AccountView{}, false, fmt.Errorf("find account: %w", err)
	}

	existing.Role = domain.RoleAdmin
	existing.Status = domain.StatusActive
	existing.Active = true
	existing.Locked = false
	existing.FailedLoginAttempts = 0
	existing.UpdatedAt = now
	updated, err := s.accounts.Update(ctx, existing)
	if err != nil {
		return AccountView{}, false, err
	}
	if err := s.accounts.SetPasswordHash(ctx, updated.ID, hash, now); err != nil {
		return AccountView{}, false, err
	}
	logger().Info("admin account seeded",
		zap.String("operation", "seed_admin"),
		zap.String("outcome", "promoted"),
		zap.String("account_id", updated.ID.String()),
	)
	return toAccountView(updated), false, nil
}
