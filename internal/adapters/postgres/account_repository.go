package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/domain"
	"github.com/hernanharco/authcenter-backend/internal/ports"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// Create runs the availability check and the insert in one transaction. The
// lower(username)/lower(email) unique indexes settle races between the two.
func (r *accountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	rec := fromDomainAccount(account)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&accountModel{}).
			Where("(LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?))", rec.Username, rec.Email).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return domain.ErrConflict
		}
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.findOne(ctx, "LOWER(email) = LOWER(?)", strings.TrimSpace(email))
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.findOne(ctx, "LOWER(username) = LOWER(?)", strings.TrimSpace(username))
}

// FindByUsernameOrEmail matches either column. Usernames cannot contain '@',
// so at most one row qualifies.
func (r *accountRepository) FindByUsernameOrEmail(ctx context.Context, identifier string) (domain.Account, error) {
	identifier = strings.TrimSpace(identifier)
	return r.findOne(ctx, "(LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?))", identifier, identifier)
}

func (r *accountRepository) findOne(ctx context.Context, query string, args ...any) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where(query, args...).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) List(ctx context.Context, filter ports.AccountFilter) ([]domain.Account, error) {
	query := r.db.WithContext(ctx).Model(&accountModel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where("(username ILIKE ? OR email ILIKE ? OR full_name ILIKE ?)", pattern, pattern, pattern)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", filter.Role.String())
	}

	var rows []accountModel
	if err := query.Order("created_at ASC").Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainAccount(row))
	}
	return result, nil
}

func (r *accountRepository) Update(ctx context.Context, account domain.Account) (domain.Account, error) {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("id = ?", account.ID).
		Updates(map[string]any{
			"email":                 account.Email,
			"full_name":             account.FullName,
			"role":                  account.Role.String(),
			"status":                account.Status.String(),
			"is_active":             account.Active,
			"is_locked":             account.Locked,
			"failed_login_attempts": account.FailedLoginAttempts,
			"updated_at":            account.UpdatedAt,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.Account{}, domain.ErrConflict
		}
		return domain.Account{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Account{}, domain.ErrNotFound
	}
	return r.FindByID(ctx, account.ID)
}

func (r *accountRepository) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"password_hash": hash,
		"updated_at":    at,
	})
}

func (r *accountRepository) RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"last_login":            at,
		"failed_login_attempts": 0,
		"updated_at":            at,
	})
}

func (r *accountRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]any{
		"failed_login_attempts": gorm.Expr("failed_login_attempts + 1"),
		"updated_at":            at,
	})
}

func (r *accountRepository) updateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("id = ?", id).
		Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
