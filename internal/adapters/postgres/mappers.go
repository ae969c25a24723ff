package postgres

import (
	"errors"
	"strings"

	"github.com/hernanharco/authcenter-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

func toDomainAccount(row accountModel) domain.Account {
	return domain.Account{
		ID:                  row.ID,
		Username:            row.Username,
		Email:               row.Email,
		PasswordHash:        row.PasswordHash,
		FullName:            row.FullName,
		Role:                domain.Role(row.Role),
		Status:              domain.Status(row.Status),
		Active:              row.IsActive,
		Locked:              row.IsLocked,
		LastLogin:           row.LastLogin,
		FailedLoginAttempts: row.FailedLoginAttempts,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func fromDomainAccount(a domain.Account) accountModel {
	return accountModel{
		ID:                  a.ID,
		Username:            a.Username,
		Email:               a.Email,
		PasswordHash:        a.PasswordHash,
		FullName:            a.FullName,
		Role:                a.Role.String(),
		Status:              a.Status.String(),
		IsActive:            a.Active,
		IsLocked:            a.Locked,
		LastLogin:           a.LastLogin,
		FailedLoginAttempts: a.FailedLoginAttempts,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func toDomainLoginAttempt(row loginAttemptModel) domain.LoginAttempt {
	ip := ""
	if row.IPAddress != nil {
		ip = *row.IPAddress
	}
	return domain.LoginAttempt{
		ID:            row.ID,
		AccountID:     row.UserID,
		AttemptedAt:   row.AttemptedAt,
		Method:        row.Method,
		Status:        row.Status,
		FailureReason: row.FailureReason,
		IPAddress:     ip,
		UserAgent:     row.UserAgent,
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// isUniqueViolation accepts both the translated gorm error and a raw pgconn
// error, since TranslateError is off for pools opened outside Connect.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// escapeLike escapes LIKE wildcards so search input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
