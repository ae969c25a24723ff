package postgres

import (
	"time"

	"github.com/google/uuid"
)

type accountModel struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Username            string     `gorm:"column:username"`
	Email               string     `gorm:"column:email"`
	PasswordHash        string     `gorm:"column:password_hash"`
	FullName            string     `gorm:"column:full_name"`
	Role                string     `gorm:"column:role"`
	Status              string     `gorm:"column:status"`
	IsActive            bool       `gorm:"column:is_active"`
	IsLocked            bool       `gorm:"column:is_locked"`
	LastLogin           *time.Time `gorm:"column:last_login"`
	FailedLoginAttempts int        `gorm:"column:failed_login_attempts"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "users" }

type loginAttemptModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	UserID        *uuid.UUID `gorm:"column:user_id"`
	AttemptedAt   time.Time  `gorm:"column:attempted_at"`
	Method        string     `gorm:"column:method"`
	Status        string     `gorm:"column:status"`
	FailureReason string     `gorm:"column:failure_reason"`
	IPAddress     *string    `gorm:"column:ip_address"`
	UserAgent     string     `gorm:"column:user_agent"`
}

func (loginAttemptModel) TableName() string { return "login_attempts" }
