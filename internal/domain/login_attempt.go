package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	LoginMethodPassword = "password"
	LoginMethodGoogle   = "google"

	LoginStatusSuccess = "success"
	LoginStatusFailure = "failure"
)

// LoginAttempt records one authentication outcome for audit.
// AccountID is nil when the identifier matched no account.
type LoginAttempt struct {
	ID            int64
	AccountID     *uuid.UUID
	AttemptedAt   time.Time
	Method        string
	Status        string
	FailureReason string
	IPAddress     string
	UserAgent     string
}
