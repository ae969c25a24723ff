package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OAuthManagedPasswordHash marks accounts provisioned through Google.
// It is not a bcrypt hash, so no plaintext ever verifies against it.
const OAuthManagedPasswordHash = "google-oauth-managed"

// Role is the closed set of authorization roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
	RoleViewer  Role = "viewer"
)

// ParseRole accepts the wire value in any letter case.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
	return role, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser, RoleViewer:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// Status is the closed set of account lifecycle states.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
	return status, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// Account is the persisted user identity.
// Status and Active are independent: Active is the fast gate checked on every
// request, Status is the lifecycle state checked at login.
type Account struct {
	ID                  uuid.UUID
	Username            string
	Email               string
	PasswordHash        string
	FullName            string
	Role                Role
	Status              Status
	Active              bool
	Locked              bool
	LastLogin           *time.Time
	FailedLoginAttempts int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CanLogin reports whether a credential or OAuth login may succeed.
func (a Account) CanLogin() bool {
	return a.Active && a.Status == StatusActive && !a.Locked
}

func (a Account) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}

func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// OAuthManaged reports whether the account has no usable local password.
func (a Account) OAuthManaged() bool { return a.PasswordHash == OAuthManagedPasswordHash }

// Deactivate applies the logical delete. Applying it twice is a no-op.
func (a *Account) Deactivate(at time.Time) {
	a.Active = false
	a.Status = StatusInactive
	a.UpdatedAt = at
}
