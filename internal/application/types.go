package application

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hernanharco/authcenter-backend/internal/domain"
)

type Config struct {
	// ExtendedTokenTTL applies when a login asks to be remembered.
	ExtendedTokenTTL     time.Duration
	ListLimitMax         int
	LoginHistoryMax      int
	FailedLoginThreshold int
	LockoutDuration      time.Duration
}

type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	// Username is the older name of the identifier field.
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

func (r LoginRequest) identifier() string {
	if id := strings.TrimSpace(r.UsernameOrEmail); id != "" {
		return id
	}
	return strings.TrimSpace(r.Username)
}

type GoogleLoginRequest struct {
	Code string `json:"code"`
	// Token carries the code for clients built against the older field name.
	Token string `json:"token"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

func (r GoogleLoginRequest) code() string {
	if code := strings.TrimSpace(r.Code); code != "" {
		return code
	}
	return strings.TrimSpace(r.Token)
}

type SessionResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        AccountView `json:"user"`

	ExpiresAt time.Time `json:"-"`
}

// AccountView is the public projection of an account. It never carries the
// password hash.
type AccountView struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	IsActive  bool       `json:"is_active"`
	IsLocked  bool       `json:"is_locked"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toAccountView(a domain.Account) AccountView {
	return AccountView{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      a.Role.String(),
		Status:    a.Status.String(),
		IsActive:  a.Active,
		IsLocked:  a.Locked,
		LastLogin: a.LastLogin,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type CreateAccountRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
	Status          string `json:"status"`
}

type ListAccountsRequest struct {
	Skip   int
	Limit  int
	Search string
	Role   string
}

// UpdateAccountRequest is a partial update; nil fields are left untouched.
type UpdateAccountRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
	IsActive *bool   `json:"is_active"`
	IsLocked *bool   `json:"is_locked"`
}

// withoutProtectedFields drops the fields only an admin may write.
func (r UpdateAccountRequest) withoutProtectedFields() UpdateAccountRequest {
	r.Role = nil
	r.Status = nil
	r.IsActive = nil
	r.IsLocked = nil
	return r
}

type SetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type SeedAdminRequest struct {
	Username string
	Email    string
	FullName string
	Password string
}

type LoginAttemptView struct {
	AttemptedAt   time.Time `json:"attempted_at"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	IPAddress     string    `json:"ip_address,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
}

func toLoginAttemptView(a domain.LoginAttempt) LoginAttemptView {
	return LoginAttemptView{
		AttemptedAt:   a.AttemptedAt,
		Method:        a.Method,
		Status:        a.Status,
		FailureReason: a.FailureReason,
		IPAddress:     a.IPAddress,
		UserAgent:     a.UserAgent,
	}
}
