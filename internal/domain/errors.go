package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated covers every reason a caller could not be identified.
	// Token failures wrap into it so callers never learn which check failed.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrTokenExpired    = errors.New("token expired")
	// ErrInvalidCredentials hides whether the identifier or the password failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	// ErrAccountInactive is the activity-gate flavour of ErrForbidden.
	ErrAccountInactive  = fmt.Errorf("%w: account inactive", ErrForbidden)
	ErrAccountLocked    = errors.New("account temporarily locked")
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrOAuth            = errors.New("oauth authentication failed")
)

// OAuthError is returned for any failure of the third-party code exchange.
// Cause keeps provider detail for logs and non-production responses.
type OAuthError struct {
	Cause error
}

func (e *OAuthError) Error() string {
	if e.Cause == nil {
		return ErrOAuth.Error()
	}
	return ErrOAuth.Error() + ": " + e.Cause.Error()
}

func (e *OAuthError) Unwrap() error { return e.Cause }

func (e *OAuthError) Is(target error) bool { return target == ErrOAuth }
