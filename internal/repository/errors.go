// Package repository defines error values that are reused across the
// repositories and the services built on top of them. These sentinel
// values let higher layers such as handlers distinguish between failure
// scenarios without string matching: validation problems are rejected
// before any I/O, authentication problems map to 401, an active lockout
// maps to 423, and anything infrastructural maps to 500.
package repository

import "errors"

// ErrValidation is returned when an operation receives malformed or
// missing input. It is always raised before any store or database I/O.
// Handlers should translate this into an HTTP 400 response.
var ErrValidation = errors.New("validation failed")

// ErrInvalidCredentials is the deliberately generic bad-username-or-
// password error. Handlers should translate this into HTTP 401 and must
// not leak whether the username exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAccountDisabled is returned when the account exists but its status
// is not ACTIVE, or the account itself has expired. Handlers should
// translate this into HTTP 401.
var ErrAccountDisabled = errors.New("account disabled or expired")

// ErrInvalidToken is returned when a presented token fails signature,
// expiry or revocation checks. Handlers should translate this into 401.
var ErrInvalidToken = errors.New("invalid or expired token")

// AccountLockedError reports that a user's account is temporarily locked.
// The Escalated flag distinguishes the exact attempt that triggered the
// lock from attempts made while a lock is already in force; the two carry
// different messages and that difference is part of the service contract:
// failed logins stay generic except at the moment of escalation.
type AccountLockedError struct {
	UserID    uint64
	Escalated bool
}

func (e *AccountLockedError) Error() string {
	if e.Escalated {
		return "too many failed attempts, account is now locked"
	}
	return "account is temporarily locked"
}

// IsAccountLocked reports whether err is an AccountLockedError and, if
// so, returns it.
func IsAccountLocked(err error) (*AccountLockedError, bool) {
	var le *AccountLockedError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
