package domain

import "time"

// User is an identity record in the user registry.
type User struct {
	ID                  string
	Name                string
	Email               string
	PasswordHash        string
	Role                Role
	Tier                Tier
	Suspended           bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	CreatedAt           time.Time
}

// IsLocked reports whether a login lockout is in effect at now.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// AuthError is a closed set of authentication failure kinds.
type AuthError string

const (
	AuthErrNotFound      AuthError = "not_found"
	AuthErrWrongPassword AuthError = "wrong_password"
	AuthErrAccountLocked AuthError = "account_locked"
	AuthErrSuspended     AuthError = "suspended"
	AuthErrEmailTaken    AuthError = "email_taken"
	AuthErrInvalidInput  AuthError = "invalid_input"
)

// AuthResult is the outcome of Register or Login. Exactly one of Error or
// Token is set. AttemptsLeft is reported on wrong_password.
type AuthResult struct {
	Success      bool
	Error        AuthError
	User         *User
	Token        string
	AttemptsLeft int
}

// AuthFailure returns an unsuccessful AuthResult.
func AuthFailure(kind AuthError) AuthResult {
	return AuthResult{Error: kind}
}
