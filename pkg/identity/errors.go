package identity

import "errors"

var (
	// ErrProfileNotFound means the user has no profile row yet. This is an
	// expected state for freshly created accounts.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrTenantSummaryNotFound means the profile's school row is missing.
	ErrTenantSummaryNotFound = errors.New("tenant summary not found")

	// ErrInvalidCredentials covers unknown emails and wrong passwords
	// without distinguishing them.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned by SignUp for an already registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrSessionNotFound covers unknown, expired and revoked sessions.
	ErrSessionNotFound = errors.New("session not found")
)
