package identity

import (
	"context"

	"github.com/google/uuid"
)

// EventKind classifies auth-state changes.
type EventKind string

const (
	// EventSignedIn fires after a successful sign-in or sign-up.
	EventSignedIn EventKind = "signed_in"
	// EventSignedOut fires after a sign-out, including best-effort ones.
	EventSignedOut EventKind = "signed_out"
	// EventRefreshed fires when the provider re-validates an existing
	// session, for example after a token rotation.
	EventRefreshed EventKind = "refreshed"
)

// Event is an auth-state change notification.
type Event struct {
	Kind EventKind
	User *User
}

// Provider is the identity backend: account credentials, session tokens and
// auth-state change notifications.
type Provider interface {
	// Session returns the user owning a session token.
	// Returns ErrSessionNotFound for unknown or expired tokens.
	Session(ctx context.Context, token string) (*User, error)

	// SignIn authenticates by email and password and opens a session.
	// Returns ErrInvalidCredentials without distinguishing unknown email
	// from wrong password.
	SignIn(ctx context.Context, email, password string) (*User, string, error)

	// SignUp registers a new account and opens a session.
	// Returns ErrEmailTaken for duplicate emails.
	SignUp(ctx context.Context, email, password string) (*User, string, error)

	// SignOut revokes a session token.
	SignOut(ctx context.Context, token string) error

	// Subscribe registers fn for auth-state changes and returns an
	// unsubscribe function. Handlers fire on a single dispatch goroutine.
	Subscribe(fn func(Event)) func()
}

// ProfileStore loads profile rows and school summaries.
type ProfileStore interface {
	// GetWithTenant returns the profile joined with its school summary.
	// Returns ErrProfileNotFound when the profile row is absent.
	GetWithTenant(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// Get returns the bare profile row without the school join. Used as
	// the first half of the fallback when the joined fetch fails.
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// TenantSummary returns the school summary by school ID. Used as the
	// second half of the fallback merge.
	TenantSummary(ctx context.Context, tenantID uuid.UUID) (*TenantSummary, error)
}
