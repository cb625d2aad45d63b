package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no active school matches a slug.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrDuplicateSlug is returned when more than one active school
	// carries the same slug.
	ErrDuplicateSlug = errors.New("duplicate active tenant slug")

	// ErrNoTenantInContext is returned when a handler requires a resolved
	// tenant and none is present.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
