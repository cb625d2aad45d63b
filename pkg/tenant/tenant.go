package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant represents a school in the system with the fields needed for
// request-scoped operations and UI display. Records are read-only from this
// package's perspective; administrative flows own mutation.
type Tenant struct {
	ID        uuid.UUID      `json:"id"`
	Slug      string         `json:"slug"`
	Name      string         `json:"name"`
	Logo      string         `json:"logo_url,omitempty"`
	Active    bool           `json:"active"`
	Settings  map[string]any `json:"settings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Provider loads school records from the data store.
type Provider interface {
	// GetBySlug returns the active school whose slug matches exactly.
	// Returns ErrTenantNotFound for zero matches, including slugs that
	// exist but belong to inactive schools. Returns ErrDuplicateSlug when
	// more than one active school carries the slug, which is a
	// data-integrity condition rather than a lookup miss.
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
}
