// Package admin exposes the school management API: creating schools, minting
// shareable tenant links and forcing cache refreshes after mutations.
// All routes require the admin or sysadmin role.
package admin

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/eduquinha/eduquinha/pkg/identity"
	"github.com/eduquinha/eduquinha/pkg/tenant"
)

// SchoolStore is the storage surface the admin module mutates.
type SchoolStore interface {
	// Create inserts a new school. Returns postgres.ErrSlugTaken when the
	// slug is already in use by an active school.
	Create(ctx context.Context, name, slug, logo string) (*tenant.Tenant, error)

	// SetActive toggles a school's active flag.
	SetActive(ctx context.Context, slug string, active bool) error
}

// Deps carries the admin module's dependencies from the composition root.
type Deps struct {
	Log      *slog.Logger
	Hosts    tenant.Hosts
	Schools  SchoolStore
	Resolver *tenant.Resolver
	Tenants  *tenant.Service
}

// NewRouter builds the admin routes. Mount it under a shell router so the
// identity middleware has already run.
func NewRouter(deps Deps) chi.Router {
	if deps.Log == nil {
		deps.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(identity.RequireRole(identity.RoleAdmin, identity.RoleSysadmin))

	r.Post("/schools", h.createSchool)
	r.Get("/schools/{slug}/link", h.schoolLink)
	r.Post("/schools/{slug}/refresh", h.refreshSchool)
	r.Post("/schools/{slug}/deactivate", h.setActive(false))
	r.Post("/schools/{slug}/activate", h.setActive(true))

	return r
}
