// Package shell is the HTTP surface of the application: the role-routed home
// dispatch, the tenant and auth APIs and the health endpoint, wired behind
// the environment, identity and tenant middleware chain.
package shell

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/eduquinha/eduquinha/pkg/environment"
	"github.com/eduquinha/eduquinha/pkg/httpserver"
	"github.com/eduquinha/eduquinha/pkg/identity"
	"github.com/eduquinha/eduquinha/pkg/requestid"
	"github.com/eduquinha/eduquinha/pkg/tenant"
)

// Deps carries everything the shell router needs from the composition root.
type Deps struct {
	Log      *slog.Logger
	Env      environment.Environment
	Hosts    tenant.Hosts
	Resolver *tenant.Resolver
	Tenants  *tenant.Service
	Identity *identity.Service

	// Health lists readiness checks exposed on /healthz.
	Health []func(context.Context) error
}

// NewRouter builds the shell routes with the full middleware chain. The
// tenant middleware runs after identity so the consistency guard can see the
// signed-in profile; health stays outside tenant resolution.
func NewRouter(deps Deps) chi.Router {
	if deps.Log == nil {
		deps.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(RequestLogger(deps.Log))
	r.Use(Recoverer(deps.Log))
	r.Use(environment.Middleware(deps.Env))
	r.Use(identity.Middleware(deps.Identity))
	r.Use(tenant.Middleware(deps.Hosts, deps.Resolver,
		tenant.WithSkipPaths("/healthz"),
		tenant.WithObserver(deps.Tenants.Observe),
	))
	r.Use(tenant.ConsistencyGuard(deps.Hosts))

	r.Get("/", h.home)

	r.Route("/api/tenant", func(r chi.Router) {
		r.Get("/current", h.currentTenant)
		r.Post("/refresh", h.refreshTenant)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin", h.signIn)
		r.Post("/signup", h.signUp)
		r.Post("/signout", h.signOut)
	})

	r.Get("/healthz", httpserver.HealthCheckHandler(deps.Log, deps.Health...))

	return r
}
