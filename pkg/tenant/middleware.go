package tenant

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrorHandler handles errors raised by RequireTenant.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	skipPaths []string
	observer  func(ctx context.Context, identifier string)
}

// Option configures the resolution middleware.
type Option func(*middlewareConfig)

// WithSkipPaths sets path prefixes that bypass tenant resolution entirely,
// such as health and metrics endpoints.
func WithSkipPaths(paths ...string) Option {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithObserver registers a hook invoked with every derived identifier before
// resolution. Wiring Service.Observe here keeps the application-wide tenant
// state in step with navigation.
func WithObserver(observer func(ctx context.Context, identifier string)) Option {
	return func(c *middlewareConfig) {
		c.observer = observer
	}
}

// Middleware derives the tenant identifier from each request, resolves it and
// injects the Resolution into the request context. Resolution failures are
// carried as state for the UI surfaces to render, never as aborted requests;
// use RequireTenant on routes that cannot proceed without a tenant.
func Middleware(hosts Hosts, resolver *Resolver, opts ...Option) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			identifier := hosts.FromRequest(r)
			if cfg.observer != nil {
				cfg.observer(r.Context(), identifier)
			}

			res := resolver.Resolve(r.Context(), identifier)
			ctx := WithResolution(r.Context(), res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant ensures a resolved tenant is present in the context before
// the next handler runs. Not-found and error resolutions are translated by
// the error handler; the default answers 404 and 503.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := ResolutionFromContext(r.Context())
			switch {
			case res.Status == StatusResolved && res.Tenant != nil:
				next.ServeHTTP(w, r)
			case res.Status == StatusError:
				errorHandler(w, r, errors.New(string(res.Reason)))
			default:
				errorHandler(w, r, ErrNoTenantInContext)
			}
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNoTenantInContext) {
		http.Error(w, "School not found", http.StatusNotFound)
		return
	}
	http.Error(w, "School temporarily unavailable", http.StatusServiceUnavailable)
}
