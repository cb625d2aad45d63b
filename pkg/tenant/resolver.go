package tenant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/eduquinha/eduquinha/pkg/logger"
)

// Resolver turns tenant identifiers into Resolutions by querying a Provider,
// with caching and a per-lookup deadline. Lookups are read-only and never
// retried automatically; callers decide when to re-resolve.
type Resolver struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
	timeout  time.Duration
	log      *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache sets a custom cache implementation.
func WithCache(cache Cache) ResolverOption {
	return func(r *Resolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithCacheTTL sets how long successful lookups are cached.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithResolveTimeout bounds each provider lookup. Without a deadline a
// hanging backend would surface only as perpetual loading.
func WithResolveTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithResolverLogger sets the logger for lookup failures.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a Resolver over the given provider.
func NewResolver(provider Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		provider: provider,
		cache:    NewMemoryCache(),
		ttl:      5 * time.Minute,
		timeout:  10 * time.Second,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up the tenant for identifier and reports the outcome as
// state. An empty identifier resolves immediately to the no-tenant state
// without touching the backend. Backend errors are mapped to stable reason
// codes; the raw error never leaves this method.
func (r *Resolver) Resolve(ctx context.Context, identifier string) Resolution {
	if identifier == "" {
		return resolved(nil)
	}

	if t, ok := r.cache.Get(ctx, identifier); ok {
		return resolved(t)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	t, err := r.provider.GetBySlug(ctx, identifier)
	switch {
	case err == nil:
		r.cache.Set(context.WithoutCancel(ctx), identifier, t, r.ttl)
		return resolved(t)
	case errors.Is(err, ErrTenantNotFound):
		return notFound()
	case errors.Is(err, ErrDuplicateSlug):
		r.log.ErrorContext(ctx, "duplicate active tenant slug", logger.Slug(identifier))
		return failed(ReasonSlugConflict)
	case errors.Is(err, context.DeadlineExceeded):
		r.log.WarnContext(ctx, "tenant lookup timed out", logger.Slug(identifier))
		return failed(ReasonTimeout)
	default:
		r.log.ErrorContext(ctx, "tenant lookup failed", logger.Slug(identifier), logger.Error(err))
		return failed(ReasonLookupFailed)
	}
}

// Invalidate drops any cached entry for identifier so the next Resolve hits
// the backend. Used after administrative mutations.
func (r *Resolver) Invalidate(ctx context.Context, identifier string) {
	if identifier != "" {
		r.cache.Delete(ctx, identifier)
	}
}

// Close releases the resolver's cache resources.
func (r *Resolver) Close() error {
	return r.cache.Close()
}
