package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type resolutionKey struct{}

// WithResolution adds a resolution to the context.
func WithResolution(ctx context.Context, res Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey{}, res)
}

// ResolutionFromContext retrieves the resolution from the context.
// Returns an idle resolution when none is present.
func ResolutionFromContext(ctx context.Context) Resolution {
	if res, ok := ctx.Value(resolutionKey{}).(Resolution); ok {
		return res
	}
	return Resolution{Status: StatusIdle}
}

// FromContext retrieves the resolved tenant from the context.
// Returns nil, false unless the resolution succeeded with a tenant.
func FromContext(ctx context.Context) (*Tenant, bool) {
	res := ResolutionFromContext(ctx)
	if res.Status != StatusResolved || res.Tenant == nil {
		return nil, false
	}
	return res.Tenant, true
}

// IDFromContext retrieves just the tenant ID from the context.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// MustFromContext retrieves the tenant from the context and panics when none
// is present. Use only in handlers mounted behind RequireTenant.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// LoggerExtractor returns a logger ContextExtractor that records the
// resolved tenant ID.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("school_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
