package environment

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithContext adds the environment to the context.
func WithContext(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext retrieves the environment from the context.
// Returns the empty Environment when none was set.
func FromContext(ctx context.Context) Environment {
	if ctx == nil {
		return ""
	}
	env, _ := ctx.Value(contextKey{}).(Environment)
	return env
}

// IsDevelopment reports whether the context carries a development-style environment.
// An absent environment counts as development; the guard and error surfaces
// must never expose development behavior by accident, so callers that attach
// the middleware always set it explicitly.
func IsDevelopment(ctx context.Context) bool {
	return FromContext(ctx).IsDevelopment()
}

// IsProduction reports whether the context carries a production environment.
func IsProduction(ctx context.Context) bool {
	return FromContext(ctx).IsProduction()
}

// LoggerExtractor returns a logger ContextExtractor that records the environment.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if env := FromContext(ctx); env != "" {
			return slog.String("env", string(env)), true
		}
		return slog.Attr{}, false
	}
}
