package identity

import (
	"context"
	"log/slog"
)

type userKey struct{}
type profileKey struct{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext retrieves the authenticated user, or nil.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userKey{}).(*User)
	return user
}

// WithProfile stores the profile in the context.
func WithProfile(ctx context.Context, profile *Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, profile)
}

// ProfileFromContext retrieves the profile, or nil. A nil profile with a
// non-nil user means the account exists but has not been provisioned.
func ProfileFromContext(ctx context.Context) *Profile {
	profile, _ := ctx.Value(profileKey{}).(*Profile)
	return profile
}

// LoggerExtractor returns a logger ContextExtractor that records the
// signed-in user ID.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if user := UserFromContext(ctx); user != nil {
			return slog.String("user_id", user.ID.String()), true
		}
		return slog.Attr{}, false
	}
}
