package identity

import (
	"errors"
	"net/http"
)

// SessionCookie is the transport for session tokens.
const SessionCookie = "eduquinha_session"

// Middleware resolves the session cookie into the user and profile and
// injects both into the request context. Requests without a valid session
// continue anonymously; authorization is enforced per route.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, profile, err := svc.Identify(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, ErrSessionNotFound) {
					// Backend failure: proceed anonymously rather than
					// failing the whole request.
					next.ServeHTTP(w, r)
					return
				}
				// Stale cookie: drop it so the client stops sending it.
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    "",
					Path:     "/",
					MaxAge:   -1,
					HttpOnly: true,
				})
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = WithProfile(ctx, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole ensures the signed-in profile holds one of the given roles.
// Anonymous requests get 401, everything else 403.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFromContext(r.Context()) == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			profile := ProfileFromContext(r.Context())
			if profile == nil {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			if _, ok := allowed[profile.Role]; !ok {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
