package environment

import "net/http"

// Middleware attaches the given environment to all request contexts so that
// downstream middleware (tenant guard, error boundary) can branch on it
// without hostname sniffing.
func Middleware(env Environment) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithContext(r.Context(), env)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
