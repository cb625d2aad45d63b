package shell

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/eduquinha/eduquinha/pkg/environment"
)

// Recoverer is the top-level error boundary. Unexpected panics become a 500
// response with reload and home recovery actions instead of a dropped
// connection. Raw error detail is exposed only in development-style
// environments.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)

				body := payload{
					Surface: "error",
					Code:    "internal_error",
					Message: "Something went wrong.",
					Links:   map[string]string{"home": "/", "reload": r.URL.RequestURI()},
				}
				if environment.IsDevelopment(r.Context()) {
					body.Detail = fmt.Sprint(rec)
				}
				writeJSON(w, http.StatusInternalServerError, body)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
