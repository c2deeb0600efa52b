package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/nkiryanov/blogapi/internal/handlers/render"
)

// RecoveryMiddleware turns handler panic into 500 and logs it with the stack
func RecoveryMiddleware(l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let server abort the response as it does without middleware
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				l.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
