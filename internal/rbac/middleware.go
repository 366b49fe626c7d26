package rbac

import (
	"log/slog"
	"net/http"

	"github.com/catalogd/catalogd/internal/platform/httpx"
)

// Middleware wires authorization checks for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Require ensures the current subject holds the given operation capability.
// Requests without a subject receive 401; subjects lacking the capability
// receive 403. The check runs before any handler state change.
func (m Middleware) Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, ok := SubjectFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if !Allowed(sub.Role, op) {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied",
						slog.Int64("user_id", sub.UserID),
						slog.String("role", string(sub.Role)),
						slog.String("operation", string(op)))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "operation not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
