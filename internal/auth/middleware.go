package auth

import (
	"net/http"
	"strings"

	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

// Authenticator decodes a bearer token into the request context. Requests
// without an Authorization header pass through anonymously; the rbac
// middleware rejects them where a capability is required.
func Authenticator(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "malformed authorization header")
				return
			}
			sub, err := tm.Parse(strings.TrimSpace(raw))
			if err != nil {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(rbac.ContextWithSubject(r.Context(), sub)))
		})
	}
}
