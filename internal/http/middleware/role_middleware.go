package middleware

import (
	"net/http"

	"github.com/squadup/admin-api/internal/authz"
	"github.com/squadup/admin-api/internal/http/response"
)

// RequireRole gates a route group on the session's admin role. Roles
// are totally ordered, so holding a higher role always satisfies a
// lower requirement.
func RequireRole(required authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session context", nil)
				return
			}
			if !sess.HasRole(required) {
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", map[string]string{"required": string(required)})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
