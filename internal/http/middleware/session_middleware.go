package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/squadup/admin-api/internal/config"
	"github.com/squadup/admin-api/internal/http/response"
	"github.com/squadup/admin-api/internal/identity"
	"github.com/squadup/admin-api/internal/session"
)

type contextKey string

const (
	SessionContextKey contextKey = "session"
)

// SessionAuth resolves the admin session from the request's identity
// cookies and stores it on the context. Any resolution failure is
// treated as unauthenticated: browser navigations are redirected to
// the login page, API clients get a 401 envelope. The response writer
// is handed to the cookie store so the identity client can refresh
// chunked session cookies mid-request.
func SessionAuth(cfg *config.Config, resolver *session.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var verifier session.IdentityVerifier
			store := identity.NewRequestCookieStore(r, w, cfg.IdentityURL, cfg.CookieSecure)
			if client, err := identity.NewClient(cfg.IdentityURL, cfg.IdentityAnonKey, cfg.IdentityTimeout, store); err == nil {
				verifier = client
			}

			sess := resolver.Resolve(r.Context(), verifier)
			if sess == nil {
				if wantsLoginRedirect(r) {
					http.Redirect(w, r, cfg.LoginPath, http.StatusSeeOther)
					return
				}
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(SessionContextKey).(*session.Session)
	return s, ok
}

// wantsLoginRedirect distinguishes a browser navigation from an API or
// XHR call. Only top-level GET navigations that accept HTML are
// redirected; everything else must handle the 401 envelope itself.
func wantsLoginRedirect(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
