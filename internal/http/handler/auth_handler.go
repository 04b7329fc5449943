package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/squadup/admin-api/internal/config"
	"github.com/squadup/admin-api/internal/http/response"
	"github.com/squadup/admin-api/internal/identity"
	"github.com/squadup/admin-api/internal/observability"
	"github.com/squadup/admin-api/internal/repository"
)

// AuthHandler proxies the password grant to the identity service and
// manages the provider's namespaced session cookies. It never mints
// tokens itself.
type AuthHandler struct {
	cfg    *config.Config
	admins repository.AdminUserRepository
}

func NewAuthHandler(cfg *config.Config, admins repository.AdminUserRepository) *AuthHandler {
	return &AuthHandler{cfg: cfg, admins: admins}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		observability.RecordAuthLogin(r.Context(), "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		observability.RecordAuthLogin(r.Context(), "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email and password are required", nil)
		return
	}

	client, err := h.identityClient(w, r)
	if err != nil {
		observability.Audit(r, "auth.login.failed", "reason", "identity_not_configured")
		observability.RecordAuthLogin(r.Context(), "failure")
		response.Error(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "identity service not configured", nil)
		return
	}

	ident, err := client.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		observability.Audit(r, "auth.login.failed", "reason", "grant_rejected", "client_ip", clientIP(r))
		observability.RecordAuthLogin(r.Context(), "failure")
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
		return
	}

	admin, err := h.admins.FindByUserID(ident.ID)
	if err != nil {
		// A valid identity without a staff grant gets the same answer
		// as a bad password; the session cookies are discarded so the
		// attempt leaves nothing behind.
		if errors.Is(err, repository.ErrAdminUserNotFound) {
			_ = client.SignOut(r.Context())
			observability.Audit(r, "auth.login.failed", "reason", "no_staff_grant", "user_id", ident.ID)
			observability.RecordAuthLogin(r.Context(), "failure")
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
			return
		}
		observability.RecordAuthLogin(r.Context(), "failure")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "login failed", nil)
		return
	}

	observability.Audit(r, "auth.login.success", "user_id", ident.ID, "role", admin.Role)
	observability.RecordAuthLogin(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user": ident,
		"role": admin.Role,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	client, err := h.identityClient(w, r)
	if err != nil {
		observability.RecordAuthLogout(r.Context(), "failure")
		response.Error(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "identity service not configured", nil)
		return
	}

	// Remote revocation failure still clears the local cookies, so the
	// browser ends up logged out either way.
	if err := client.SignOut(r.Context()); err != nil {
		observability.Audit(r, "auth.logout.revoke_failed", "error", err.Error())
		observability.RecordAuthLogout(r.Context(), "partial")
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
		return
	}

	observability.Audit(r, "auth.logout.success")
	observability.RecordAuthLogout(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *AuthHandler) identityClient(w http.ResponseWriter, r *http.Request) (*identity.Client, error) {
	store := identity.NewRequestCookieStore(r, w, h.cfg.IdentityURL, h.cfg.CookieSecure)
	return identity.NewClient(h.cfg.IdentityURL, h.cfg.IdentityAnonKey, h.cfg.IdentityTimeout, store)
}

func clientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	return r.RemoteAddr
}
