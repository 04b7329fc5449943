package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/squadup/admin-api/internal/authz"
	"github.com/squadup/admin-api/internal/config"
	"github.com/squadup/admin-api/internal/health"
	"github.com/squadup/admin-api/internal/http/handler"
	"github.com/squadup/admin-api/internal/http/middleware"
	"github.com/squadup/admin-api/internal/http/response"
	"github.com/squadup/admin-api/internal/session"
)

type GlobalRateLimiterFunc func(http.Handler) http.Handler

type AuthRateLimiterFunc func(http.Handler) http.Handler

type Dependencies struct {
	Config          *config.Config
	AuthHandler     *handler.AuthHandler
	AdminHandler    *handler.AdminHandler
	SessionResolver *session.Resolver

	// Limiters are injectable so the redis-backed variants can be wired
	// in; nil falls back to an in-process fixed window.
	GlobalRateLimiter GlobalRateLimiterFunc
	AuthRateLimiter   AuthRateLimiterFunc

	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.Config.CORSAllowedOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.Config.APIRateLimitPerMin, time.Minute).Middleware())
	}

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.Config.AuthRateLimitPerMin, time.Minute).Middleware()
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
		r.With(authLimiter).Post("/logout", dep.AuthHandler.Logout)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.SessionAuth(dep.Config, dep.SessionResolver))
		r.Use(middleware.RequireRole(authz.RoleModerator))

		r.Get("/users", dep.AdminHandler.ListUsers)
		r.Get("/users/{id}", dep.AdminHandler.GetUser)
		r.Get("/reports", dep.AdminHandler.ListReports)
		r.Get("/reports/stats", dep.AdminHandler.ReportStats)
		r.Get("/reports/{id}", dep.AdminHandler.GetReport)
		r.Patch("/reports/{id}", dep.AdminHandler.UpdateReportStatus)
		r.Get("/stats", dep.AdminHandler.DashboardStats)
		r.Get("/activity", dep.AdminHandler.RecentActivity)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
