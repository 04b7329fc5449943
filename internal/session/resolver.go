package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/squadup/admin-api/internal/identity"
	"github.com/squadup/admin-api/internal/observability"
	"github.com/squadup/admin-api/internal/repository"
)

// Failure kinds distinguish why resolution produced no session. They
// exist for logs and metrics only; callers never branch on them, since
// every failure must look identical to the requester.
const (
	failConfig        = "config"
	failIdentity      = "identity"
	failAuthorization = "authorization"
	failData          = "data"
	failPanic         = "panic"
)

// IdentityVerifier is the round-trip verification surface of the
// identity client. The verifier is bound to one request's cookies, so
// a fresh one is passed per Resolve call.
type IdentityVerifier interface {
	User(ctx context.Context) (*identity.Identity, error)
}

type Resolver struct {
	admins repository.AdminUserRepository
	logger *slog.Logger
}

func NewResolver(admins repository.AdminUserRepository, logger *slog.Logger) *Resolver {
	return &Resolver{admins: admins, logger: logger}
}

// Resolve turns request cookies into an admin session, or nil. Every
// failure collapses to nil: a missing cookie, a revoked token, a valid
// identity with no staff row, and an infrastructure error are all
// indistinguishable to the caller.
func (r *Resolver) Resolve(ctx context.Context, verifier IdentityVerifier) (sess *Session) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("session resolution panicked", slog.Any("panic", rec))
			observability.RecordSessionResolution(ctx, failPanic)
			sess = nil
		}
	}()

	if verifier == nil {
		r.logger.Warn("session resolution skipped", slog.String("kind", failConfig))
		observability.RecordSessionResolution(ctx, failConfig)
		return nil
	}

	ident, err := verifier.User(ctx)
	if err != nil {
		kind := failIdentity
		if errors.Is(err, identity.ErrNotConfigured) {
			kind = failConfig
		}
		// No-session and rejected-token are the common path for
		// unauthenticated traffic; keep them at debug.
		if errors.Is(err, identity.ErrNoSession) || errors.Is(err, identity.ErrUnauthorized) {
			r.logger.Debug("identity verification failed", slog.String("kind", kind), slog.String("error", err.Error()))
		} else {
			r.logger.Warn("identity verification failed", slog.String("kind", kind), slog.String("error", err.Error()))
		}
		observability.RecordSessionResolution(ctx, kind)
		return nil
	}

	admin, err := r.admins.FindByUserID(ident.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAdminUserNotFound) {
			r.logger.Info("verified identity without staff grant",
				slog.String("kind", failAuthorization),
				slog.String("user_id", ident.ID),
			)
			observability.RecordSessionResolution(ctx, failAuthorization)
			return nil
		}
		r.logger.Error("admin grant lookup failed",
			slog.String("kind", failData),
			slog.String("user_id", ident.ID),
			slog.String("error", err.Error()),
		)
		observability.RecordSessionResolution(ctx, failData)
		return nil
	}

	observability.RecordSessionResolution(ctx, "success")
	return &Session{Identity: *ident, Admin: *admin}
}
