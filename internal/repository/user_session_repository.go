package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/observability"
)

type UserSessionRepository interface {
	Create(session *domain.UserSession) error
	ActiveUserIDsSince(since time.Time) ([]string, error)
}

type GormUserSessionRepository struct{ db *gorm.DB }

func NewUserSessionRepository(db *gorm.DB) UserSessionRepository {
	return &GormUserSessionRepository{db: db}
}

func (r *GormUserSessionRepository) Create(session *domain.UserSession) error {
	if err := r.db.Create(session).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user_session", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user_session", "create", "success")
	return nil
}

// ActiveUserIDsSince returns the user id of every session active at or
// after the cutoff. A user with several devices appears once per
// session; callers that need a user count must dedupe.
func (r *GormUserSessionRepository) ActiveUserIDsSince(since time.Time) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.UserSession{}).
		Where("last_active_at >= ?", since).
		Pluck("user_id", &ids).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user_session", "active_user_ids_since", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user_session", "active_user_ids_since", "success")
	return ids, nil
}
