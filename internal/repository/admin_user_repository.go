package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/observability"
)

var ErrAdminUserNotFound = errors.New("admin user not found")

type AdminUserRepository interface {
	Create(admin *domain.AdminUser) error
	FindByUserID(userID string) (*domain.AdminUser, error)
}

type GormAdminUserRepository struct{ db *gorm.DB }

func NewAdminUserRepository(db *gorm.DB) AdminUserRepository {
	return &GormAdminUserRepository{db: db}
}

func (r *GormAdminUserRepository) Create(admin *domain.AdminUser) error {
	if err := r.db.Create(admin).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "admin_user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "admin_user", "create", "success")
	return nil
}

// FindByUserID looks up the admin grant keyed by the verified subject
// id, not the row's own primary key.
func (r *GormAdminUserRepository) FindByUserID(userID string) (*domain.AdminUser, error) {
	var admin domain.AdminUser
	if err := r.db.Where("user_id = ?", userID).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "admin_user", "find_by_user_id", "not_found")
			return nil, ErrAdminUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "admin_user", "find_by_user_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "admin_user", "find_by_user_id", "success")
	return &admin, nil
}
