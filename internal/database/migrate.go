package database

import (
	"github.com/squadup/admin-api/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Profile{},
		&domain.Match{},
		&domain.Report{},
		&domain.UserSession{},
		&domain.AdminUser{},
	)
}
