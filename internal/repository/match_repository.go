package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/observability"
)

type MatchRepository interface {
	Create(match *domain.Match) error
	Count() (int64, error)
	RecentN(n int) ([]domain.Match, error)
}

type GormMatchRepository struct{ db *gorm.DB }

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &GormMatchRepository{db: db}
}

func (r *GormMatchRepository) Create(match *domain.Match) error {
	if err := r.db.Create(match).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "match", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "match", "create", "success")
	return nil
}

func (r *GormMatchRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&domain.Match{}).Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "match", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(context.Background(), "match", "count", "success")
	return total, nil
}

func (r *GormMatchRepository) RecentN(n int) ([]domain.Match, error) {
	var matches []domain.Match
	if err := r.db.Order("created_at desc").Limit(n).Find(&matches).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "match", "recent_n", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "match", "recent_n", "success")
	return matches, nil
}
