package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/observability"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile sort keys accepted by ListPaged.
const (
	ProfileSortNewest = "newest"
	ProfileSortOldest = "oldest"
	ProfileSortName   = "name"
)

type ProfileRepository interface {
	Create(profile *domain.Profile) error
	FindByID(id string) (*domain.Profile, error)
	FindByIDs(ids []string) ([]domain.Profile, error)
	ListPaged(req PageRequest) (PageResult[domain.Profile], error)
	Count() (int64, error)
	RecentN(n int) ([]domain.Profile, error)
}

type GormProfileRepository struct{ db *gorm.DB }

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) Create(profile *domain.Profile) error {
	if err := r.db.Create(profile).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "profile", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "profile", "create", "success")
	return nil
}

func (r *GormProfileRepository) FindByID(id string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "profile", "find_by_id", "not_found")
			return nil, ErrProfileNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "profile", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "profile", "find_by_id", "success")
	return &profile, nil
}

// FindByIDs loads the profiles that exist for the given ids; missing
// ids are simply absent from the result, not an error.
func (r *GormProfileRepository) FindByIDs(ids []string) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var profiles []domain.Profile
	if err := r.db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "profile", "find_by_ids", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "profile", "find_by_ids", "success")
	return profiles, nil
}

func (r *GormProfileRepository) ListPaged(req PageRequest) (PageResult[domain.Profile], error) {
	normalized := normalizePageRequest(req)
	result := PageResult[domain.Profile]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	base := r.db.Model(&domain.Profile{})
	if search := strings.TrimSpace(normalized.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		base = base.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(gamertag) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "profile", "list_paged", "error")
		return PageResult[domain.Profile]{}, err
	}

	order := "created_at desc"
	switch normalized.Sort {
	case ProfileSortOldest:
		order = "created_at asc"
	case ProfileSortName:
		order = "LOWER(name) asc"
	}

	offset := (normalized.Page - 1) * normalized.PageSize
	if err := base.Order(order).Offset(offset).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "profile", "list_paged", "error")
		return PageResult[domain.Profile]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "profile", "list_paged", "success")
	return result, nil
}

func (r *GormProfileRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&domain.Profile{}).Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "profile", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(context.Background(), "profile", "count", "success")
	return total, nil
}

func (r *GormProfileRepository) RecentN(n int) ([]domain.Profile, error) {
	var profiles []domain.Profile
	if err := r.db.Order("created_at desc").Limit(n).Find(&profiles).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "profile", "recent_n", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "profile", "recent_n", "success")
	return profiles, nil
}
