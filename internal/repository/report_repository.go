package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/observability"
)

var ErrReportNotFound = errors.New("report not found")

// ReportStatusAll disables the status filter in ListPaged.
const ReportStatusAll = "all"

type ReportRepository interface {
	Create(report *domain.Report) error
	FindByID(id string) (*domain.Report, error)
	ListPaged(req PageRequest, status, reason string) (PageResult[domain.Report], error)
	UpdateStatus(id string, updates map[string]any) error
	CountByStatus() (domain.ReportStats, error)
	CountByReportedUsers(userIDs []string) (map[string]int64, error)
	RecentN(n int) ([]domain.Report, error)
}

type GormReportRepository struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &GormReportRepository{db: db}
}

func (r *GormReportRepository) Create(report *domain.Report) error {
	if err := r.db.Create(report).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "report", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "report", "create", "success")
	return nil
}

func (r *GormReportRepository) FindByID(id string) (*domain.Report, error) {
	var report domain.Report
	if err := r.db.Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "report", "find_by_id", "not_found")
			return nil, ErrReportNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "report", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "report", "find_by_id", "success")
	return &report, nil
}

func (r *GormReportRepository) ListPaged(req PageRequest, status, reason string) (PageResult[domain.Report], error) {
	normalized := normalizePageRequest(req)
	result := PageResult[domain.Report]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	base := r.db.Model(&domain.Report{})
	if status != "" && status != ReportStatusAll {
		base = base.Where("status = ?", status)
	}
	if reason != "" {
		base = base.Where("reason = ?", reason)
	}
	if search := strings.TrimSpace(normalized.Search); search != "" {
		base = base.Where("LOWER(reason) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "report", "list_paged", "error")
		return PageResult[domain.Report]{}, err
	}
	offset := (normalized.Page - 1) * normalized.PageSize
	if err := base.Order("created_at desc").Offset(offset).Limit(normalized.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "report", "list_paged", "error")
		return PageResult[domain.Report]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "report", "list_paged", "success")
	return result, nil
}

func (r *GormReportRepository) UpdateStatus(id string, updates map[string]any) error {
	res := r.db.Model(&domain.Report{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "report", "update_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "report", "update_status", "not_found")
		return ErrReportNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "report", "update_status", "success")
	return nil
}

func (r *GormReportRepository) CountByStatus() (domain.ReportStats, error) {
	rows := []struct {
		Status string
		Total  int64
	}{}
	err := r.db.Model(&domain.Report{}).
		Select("status, COUNT(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "report", "count_by_status", "error")
		return domain.ReportStats{}, err
	}

	var stats domain.ReportStats
	for _, row := range rows {
		switch row.Status {
		case domain.ReportStatusPending:
			stats.Pending = row.Total
		case domain.ReportStatusReviewing:
			stats.Reviewing = row.Total
		case domain.ReportStatusResolved:
			stats.Resolved = row.Total
		case domain.ReportStatusDismissed:
			stats.Dismissed = row.Total
		}
	}
	observability.RecordRepositoryOperation(context.Background(), "report", "count_by_status", "success")
	return stats, nil
}

// CountByReportedUsers returns per-user report totals; users with no
// reports have no entry in the map.
func (r *GormReportRepository) CountByReportedUsers(userIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}
	rows := []struct {
		ReportedUserID string
		Total          int64
	}{}
	err := r.db.Model(&domain.Report{}).
		Select("reported_user_id, COUNT(*) as total").
		Where("reported_user_id IN ?", userIDs).
		Group("reported_user_id").
		Scan(&rows).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "report", "count_by_reported_users", "error")
		return nil, err
	}
	for _, row := range rows {
		counts[row.ReportedUserID] = row.Total
	}
	observability.RecordRepositoryOperation(context.Background(), "report", "count_by_reported_users", "success")
	return counts, nil
}

func (r *GormReportRepository) RecentN(n int) ([]domain.Report, error) {
	var reports []domain.Report
	if err := r.db.Order("created_at desc").Limit(n).Find(&reports).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "report", "recent_n", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "report", "recent_n", "success")
	return reports, nil
}
