package service

import (
	"context"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/repository"
)

// UserRow is a profile enriched with the number of reports filed
// against it.
type UserRow struct {
	domain.Profile
	ReportsAgainst int64 `json:"reports_against"`
}

// ReportRow is a list-view report with minimal reporter and reported
// projections attached. Either summary may be nil when the profile no
// longer exists.
type ReportRow struct {
	domain.Report
	Reporter     *domain.ProfileSummary `json:"reporter"`
	ReportedUser *domain.ProfileSummary `json:"reported_user"`
}

// ReportDetail is the full report view: complete profiles for both
// parties plus the all-time count of reports against the reported
// user.
type ReportDetail struct {
	domain.Report
	Reporter     *domain.Profile `json:"reporter"`
	ReportedUser *domain.Profile `json:"reported_user"`
	PriorReports int64           `json:"prior_reports"`
}

// ReportStatusUpdate is the moderation write applied to a report.
// ReviewedBy is always the acting admin's verified subject id, never
// client input. Nil ActionTaken or AdminNotes clears the stored
// column; a review never inherits a previous review's fields.
type ReportStatusUpdate struct {
	Status      string
	ActionTaken *string
	AdminNotes  *string
	ReviewedBy  string
}

// AdminQueryServiceInterface is the read/moderate surface behind the
// admin handlers. Reads never fail: store errors degrade to empty
// pages, zero stats, or nil at this boundary, so a flaky backend shows
// an empty console rather than an error page. Only the moderation
// write reports infrastructure errors.
type AdminQueryServiceInterface interface {
	ListUsers(ctx context.Context, req repository.PageRequest) repository.PageResult[UserRow]
	GetUserByID(ctx context.Context, id string) *UserRow
	ListReports(ctx context.Context, req repository.PageRequest, status, reason string) repository.PageResult[ReportRow]
	GetReportByID(ctx context.Context, id string) *ReportDetail
	UpdateReportStatus(ctx context.Context, id string, update ReportStatusUpdate) (bool, error)
	DashboardStats(ctx context.Context) *domain.DashboardStats
	RecentActivity(ctx context.Context, limit int) []domain.ActivityEvent
	ReportStats(ctx context.Context) *domain.ReportStats
}
