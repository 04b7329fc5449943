package domain

import "time"

const (
	ReportStatusPending   = "pending"
	ReportStatusReviewing = "reviewing"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

type Report struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	ReporterID     string     `gorm:"size:36;not null;index" json:"reporter_id"`
	ReportedUserID string     `gorm:"size:36;not null;index" json:"reported_user_id"`
	Reason         string     `gorm:"size:64;not null" json:"reason"`
	Details        string     `gorm:"size:4096" json:"details"`
	Status         string     `gorm:"size:32;not null;default:pending;index" json:"status"`
	ActionTaken    *string    `gorm:"size:255" json:"action_taken"`
	AdminNotes     *string    `gorm:"size:4096" json:"admin_notes"`
	ReviewedBy     *string    `gorm:"size:36" json:"reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

func (Report) TableName() string { return "reports" }

func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewing, ReportStatusResolved, ReportStatusDismissed:
		return true
	default:
		return false
	}
}
