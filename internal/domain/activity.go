package domain

import "time"

const (
	ActivitySignup = "signup"
	ActivityMatch  = "match"
	ActivityReport = "report"
)

// ActivityEvent is synthesized on read from profiles/matches/reports;
// it is never stored.
type ActivityEvent struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	SubjectID   string    `json:"subject_id,omitempty"`
}

type DashboardStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveToday    int64 `json:"active_today"`
	TotalMatches   int64 `json:"total_matches"`
	PendingReports int64 `json:"pending_reports"`
}

type ReportStats struct {
	Pending   int64 `json:"pending"`
	Reviewing int64 `json:"reviewing"`
	Resolved  int64 `json:"resolved"`
	Dismissed int64 `json:"dismissed"`
}
