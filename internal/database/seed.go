package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/squadup/admin-api/internal/authz"
	"github.com/squadup/admin-api/internal/domain"
)

type BootstrapReport struct {
	CreatedAdmin bool `json:"created_admin"`
	Noop         bool `json:"noop"`
}

// Bootstrap ensures the configured identity subject holds an admin
// grant, so a fresh deployment has at least one staff member who can
// grant the rest. An empty user id is a no-op, not an error.
func Bootstrap(db *gorm.DB, bootstrapUserID, bootstrapRole string) (*BootstrapReport, error) {
	report := &BootstrapReport{}

	userID := strings.TrimSpace(bootstrapUserID)
	if userID == "" {
		report.Noop = true
		return report, nil
	}
	role := strings.ToLower(strings.TrimSpace(bootstrapRole))
	if !authz.Role(role).Valid() {
		return nil, fmt.Errorf("bootstrap admin role %q is not a known role", bootstrapRole)
	}

	grant := domain.AdminUser{
		ID:     uuid.NewString(),
		UserID: userID,
		Role:   role,
	}
	res := db.Where("user_id = ?", userID).FirstOrCreate(&grant)
	if res.Error != nil {
		return nil, fmt.Errorf("bootstrap admin grant: %w", res.Error)
	}
	report.CreatedAdmin = res.RowsAffected > 0
	report.Noop = !report.CreatedAdmin
	return report, nil
}

type DemoReport struct {
	Profiles int `json:"profiles"`
	Matches  int `json:"matches"`
	Reports  int `json:"reports"`
	Sessions int `json:"sessions"`
}

var demoRegions = []string{"na-east", "na-west", "eu-west", "apac"}
var demoGames = []string{"valorant", "apex", "rocket-league", "overwatch"}
var demoReasons = []string{"harassment", "cheating", "spam", "inappropriate_profile"}

// SeedDemo inserts a deterministic development dataset: a page-plus of
// profiles, matches between neighbours, a handful of open reports, and
// recent device sessions. It is additive and safe to re-run against a
// throwaway database, but not idempotent.
func SeedDemo(db *gorm.DB) (*DemoReport, error) {
	report := &DemoReport{}
	now := time.Now().UTC()

	profiles := make([]domain.Profile, 0, 24)
	for i := 0; i < 24; i++ {
		profiles = append(profiles, domain.Profile{
			ID:        uuid.NewString(),
			Name:      fmt.Sprintf("Demo Player %02d", i+1),
			Email:     fmt.Sprintf("player%02d@demo.squadup.gg", i+1),
			Gamertag:  fmt.Sprintf("demo_player_%02d", i+1),
			Region:    demoRegions[i%len(demoRegions)],
			GameType:  demoGames[i%len(demoGames)],
			IsPremium: i%5 == 0,
			CreatedAt: now.Add(-time.Duration(i*7) * time.Hour),
		})
	}
	if err := db.Create(&profiles).Error; err != nil {
		return nil, fmt.Errorf("seed profiles: %w", err)
	}
	report.Profiles = len(profiles)

	matches := make([]domain.Match, 0, len(profiles)/2)
	for i := 0; i+1 < len(profiles); i += 2 {
		matches = append(matches, domain.Match{
			ID:        uuid.NewString(),
			User1ID:   profiles[i].ID,
			User2ID:   profiles[i+1].ID,
			CreatedAt: now.Add(-time.Duration(i*3) * time.Hour),
		})
	}
	if err := db.Create(&matches).Error; err != nil {
		return nil, fmt.Errorf("seed matches: %w", err)
	}
	report.Matches = len(matches)

	reports := make([]domain.Report, 0, len(demoReasons))
	for i, reason := range demoReasons {
		reports = append(reports, domain.Report{
			ID:             uuid.NewString(),
			ReporterID:     profiles[i].ID,
			ReportedUserID: profiles[len(profiles)-1-i].ID,
			Reason:         reason,
			Details:        "demo report for local development",
			Status:         domain.ReportStatusPending,
			CreatedAt:      now.Add(-time.Duration(i*5) * time.Hour),
		})
	}
	if err := db.Create(&reports).Error; err != nil {
		return nil, fmt.Errorf("seed reports: %w", err)
	}
	report.Reports = len(reports)

	sessions := make([]domain.UserSession, 0, 12)
	for i := 0; i < 12; i++ {
		sessions = append(sessions, domain.UserSession{
			ID:           uuid.NewString(),
			UserID:       profiles[i].ID,
			DeviceType:   []string{"ios", "android", "web"}[i%3],
			AppVersion:   "2.4.1",
			AuthProvider: "password",
			LastActiveAt: now.Add(-time.Duration(i) * time.Hour),
			CreatedAt:    now.Add(-time.Duration(i*24) * time.Hour),
		})
	}
	if err := db.Create(&sessions).Error; err != nil {
		return nil, fmt.Errorf("seed sessions: %w", err)
	}
	report.Sessions = len(sessions)

	return report, nil
}
