package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/repository"
	repogomock "github.com/squadup/admin-api/internal/repository/gomock"
)

type queryServiceMocks struct {
	profiles *repogomock.MockProfileRepository
	reports  *repogomock.MockReportRepository
	matches  *repogomock.MockMatchRepository
	sessions *repogomock.MockUserSessionRepository
}

func newQueryServiceForTest(t *testing.T, cache StatsCacheStore) (*AdminQueryService, queryServiceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := queryServiceMocks{
		profiles: repogomock.NewMockProfileRepository(ctrl),
		reports:  repogomock.NewMockReportRepository(ctrl),
		matches:  repogomock.NewMockMatchRepository(ctrl),
		sessions: repogomock.NewMockUserSessionRepository(ctrl),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewAdminQueryService(m.profiles, m.reports, m.matches, m.sessions, cache, time.Minute, logger)
	return svc, m
}

func TestListUsersEnrichesReportCounts(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)

	page := repository.PageResult[domain.Profile]{
		Items: []domain.Profile{
			{ID: "u1", Name: "Alpha"},
			{ID: "u2", Name: "Bravo"},
		},
		Page: 1, PageSize: 20, Total: 2, TotalPages: 1,
	}
	m.profiles.EXPECT().ListPaged(gomock.Any()).Return(page, nil)
	m.reports.EXPECT().CountByReportedUsers([]string{"u1", "u2"}).Return(map[string]int64{"u1": 3}, nil)

	got := svc.ListUsers(context.Background(), repository.PageRequest{Page: 1, PageSize: 20})
	if got.Total != 2 || len(got.Items) != 2 {
		t.Fatalf("unexpected page: %+v", got)
	}
	if got.Items[0].ReportsAgainst != 3 {
		t.Errorf("u1 reports = %d, want 3", got.Items[0].ReportsAgainst)
	}
	if got.Items[1].ReportsAgainst != 0 {
		t.Errorf("u2 reports = %d, want 0 (absent from count map)", got.Items[1].ReportsAgainst)
	}
}

func TestListUsersDegradesToEmptyPageOnStoreError(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)
	m.profiles.EXPECT().ListPaged(gomock.Any()).Return(repository.PageResult[domain.Profile]{}, errors.New("db down"))

	got := svc.ListUsers(context.Background(), repository.PageRequest{Page: 3, PageSize: 10})
	if len(got.Items) != 0 || got.Total != 0 {
		t.Fatalf("store failure must yield an empty page, got %+v", got)
	}
	if got.Items == nil {
		t.Fatal("degraded page must carry an empty slice, not nil")
	}
	if got.Page != 3 || got.PageSize != 10 {
		t.Errorf("degraded page lost its controls: %+v", got)
	}
}

func TestListUsersDegradesCountFailureToZero(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)
	page := repository.PageResult[domain.Profile]{
		Items: []domain.Profile{{ID: "u1", Name: "Alpha"}},
		Page:  1, PageSize: 20, Total: 1, TotalPages: 1,
	}
	m.profiles.EXPECT().ListPaged(gomock.Any()).Return(page, nil)
	m.reports.EXPECT().CountByReportedUsers(gomock.Any()).Return(nil, errors.New("db down"))

	got := svc.ListUsers(context.Background(), repository.PageRequest{})
	if len(got.Items) != 1 || got.Items[0].ReportsAgainst != 0 {
		t.Fatalf("failed enrichment must still render the page with zero counts: %+v", got)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)
	m.profiles.EXPECT().FindByID("missing").Return(nil, repository.ErrProfileNotFound)

	if row := svc.GetUserByID(context.Background(), "missing"); row != nil {
		t.Fatalf("row = %+v, want nil", row)
	}
}

func TestGetUserByIDDegradesOnStoreError(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)
	m.profiles.EXPECT().FindByID("u1").Return(nil, errors.New("db down"))

	if row := svc.GetUserByID(context.Background(), "u1"); row != nil {
		t.Fatalf("row = %+v, want nil on store failure", row)
	}
}

func TestListReportsAttachesDedupedProfiles(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)

	// Two reports filed by the same reporter; the profile batch must
	// request each id once.
	page := repository.PageResult[domain.Report]{
		Items: []domain.Report{
			{ID: "r1", ReporterID: "u1", ReportedUserID: "u2", Reason: "spam"},
			{ID: "r2", ReporterID: "u1", ReportedUserID: "u3", Reason: "harassment"},
		},
		Page: 1, PageSize: 20, Total: 2, TotalPages: 1,
	}
	m.reports.EXPECT().ListPaged(gomock.Any(), "pending", "").Return(page, nil)
	m.profiles.EXPECT().FindByIDs(gomock.Any()).DoAndReturn(func(ids []string) ([]domain.Profile, error) {
		if len(ids) != 3 {
			t.Errorf("profile batch ids = %v, want 3 deduped ids", ids)
		}
		return []domain.Profile{
			{ID: "u1", Name: "Reporter"},
			{ID: "u2", Name: "Target"},
		}, nil
	})

	got := svc.ListReports(context.Background(), repository.PageRequest{}, "pending", "")
	row := got.Items[0]
	if row.Reporter == nil || row.Reporter.Name != "Reporter" {
		t.Errorf("reporter summary = %+v", row.Reporter)
	}
	if row.ReportedUser == nil || row.ReportedUser.Name != "Target" {
		t.Errorf("reported summary = %+v", row.ReportedUser)
	}
	// u3's profile no longer exists; the row carries nil, not an error.
	if got.Items[1].ReportedUser != nil {
		t.Errorf("missing profile should yield nil summary, got %+v", got.Items[1].ReportedUser)
	}
}

func TestListReportsDegradesToEmptyPageOnStoreError(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)
	m.reports.EXPECT().ListPaged(gomock.Any(), "all", "").Return(repository.PageResult[domain.Report]{}, errors.New("db down"))

	got := svc.ListReports(context.Background(), repository.PageRequest{Page: 1, PageSize: 20}, "all", "")
	if len(got.Items) != 0 || got.Total != 0 {
		t.Fatalf("store failure must yield an empty page, got %+v", got)
	}
}

func TestGetReportByID(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)

	m.reports.EXPECT().FindByID("r1").Return(&domain.Report{ID: "r1", ReporterID: "u1", ReportedUserID: "u2"}, nil)
	m.profiles.EXPECT().FindByIDs([]string{"u1", "u2"}).Return([]domain.Profile{
		{ID: "u2", Name: "Target", Bio: "duo queue only", Region: "na-east", IsPremium: true},
	}, nil)
	m.reports.EXPECT().CountByReportedUsers([]string{"u2"}).Return(map[string]int64{"u2": 3}, nil)

	detail := svc.GetReportByID(context.Background(), "r1")
	if detail == nil {
		t.Fatal("GetReportByID returned nil")
	}
	if detail.Reporter != nil {
		t.Errorf("reporter should be nil for missing profile")
	}
	// The detail view carries the full profile, not the list summary.
	if detail.ReportedUser == nil || detail.ReportedUser.Bio != "duo queue only" || !detail.ReportedUser.IsPremium {
		t.Errorf("reported = %+v", detail.ReportedUser)
	}
	if detail.PriorReports != 3 {
		t.Errorf("prior reports = %d, want 3", detail.PriorReports)
	}
}

func TestGetReportByIDDegradesToNil(t *testing.T) {
	t.Run("missing report", func(t *testing.T) {
		svc, m := newQueryServiceForTest(t, nil)
		m.reports.EXPECT().FindByID("r-404").Return(nil, repository.ErrReportNotFound)
		if detail := svc.GetReportByID(context.Background(), "r-404"); detail != nil {
			t.Fatalf("detail = %+v, want nil", detail)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		svc, m := newQueryServiceForTest(t, nil)
		m.reports.EXPECT().FindByID("r1").Return(nil, errors.New("db down"))
		if detail := svc.GetReportByID(context.Background(), "r1"); detail != nil {
			t.Fatalf("detail = %+v, want nil on store failure", detail)
		}
	})
}

func TestUpdateReportStatus(t *testing.T) {
	t.Run("invalid status never reaches the repository", func(t *testing.T) {
		svc, _ := newQueryServiceForTest(t, nil)
		ok, err := svc.UpdateReportStatus(context.Background(), "r1", ReportStatusUpdate{Status: "escalated", ReviewedBy: "admin-1"})
		if err != nil || ok {
			t.Fatalf("got ok=%v err=%v, want false,nil", ok, err)
		}
	})

	t.Run("unknown report id", func(t *testing.T) {
		svc, m := newQueryServiceForTest(t, nil)
		m.reports.EXPECT().UpdateStatus("r1", gomock.Any()).Return(repository.ErrReportNotFound)
		ok, err := svc.UpdateReportStatus(context.Background(), "r1", ReportStatusUpdate{Status: domain.ReportStatusResolved, ReviewedBy: "admin-1"})
		if err != nil || ok {
			t.Fatalf("got ok=%v err=%v, want false,nil", ok, err)
		}
	})

	t.Run("success stamps reviewer and invalidates stats cache", func(t *testing.T) {
		cache := NewInMemoryStatsCacheStore()
		if err := cache.Set(context.Background(), statsCacheNamespace, "dashboard", []byte(`{}`), time.Minute); err != nil {
			t.Fatalf("seed cache: %v", err)
		}

		svc, m := newQueryServiceForTest(t, cache)
		action := "ban"
		m.reports.EXPECT().UpdateStatus("r1", gomock.Any()).DoAndReturn(func(id string, updates map[string]any) error {
			if updates["status"] != domain.ReportStatusResolved {
				t.Errorf("status = %v", updates["status"])
			}
			if updates["reviewed_by"] != "admin-1" {
				t.Errorf("reviewed_by = %v", updates["reviewed_by"])
			}
			if p, _ := updates["action_taken"].(*string); p == nil || *p != "ban" {
				t.Errorf("action_taken = %v", updates["action_taken"])
			}
			if _, ok := updates["reviewed_at"]; !ok {
				t.Error("reviewed_at not set")
			}
			// admin_notes is written even when absent so a review
			// never inherits the previous review's notes.
			notes, ok := updates["admin_notes"]
			if !ok {
				t.Error("admin_notes key missing from update")
			}
			if p, _ := notes.(*string); p != nil {
				t.Errorf("admin_notes = %v, want nil to clear prior notes", notes)
			}
			return nil
		})

		ok, err := svc.UpdateReportStatus(context.Background(), "r1", ReportStatusUpdate{
			Status:      domain.ReportStatusResolved,
			ActionTaken: &action,
			ReviewedBy:  "admin-1",
		})
		if err != nil || !ok {
			t.Fatalf("got ok=%v err=%v, want true,nil", ok, err)
		}
		if _, hit, _ := cache.Get(context.Background(), statsCacheNamespace, "dashboard"); hit {
			t.Error("stats cache not invalidated after moderation write")
		}
	})

	t.Run("infrastructure error surfaces", func(t *testing.T) {
		svc, m := newQueryServiceForTest(t, nil)
		m.reports.EXPECT().UpdateStatus("r1", gomock.Any()).Return(errors.New("db down"))
		ok, err := svc.UpdateReportStatus(context.Background(), "r1", ReportStatusUpdate{Status: domain.ReportStatusResolved, ReviewedBy: "admin-1"})
		if err == nil || ok {
			t.Fatalf("got ok=%v err=%v, want false,error", ok, err)
		}
	})
}

func TestDashboardStatsDeduplicatesActiveUsers(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)

	m.profiles.EXPECT().Count().Return(int64(100), nil)
	// One user on three devices plus one single-device user.
	m.sessions.EXPECT().ActiveUserIDsSince(gomock.Any()).Return([]string{"u1", "u1", "u1", "u2"}, nil)
	m.matches.EXPECT().Count().Return(int64(40), nil)
	m.reports.EXPECT().CountByStatus().Return(domain.ReportStats{Pending: 5, Resolved: 9}, nil)

	stats := svc.DashboardStats(context.Background())
	want := domain.DashboardStats{TotalUsers: 100, ActiveToday: 2, TotalMatches: 40, PendingReports: 5}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

func TestDashboardStatsFailingMemberContributesZero(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)

	m.profiles.EXPECT().Count().Return(int64(0), errors.New("db down"))
	m.sessions.EXPECT().ActiveUserIDsSince(gomock.Any()).Return([]string{"u1"}, nil)
	m.matches.EXPECT().Count().Return(int64(7), nil)
	m.reports.EXPECT().CountByStatus().Return(domain.ReportStats{}, errors.New("db down"))

	stats := svc.DashboardStats(context.Background())
	if stats.TotalUsers != 0 || stats.PendingReports != 0 {
		t.Errorf("failed members should contribute zero: %+v", stats)
	}
	if stats.ActiveToday != 1 || stats.TotalMatches != 7 {
		t.Errorf("healthy members lost: %+v", stats)
	}
}

func TestDashboardStatsServedFromCache(t *testing.T) {
	svc, m := newQueryServiceForTest(t, NewInMemoryStatsCacheStore())

	m.profiles.EXPECT().Count().Return(int64(1), nil).Times(1)
	m.sessions.EXPECT().ActiveUserIDsSince(gomock.Any()).Return(nil, nil).Times(1)
	m.matches.EXPECT().Count().Return(int64(1), nil).Times(1)
	m.reports.EXPECT().CountByStatus().Return(domain.ReportStats{}, nil).Times(1)

	if stats := svc.DashboardStats(context.Background()); stats == nil {
		t.Fatal("first call returned nil")
	}
	// Second call within TTL must not touch the repositories.
	if stats := svc.DashboardStats(context.Background()); stats == nil {
		t.Fatal("second call returned nil")
	}
}

func TestRecentActivityMergesSortsAndTruncates(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	m.profiles.EXPECT().RecentN(recentActivityPerSource).Return([]domain.Profile{
		{ID: "u1", Name: "Alpha", CreatedAt: base.Add(9 * time.Minute)},
		{ID: "u2", Name: "Bravo", CreatedAt: base.Add(1 * time.Minute)},
	}, nil)
	m.matches.EXPECT().RecentN(recentActivityPerSource).Return([]domain.Match{
		{ID: "m1", CreatedAt: base.Add(8 * time.Minute)},
		{ID: "m2", CreatedAt: base.Add(2 * time.Minute)},
	}, nil)
	m.reports.EXPECT().RecentN(recentActivityPerSource).Return([]domain.Report{
		{ID: "r1", Reason: "spam", CreatedAt: base.Add(10 * time.Minute)},
	}, nil)

	events := svc.RecentActivity(context.Background(), 4)
	if len(events) != 4 {
		t.Fatalf("len = %d, want 4 (truncated)", len(events))
	}
	wantOrder := []string{"r1", "u1", "m1", "m2"}
	for i, want := range wantOrder {
		if events[i].SubjectID != want {
			t.Errorf("event %d = %s, want %s", i, events[i].SubjectID, want)
		}
	}
	if events[0].Type != domain.ActivityReport {
		t.Errorf("event 0 type = %s", events[0].Type)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Errorf("events not in descending time order at %d", i)
		}
	}
}

func TestReportStats(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)
	m.reports.EXPECT().CountByStatus().Return(domain.ReportStats{Pending: 1, Reviewing: 2, Resolved: 3, Dismissed: 4}, nil)

	stats := svc.ReportStats(context.Background())
	if stats.Dismissed != 4 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestReportStatsDegradesToZeroOnStoreError(t *testing.T) {
	svc, m := newQueryServiceForTest(t, nil)
	m.reports.EXPECT().CountByStatus().Return(domain.ReportStats{}, errors.New("db down"))

	stats := svc.ReportStats(context.Background())
	if stats == nil {
		t.Fatal("ReportStats returned nil")
	}
	if *stats != (domain.ReportStats{}) {
		t.Errorf("stats = %+v, want all zeroes", *stats)
	}
}
