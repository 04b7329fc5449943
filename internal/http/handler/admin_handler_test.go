package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/http/middleware"
	"github.com/squadup/admin-api/internal/identity"
	"github.com/squadup/admin-api/internal/repository"
	"github.com/squadup/admin-api/internal/service"
	"github.com/squadup/admin-api/internal/session"
)

type stubQueryService struct {
	listUsersFn      func(ctx context.Context, req repository.PageRequest) repository.PageResult[service.UserRow]
	getUserFn        func(ctx context.Context, id string) *service.UserRow
	listReportsFn    func(ctx context.Context, req repository.PageRequest, status, reason string) repository.PageResult[service.ReportRow]
	getReportFn      func(ctx context.Context, id string) *service.ReportDetail
	updateStatusFn   func(ctx context.Context, id string, update service.ReportStatusUpdate) (bool, error)
	dashboardFn      func(ctx context.Context) *domain.DashboardStats
	recentActivityFn func(ctx context.Context, limit int) []domain.ActivityEvent
	reportStatsFn    func(ctx context.Context) *domain.ReportStats
}

func (s *stubQueryService) ListUsers(ctx context.Context, req repository.PageRequest) repository.PageResult[service.UserRow] {
	if s.listUsersFn != nil {
		return s.listUsersFn(ctx, req)
	}
	return repository.PageResult[service.UserRow]{Items: []service.UserRow{}}
}

func (s *stubQueryService) GetUserByID(ctx context.Context, id string) *service.UserRow {
	if s.getUserFn != nil {
		return s.getUserFn(ctx, id)
	}
	return nil
}

func (s *stubQueryService) ListReports(ctx context.Context, req repository.PageRequest, status, reason string) repository.PageResult[service.ReportRow] {
	if s.listReportsFn != nil {
		return s.listReportsFn(ctx, req, status, reason)
	}
	return repository.PageResult[service.ReportRow]{Items: []service.ReportRow{}}
}

func (s *stubQueryService) GetReportByID(ctx context.Context, id string) *service.ReportDetail {
	if s.getReportFn != nil {
		return s.getReportFn(ctx, id)
	}
	return nil
}

func (s *stubQueryService) UpdateReportStatus(ctx context.Context, id string, update service.ReportStatusUpdate) (bool, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, id, update)
	}
	return false, errors.New("not implemented")
}

func (s *stubQueryService) DashboardStats(ctx context.Context) *domain.DashboardStats {
	if s.dashboardFn != nil {
		return s.dashboardFn(ctx)
	}
	return &domain.DashboardStats{}
}

func (s *stubQueryService) RecentActivity(ctx context.Context, limit int) []domain.ActivityEvent {
	if s.recentActivityFn != nil {
		return s.recentActivityFn(ctx, limit)
	}
	return nil
}

func (s *stubQueryService) ReportStats(ctx context.Context) *domain.ReportStats {
	if s.reportStatsFn != nil {
		return s.reportStatsFn(ctx)
	}
	return &domain.ReportStats{}
}

func withURLParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func withSession(r *http.Request, userID, role string) *http.Request {
	sess := &session.Session{
		Identity: identity.Identity{ID: userID, Email: "mod@squadup.gg"},
		Admin:    domain.AdminUser{ID: "a-1", UserID: userID, Role: role},
	}
	ctx := context.WithValue(r.Context(), middleware.SessionContextKey, sess)
	return r.WithContext(ctx)
}

func decodeErrCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	errObj, _ := env["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	data, _ := env["data"].(map[string]any)
	return data
}

func TestListUsersPassesPageControls(t *testing.T) {
	var gotReq repository.PageRequest
	h := NewAdminHandler(&stubQueryService{
		listUsersFn: func(_ context.Context, req repository.PageRequest) repository.PageResult[service.UserRow] {
			gotReq = req
			return repository.PageResult[service.UserRow]{
				Items:      []service.UserRow{{Profile: domain.Profile{ID: "u-1", Name: "Ava"}, ReportsAgainst: 2}},
				Page:       req.Page,
				PageSize:   req.PageSize,
				Total:      1,
				TotalPages: 1,
			}
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?page=2&page_size=5&search=ava&sort=name", nil)
	rr := httptest.NewRecorder()
	h.ListUsers(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if gotReq.Page != 2 || gotReq.PageSize != 5 || gotReq.Search != "ava" || gotReq.Sort != "name" {
		t.Fatalf("unexpected page request %+v", gotReq)
	}
	data := decodeData(t, rr)
	items, _ := data["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", data["items"])
	}
	if data["total"] != float64(1) || data["total_pages"] != float64(1) {
		t.Fatalf("unexpected totals %v", data)
	}
}

func TestListUsersRejectsBadControls(t *testing.T) {
	h := NewAdminHandler(&stubQueryService{})

	cases := []string{
		"/api/admin/users?page=0",
		"/api/admin/users?page=abc",
		"/api/admin/users?page_size=0",
		"/api/admin/users?page_size=1000",
		"/api/admin/users?sort=elo",
	}
	for _, target := range cases {
		rr := httptest.NewRecorder()
		h.ListUsers(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
		if code := decodeErrCode(t, rr); code != "BAD_REQUEST" {
			t.Fatalf("%s: unexpected error code %q", target, code)
		}
	}
}

func TestGetUserNotFound(t *testing.T) {
	h := NewAdminHandler(&stubQueryService{
		getUserFn: func(_ context.Context, id string) *service.UserRow {
			return nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/admin/users/u-404", nil), "id", "u-404")
	rr := httptest.NewRecorder()
	h.GetUser(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if code := decodeErrCode(t, rr); code != "NOT_FOUND" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestListReportsValidatesStatusFilter(t *testing.T) {
	var gotStatus, gotReason string
	h := NewAdminHandler(&stubQueryService{
		listReportsFn: func(_ context.Context, req repository.PageRequest, status, reason string) repository.PageResult[service.ReportRow] {
			gotStatus, gotReason = status, reason
			return repository.PageResult[service.ReportRow]{Page: req.Page, PageSize: req.PageSize}
		},
	})

	rr := httptest.NewRecorder()
	h.ListReports(rr, httptest.NewRequest(http.MethodGet, "/api/admin/reports?status=pending&type=harassment", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotStatus != "pending" {
		t.Fatalf("expected status filter to pass through, got %q", gotStatus)
	}
	if gotReason != "harassment" {
		t.Fatalf("expected type filter to pass through, got %q", gotReason)
	}

	rr = httptest.NewRecorder()
	h.ListReports(rr, httptest.NewRequest(http.MethodGet, "/api/admin/reports?status=bogus", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rr.Code)
	}
}

func TestGetReportDetail(t *testing.T) {
	h := NewAdminHandler(&stubQueryService{
		getReportFn: func(_ context.Context, id string) *service.ReportDetail {
			return &service.ReportDetail{
				Report:       domain.Report{ID: id, Reason: "cheating"},
				Reporter:     &domain.Profile{ID: "u-1", Name: "Scout", Region: "eu-west"},
				ReportedUser: &domain.Profile{ID: "u-2", Name: "Smurf", Bio: "gl hf", IsPremium: true},
				PriorReports: 4,
			}
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/admin/reports/r-1", nil), "id", "r-1")
	rr := httptest.NewRecorder()
	h.GetReport(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data := decodeData(t, rr)
	reported, _ := data["reported_user"].(map[string]any)
	// The detail view carries the complete profile, not the list
	// summary.
	if reported["bio"] != "gl hf" || reported["is_premium"] != true {
		t.Fatalf("detail view missing full profile fields: %v", reported)
	}
	reporter, _ := data["reporter"].(map[string]any)
	if reporter["region"] != "eu-west" {
		t.Fatalf("reporter missing full profile fields: %v", reporter)
	}
	if data["prior_reports"] != float64(4) {
		t.Fatalf("prior_reports = %v", data["prior_reports"])
	}
}

func TestGetReportNotFound(t *testing.T) {
	h := NewAdminHandler(&stubQueryService{
		getReportFn: func(context.Context, string) *service.ReportDetail { return nil },
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/admin/reports/r-404", nil), "id", "r-404")
	rr := httptest.NewRecorder()
	h.GetReport(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if code := decodeErrCode(t, rr); code != "NOT_FOUND" {
		t.Fatalf("unexpected error code %q", code)
	}
}

func TestUpdateReportStatusUsesSessionSubject(t *testing.T) {
	var gotUpdate service.ReportStatusUpdate
	h := NewAdminHandler(&stubQueryService{
		updateStatusFn: func(_ context.Context, id string, update service.ReportStatusUpdate) (bool, error) {
			gotUpdate = update
			return true, nil
		},
	})

	body := strings.NewReader(`{"status":"resolved","action_taken":"warning issued","reviewed_by":"attacker-1"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/reports/r-1", body)
	req = withURLParam(req, "id", "r-1")
	req = withSession(req, "admin-user-9", "admin")
	rr := httptest.NewRecorder()
	h.UpdateReportStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if gotUpdate.ReviewedBy != "admin-user-9" {
		t.Fatalf("reviewed_by must come from the session, got %q", gotUpdate.ReviewedBy)
	}
	if gotUpdate.Status != "resolved" {
		t.Fatalf("unexpected status %q", gotUpdate.Status)
	}
	if gotUpdate.ActionTaken == nil || *gotUpdate.ActionTaken != "warning issued" {
		t.Fatalf("unexpected action taken %v", gotUpdate.ActionTaken)
	}
}

func TestUpdateReportStatusRejectsInvalidStatus(t *testing.T) {
	h := NewAdminHandler(&stubQueryService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/reports/r-1", strings.NewReader(`{"status":"escalated"}`))
	req = withURLParam(req, "id", "r-1")
	req = withSession(req, "admin-user-9", "admin")
	rr := httptest.NewRecorder()
	h.UpdateReportStatus(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUpdateReportStatusNotFound(t *testing.T) {
	h := NewAdminHandler(&stubQueryService{
		updateStatusFn: func(context.Context, string, service.ReportStatusUpdate) (bool, error) {
			return false, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/reports/r-404", strings.NewReader(`{"status":"dismissed"}`))
	req = withURLParam(req, "id", "r-404")
	req = withSession(req, "admin-user-9", "admin")
	rr := httptest.NewRecorder()
	h.UpdateReportStatus(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUpdateReportStatusWithoutSession(t *testing.T) {
	h := NewAdminHandler(&stubQueryService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/reports/r-1", strings.NewReader(`{"status":"resolved"}`))
	req = withURLParam(req, "id", "r-1")
	rr := httptest.NewRecorder()
	h.UpdateReportStatus(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestDashboardStats(t *testing.T) {
	h := NewAdminHandler(&stubQueryService{
		dashboardFn: func(context.Context) *domain.DashboardStats {
			return &domain.DashboardStats{TotalUsers: 120, ActiveToday: 14, TotalMatches: 300, PendingReports: 3}
		},
	})

	rr := httptest.NewRecorder()
	h.DashboardStats(rr, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data := decodeData(t, rr)
	if data["total_users"] != float64(120) || data["pending_reports"] != float64(3) {
		t.Fatalf("unexpected stats %v", data)
	}
}

func TestRecentActivityLimitValidation(t *testing.T) {
	var gotLimit int
	h := NewAdminHandler(&stubQueryService{
		recentActivityFn: func(_ context.Context, limit int) []domain.ActivityEvent {
			gotLimit = limit
			return nil
		},
	})

	rr := httptest.NewRecorder()
	h.RecentActivity(rr, httptest.NewRequest(http.MethodGet, "/api/admin/activity?limit=25", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotLimit != 25 {
		t.Fatalf("expected limit 25, got %d", gotLimit)
	}
	data := decodeData(t, rr)
	if events, ok := data["events"].([]any); !ok || len(events) != 0 {
		t.Fatalf("expected empty events array, got %v", data["events"])
	}

	for _, target := range []string{"/api/admin/activity?limit=0", "/api/admin/activity?limit=99", "/api/admin/activity?limit=x"} {
		rr := httptest.NewRecorder()
		h.RecentActivity(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
	}
}

func TestReportStats(t *testing.T) {
	h := NewAdminHandler(&stubQueryService{
		reportStatsFn: func(context.Context) *domain.ReportStats {
			return &domain.ReportStats{Pending: 2, Resolved: 7}
		},
	})

	rr := httptest.NewRecorder()
	h.ReportStats(rr, httptest.NewRequest(http.MethodGet, "/api/admin/reports/stats", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data := decodeData(t, rr)
	if data["pending"] != float64(2) || data["resolved"] != float64(7) {
		t.Fatalf("unexpected report stats %v", data)
	}
}
