package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/http/middleware"
	"github.com/squadup/admin-api/internal/http/response"
	"github.com/squadup/admin-api/internal/observability"
	"github.com/squadup/admin-api/internal/repository"
	"github.com/squadup/admin-api/internal/service"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 50
)

var userSortValues = map[string]struct{}{
	repository.ProfileSortNewest: {},
	repository.ProfileSortOldest: {},
	repository.ProfileSortName:   {},
}

type AdminHandler struct {
	queries service.AdminQueryServiceInterface
}

func NewAdminHandler(queries service.AdminQueryServiceInterface) *AdminHandler {
	return &AdminHandler{queries: queries}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAdminListRequestDuration(r.Context(), "users", status, time.Since(start))
	}()

	pageReq, err := parsePageRequest(r)
	if err != nil {
		status = "bad_request"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	if pageReq.Sort != "" {
		if _, ok := userSortValues[pageReq.Sort]; !ok {
			status = "bad_request"
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "sort must be one of newest, oldest, name", nil)
			return
		}
	}
	observability.RecordAdminListPageSize(r.Context(), "users", pageReq.PageSize)

	page := h.queries.ListUsers(r.Context(), pageReq)
	response.JSON(w, r, http.StatusOK, paginatedData(&page))
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing user id", nil)
		return
	}
	user := h.queries.GetUserByID(r.Context(), id)
	if user == nil {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAdminListRequestDuration(r.Context(), "reports", status, time.Since(start))
	}()

	pageReq, err := parsePageRequest(r)
	if err != nil {
		status = "bad_request"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	statusFilter := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if statusFilter != "" && statusFilter != repository.ReportStatusAll && !domain.ValidReportStatus(statusFilter) {
		status = "bad_request"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "unknown report status", map[string]string{"status": statusFilter})
		return
	}
	reasonFilter := strings.TrimSpace(r.URL.Query().Get("type"))
	observability.RecordAdminListPageSize(r.Context(), "reports", pageReq.PageSize)

	page := h.queries.ListReports(r.Context(), pageReq, statusFilter, reasonFilter)
	response.JSON(w, r, http.StatusOK, paginatedData(&page))
}

func (h *AdminHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing report id", nil)
		return
	}
	report := h.queries.GetReportByID(r.Context(), id)
	if report == nil {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "report not found", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, report)
}

type reportStatusRequest struct {
	Status      string  `json:"status"`
	ActionTaken *string `json:"action_taken"`
	AdminNotes  *string `json:"admin_notes"`
}

func (h *AdminHandler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing report id", nil)
		return
	}
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session context", nil)
		return
	}

	var body reportStatusRequest
	if err := decodeJSONBody(r, &body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	body.Status = strings.ToLower(strings.TrimSpace(body.Status))
	if !domain.ValidReportStatus(body.Status) {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "unknown report status", map[string]string{"status": body.Status})
		return
	}

	// ReviewedBy comes from the verified session, never the payload.
	found, err := h.queries.UpdateReportStatus(r.Context(), id, service.ReportStatusUpdate{
		Status:      body.Status,
		ActionTaken: body.ActionTaken,
		AdminNotes:  body.AdminNotes,
		ReviewedBy:  sess.Identity.ID,
	})
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to update report", nil)
		return
	}
	if !found {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "report not found", nil)
		return
	}

	observability.Audit(r, "admin.report.status.updated",
		"report_id", id,
		"status", body.Status,
		"reviewed_by", sess.Identity.ID,
	)
	response.JSON(w, r, http.StatusOK, map[string]string{"id": id, "status": body.Status})
}

func (h *AdminHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.queries.DashboardStats(r.Context()))
}

func (h *AdminHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxActivityLimit {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "limit must be between 1 and 50", nil)
			return
		}
		limit = n
	}
	events := h.queries.RecentActivity(r.Context(), limit)
	if events == nil {
		events = []domain.ActivityEvent{}
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"events": events})
}

func (h *AdminHandler) ReportStats(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.queries.ReportStats(r.Context()))
}
