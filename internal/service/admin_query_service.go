package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/squadup/admin-api/internal/domain"
	"github.com/squadup/admin-api/internal/observability"
	"github.com/squadup/admin-api/internal/repository"
)

const (
	statsCacheNamespace = "admin.stats"

	// Each activity source contributes at most this many events before
	// the merged feed is sorted and truncated. A burst in one source
	// can therefore crowd out older events from the others.
	recentActivityPerSource = 5

	activeUserWindow = 24 * time.Hour
)

type AdminQueryService struct {
	profiles repository.ProfileRepository
	reports  repository.ReportRepository
	matches  repository.MatchRepository
	sessions repository.UserSessionRepository
	cache    StatsCacheStore
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewAdminQueryService(
	profiles repository.ProfileRepository,
	reports repository.ReportRepository,
	matches repository.MatchRepository,
	sessions repository.UserSessionRepository,
	cache StatsCacheStore,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *AdminQueryService {
	if cache == nil {
		cache = NewNoopStatsCacheStore()
	}
	return &AdminQueryService{
		profiles: profiles,
		reports:  reports,
		matches:  matches,
		sessions: sessions,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ListUsers pages through profiles and enriches each row with the
// number of reports filed against that user. The count query is
// batched over the page's ids, not issued per row. Store failures
// degrade to an empty page.
func (s *AdminQueryService) ListUsers(ctx context.Context, req repository.PageRequest) repository.PageResult[UserRow] {
	page, err := s.profiles.ListPaged(req)
	if err != nil {
		s.logger.Warn("list profiles failed", slog.String("kind", "data"), slog.String("error", err.Error()))
		return emptyPage[UserRow](req)
	}

	ids := make([]string, 0, len(page.Items))
	for _, p := range page.Items {
		ids = append(ids, p.ID)
	}
	counts, err := s.reports.CountByReportedUsers(ids)
	if err != nil {
		// Enrichment only; the page still renders with zero counts.
		s.logger.Warn("report counts for page failed", slog.String("kind", "data"), slog.String("error", err.Error()))
		counts = nil
	}

	rows := make([]UserRow, 0, len(page.Items))
	for _, p := range page.Items {
		rows = append(rows, UserRow{Profile: p, ReportsAgainst: counts[p.ID]})
	}
	return repository.PageResult[UserRow]{
		Items:      rows,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

// GetUserByID returns nil for a missing user and for any store
// failure; the two are indistinguishable to the caller.
func (s *AdminQueryService) GetUserByID(ctx context.Context, id string) *UserRow {
	profile, err := s.profiles.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			s.logger.Debug("user lookup missed", slog.String("user_id", id))
		} else {
			s.logger.Warn("user lookup failed", slog.String("kind", "data"), slog.String("error", err.Error()))
		}
		return nil
	}
	counts, err := s.reports.CountByReportedUsers([]string{id})
	if err != nil {
		s.logger.Warn("report count for user failed", slog.String("kind", "data"), slog.String("error", err.Error()))
		counts = nil
	}
	return &UserRow{Profile: *profile, ReportsAgainst: counts[id]}
}

// ListReports pages reports and attaches minimal reporter and
// reported projections in a second batched fetch, deduping shared
// ids. Store failures degrade to an empty page; a failed profile
// batch leaves the rows with nil parties.
func (s *AdminQueryService) ListReports(ctx context.Context, req repository.PageRequest, status, reason string) repository.PageResult[ReportRow] {
	page, err := s.reports.ListPaged(req, status, reason)
	if err != nil {
		s.logger.Warn("list reports failed", slog.String("kind", "data"), slog.String("error", err.Error()))
		return emptyPage[ReportRow](req)
	}

	seen := make(map[string]struct{}, len(page.Items)*2)
	ids := make([]string, 0, len(page.Items)*2)
	for _, rep := range page.Items {
		for _, id := range []string{rep.ReporterID, rep.ReportedUserID} {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	profiles := s.profilesByID(ids)
	rows := make([]ReportRow, 0, len(page.Items))
	for _, rep := range page.Items {
		rows = append(rows, ReportRow{
			Report:       rep,
			Reporter:     summaryOf(profiles[rep.ReporterID]),
			ReportedUser: summaryOf(profiles[rep.ReportedUserID]),
		})
	}
	return repository.PageResult[ReportRow]{
		Items:      rows,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

// GetReportByID returns the full detail view: complete profiles for
// both parties and the all-time report count against the reported
// user. Nil on a missing report and on any store failure.
func (s *AdminQueryService) GetReportByID(ctx context.Context, id string) *ReportDetail {
	report, err := s.reports.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			s.logger.Debug("report lookup missed", slog.String("report_id", id))
		} else {
			s.logger.Warn("report lookup failed", slog.String("kind", "data"), slog.String("error", err.Error()))
		}
		return nil
	}

	profiles := s.profilesByID([]string{report.ReporterID, report.ReportedUserID})
	counts, err := s.reports.CountByReportedUsers([]string{report.ReportedUserID})
	if err != nil {
		s.logger.Warn("prior report count failed", slog.String("kind", "data"), slog.String("error", err.Error()))
		counts = nil
	}
	return &ReportDetail{
		Report:       *report,
		Reporter:     profiles[report.ReporterID],
		ReportedUser: profiles[report.ReportedUserID],
		PriorReports: counts[report.ReportedUserID],
	}
}

func (s *AdminQueryService) profilesByID(ids []string) map[string]*domain.Profile {
	profiles, err := s.profiles.FindByIDs(ids)
	if err != nil {
		s.logger.Warn("report profile batch failed", slog.String("kind", "data"), slog.String("error", err.Error()))
		return nil
	}
	byID := make(map[string]*domain.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}
	return byID
}

func summaryOf(p *domain.Profile) *domain.ProfileSummary {
	if p == nil {
		return nil
	}
	summary := p.Summary()
	return &summary
}

func emptyPage[T any](req repository.PageRequest) repository.PageResult[T] {
	return repository.PageResult[T]{Items: []T{}, Page: req.Page, PageSize: req.PageSize}
}

// UpdateReportStatus applies a moderation decision. The boolean tells
// the caller whether the report existed; infrastructure failures come
// back as errors.
func (s *AdminQueryService) UpdateReportStatus(ctx context.Context, id string, update ReportStatusUpdate) (bool, error) {
	if !domain.ValidReportStatus(update.Status) {
		observability.RecordReportModeration(ctx, update.Status, "invalid")
		return false, nil
	}

	// Both fields are written unconditionally: a review submitted
	// without notes or action clears whatever the previous review
	// left behind.
	now := time.Now().UTC()
	updates := map[string]any{
		"status":       update.Status,
		"action_taken": update.ActionTaken,
		"admin_notes":  update.AdminNotes,
		"reviewed_by":  update.ReviewedBy,
		"reviewed_at":  now,
	}

	if err := s.reports.UpdateStatus(id, updates); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			observability.RecordReportModeration(ctx, update.Status, "not_found")
			return false, nil
		}
		observability.RecordReportModeration(ctx, update.Status, "error")
		return false, err
	}

	observability.RecordReportModeration(ctx, update.Status, "success")
	if err := s.cache.InvalidateNamespace(ctx, statsCacheNamespace); err != nil {
		s.logger.Warn("stats cache invalidation failed", slog.String("error", err.Error()))
	}
	return true, nil
}

// DashboardStats aggregates the four headline numbers concurrently.
// A failing member logs and contributes zero rather than failing the
// whole dashboard.
func (s *AdminQueryService) DashboardStats(ctx context.Context) *domain.DashboardStats {
	if cached, ok := s.cacheGet(ctx, "dashboard", &domain.DashboardStats{}); ok {
		return cached.(*domain.DashboardStats)
	}

	var stats domain.DashboardStats
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.profiles.Count()
		if err != nil {
			s.logger.Warn("dashboard total users unavailable", slog.String("error", err.Error()))
			return nil
		}
		stats.TotalUsers = total
		return nil
	})
	g.Go(func() error {
		ids, err := s.sessions.ActiveUserIDsSince(time.Now().UTC().Add(-activeUserWindow))
		if err != nil {
			s.logger.Warn("dashboard active users unavailable", slog.String("error", err.Error()))
			return nil
		}
		distinct := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			distinct[id] = struct{}{}
		}
		stats.ActiveToday = int64(len(distinct))
		return nil
	})
	g.Go(func() error {
		total, err := s.matches.Count()
		if err != nil {
			s.logger.Warn("dashboard match count unavailable", slog.String("error", err.Error()))
			return nil
		}
		stats.TotalMatches = total
		return nil
	})
	g.Go(func() error {
		byStatus, err := s.reports.CountByStatus()
		if err != nil {
			s.logger.Warn("dashboard pending reports unavailable", slog.String("error", err.Error()))
			return nil
		}
		stats.PendingReports = byStatus.Pending
		return nil
	})
	_ = g.Wait()

	s.cacheSet(ctx, "dashboard", &stats)
	return &stats
}

// RecentActivity merges the newest signups, matches, and reports into
// one feed, newest first.
func (s *AdminQueryService) RecentActivity(ctx context.Context, limit int) []domain.ActivityEvent {
	if limit <= 0 {
		limit = 10
	}
	cacheKey := fmt.Sprintf("activity:%d", limit)
	var cachedEvents []domain.ActivityEvent
	if cached, ok := s.cacheGet(ctx, cacheKey, &cachedEvents); ok {
		return *cached.(*[]domain.ActivityEvent)
	}

	var (
		signups []domain.Profile
		matches []domain.Match
		reports []domain.Report
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		signups, err = s.profiles.RecentN(recentActivityPerSource)
		if err != nil {
			s.logger.Warn("recent signups unavailable", slog.String("error", err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.matches.RecentN(recentActivityPerSource)
		if err != nil {
			s.logger.Warn("recent matches unavailable", slog.String("error", err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reports, err = s.reports.RecentN(recentActivityPerSource)
		if err != nil {
			s.logger.Warn("recent reports unavailable", slog.String("error", err.Error()))
		}
		return nil
	})
	_ = g.Wait()

	events := make([]domain.ActivityEvent, 0, len(signups)+len(matches)+len(reports))
	for _, p := range signups {
		events = append(events, domain.ActivityEvent{
			Type:        domain.ActivitySignup,
			Description: fmt.Sprintf("%s joined", p.Name),
			Timestamp:   p.CreatedAt,
			SubjectID:   p.ID,
		})
	}
	for _, m := range matches {
		events = append(events, domain.ActivityEvent{
			Type:        domain.ActivityMatch,
			Description: "New match created",
			Timestamp:   m.CreatedAt,
			SubjectID:   m.ID,
		})
	}
	for _, rep := range reports {
		events = append(events, domain.ActivityEvent{
			Type:        domain.ActivityReport,
			Description: fmt.Sprintf("%s report filed", rep.Reason),
			Timestamp:   rep.CreatedAt,
			SubjectID:   rep.ID,
		})
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if len(events) > limit {
		events = events[:limit]
	}

	s.cacheSet(ctx, cacheKey, &events)
	return events
}

// ReportStats degrades to all-zero counts when the store is
// unreachable, like the other reads.
func (s *AdminQueryService) ReportStats(ctx context.Context) *domain.ReportStats {
	if cached, ok := s.cacheGet(ctx, "report_totals", &domain.ReportStats{}); ok {
		return cached.(*domain.ReportStats)
	}
	stats, err := s.reports.CountByStatus()
	if err != nil {
		s.logger.Warn("report status counts failed", slog.String("kind", "data"), slog.String("error", err.Error()))
		return &domain.ReportStats{}
	}
	s.cacheSet(ctx, "report_totals", &stats)
	return &stats
}

func (s *AdminQueryService) cacheGet(ctx context.Context, key string, out any) (any, bool) {
	payload, ok, err := s.cache.Get(ctx, statsCacheNamespace, key)
	if err != nil {
		s.logger.Warn("stats cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		observability.RecordStatsCacheEvent(ctx, key, "error")
		return nil, false
	}
	if !ok {
		observability.RecordStatsCacheEvent(ctx, key, "miss")
		return nil, false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.Warn("stats cache payload corrupt", slog.String("key", key), slog.String("error", err.Error()))
		observability.RecordStatsCacheEvent(ctx, key, "error")
		return nil, false
	}
	observability.RecordStatsCacheEvent(ctx, key, "hit")
	return out, true
}

func (s *AdminQueryService) cacheSet(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("stats cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Set(ctx, statsCacheNamespace, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("stats cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
