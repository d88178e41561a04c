package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"swachhsetu/internal/cache"
	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/gamification"
	"swachhsetu/internal/model"
	"swachhsetu/internal/repository"
)

const (
	statisticsCacheKey = "stats:admin"
	statisticsCacheTTL = 30 * time.Second
	recentReportsLimit = 5
	statisticsWindow   = 7 * 24 * time.Hour
)

// UserDashboard is a citizen's personal overview.
type UserDashboard struct {
	User                *model.User                `json:"user"`
	Points              int                        `json:"points"`
	Level               int                        `json:"level"`
	NextLevelAt         int                        `json:"nextLevelAt"`
	Reports             model.StatusCounts         `json:"reports"`
	Achievements        []gamification.Achievement `json:"achievements"`
	RecentReports       []model.Report             `json:"recentReports"`
	UnreadNotifications int64                      `json:"unreadNotifications"`
}

// Statistics is the admin overview.
type Statistics struct {
	Reports            model.StatusCounts   `json:"reports"`
	ByCategory         map[string]int64     `json:"byCategory"`
	BySeverity         map[string]int64     `json:"bySeverity"`
	UsersByRole        map[model.Role]int64 `json:"usersByRole"`
	TotalUsers         int64                `json:"totalUsers"`
	ReportsLastWeek    int64                `json:"reportsLastWeek"`
	ResolutionRate     float64              `json:"resolutionRate"`
	AvgResolutionHours float64              `json:"avgResolutionHours"`
	GeneratedAt        time.Time            `json:"generatedAt"`
}

// DashboardService aggregates read models for dashboards.
type DashboardService interface {
	UserDashboard(ctx context.Context, userID uuid.UUID) (*UserDashboard, error)
	Statistics(ctx context.Context, actor model.Actor) (*Statistics, error)
}

type dashboardService struct {
	users         repository.UserRepository
	reports       repository.ReportRepository
	notifications repository.NotificationRepository
	cache         *cache.Client
	clock         Clock
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(
	users repository.UserRepository,
	reports repository.ReportRepository,
	notifications repository.NotificationRepository,
	cache *cache.Client,
	clock Clock,
) DashboardService {
	if clock == nil {
		clock = SystemClock
	}
	return &dashboardService{users: users, reports: reports, notifications: notifications, cache: cache, clock: clock}
}

func (s *dashboardService) UserDashboard(ctx context.Context, userID uuid.UUID) (*UserDashboard, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	counts, err := s.reports.CountByStatus(ctx, &userID)
	if err != nil {
		return nil, fmt.Errorf("count reports: %w", err)
	}
	recent, _, err := s.reports.List(ctx, model.ReportFilter{UserID: &userID, Page: 1, Limit: recentReportsLimit})
	if err != nil {
		return nil, fmt.Errorf("recent reports: %w", err)
	}
	if recent == nil {
		recent = []model.Report{}
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	return &UserDashboard{
		User:        user,
		Points:      user.Points,
		Level:       gamification.Level(user.Points),
		NextLevelAt: gamification.NextLevelAt(user.Points),
		Reports:     counts,
		Achievements: gamification.Achievements(gamification.Stats{
			TotalReports:    counts.Total,
			ResolvedReports: counts.Resolved,
			Points:          user.Points,
		}),
		RecentReports:       recent,
		UnreadNotifications: unread,
	}, nil
}

// Statistics returns the staff overview, served from cache when fresh.
func (s *dashboardService) Statistics(ctx context.Context, actor model.Actor) (*Statistics, error) {
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	if data, _ := s.cache.Get(ctx, statisticsCacheKey); data != nil {
		var cached Statistics
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.computeStatistics(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, statisticsCacheKey, payload, statisticsCacheTTL)
	}
	return stats, nil
}

func (s *dashboardService) computeStatistics(ctx context.Context) (*Statistics, error) {
	now := s.clock()
	counts, err := s.reports.CountByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	byCategory, err := s.reports.CountByColumn(ctx, "category")
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	bySeverity, err := s.reports.CountByColumn(ctx, "severity")
	if err != nil {
		return nil, fmt.Errorf("count by severity: %w", err)
	}
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	lastWeek, err := s.reports.CountSince(ctx, now.Add(-statisticsWindow))
	if err != nil {
		return nil, fmt.Errorf("count recent: %w", err)
	}
	avgHours, err := s.reports.AverageResolutionHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("average resolution: %w", err)
	}

	var totalUsers int64
	for _, n := range byRole {
		totalUsers += n
	}
	var rate float64
	if counts.Total > 0 {
		rate = float64(counts.Resolved) / float64(counts.Total)
	}

	return &Statistics{
		Reports:            counts,
		ByCategory:         byCategory,
		BySeverity:         bySeverity,
		UsersByRole:        byRole,
		TotalUsers:         totalUsers,
		ReportsLastWeek:    lastWeek,
		ResolutionRate:     rate,
		AvgResolutionHours: avgHours,
		GeneratedAt:        now,
	}, nil
}
