package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/model"
)

func TestDashboardService_UserDashboard(t *testing.T) {
	users := new(MockUserRepository)
	reports := new(MockReportRepository)
	notifications := new(MockNotificationRepository)
	svc := NewDashboardService(users, reports, notifications, nil, func() time.Time { return fixedNow })
	id := uuid.New()

	users.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, Points: 55}, nil)
	reports.On("CountByStatus", mock.Anything, &id).Return(model.StatusCounts{Total: 11, Pending: 8, Resolved: 3}, nil)
	reports.On("List", mock.Anything, model.ReportFilter{UserID: &id, Page: 1, Limit: 5}).
		Return([]model.Report{{ID: uuid.New()}}, int64(11), nil)
	notifications.On("CountUnread", mock.Anything, id).Return(int64(2), nil)

	dash, err := svc.UserDashboard(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, 55, dash.Points)
	assert.Equal(t, 5, dash.Level)
	assert.Equal(t, 60, dash.NextLevelAt)
	assert.Equal(t, int64(2), dash.UnreadNotifications)
	assert.Len(t, dash.RecentReports, 1)

	unlocked := map[string]bool{}
	for _, a := range dash.Achievements {
		unlocked[a.ID] = a.Unlocked
	}
	assert.True(t, unlocked["active_citizen"])
	assert.True(t, unlocked["problem_solver"])
	assert.True(t, unlocked["rising_star"])
	assert.False(t, unlocked["cleanup_hero"])
}

func TestDashboardService_Statistics(t *testing.T) {
	users := new(MockUserRepository)
	reports := new(MockReportRepository)
	svc := NewDashboardService(users, reports, new(MockNotificationRepository), nil, func() time.Time { return fixedNow })

	reports.On("CountByStatus", mock.Anything, (*uuid.UUID)(nil)).Return(model.StatusCounts{Total: 4, Resolved: 1, Pending: 3}, nil)
	reports.On("CountByColumn", mock.Anything, "category").Return(map[string]int64{"waste": 4}, nil)
	reports.On("CountByColumn", mock.Anything, "severity").Return(map[string]int64{"medium": 4}, nil)
	users.On("CountByRole", mock.Anything).Return(map[model.Role]int64{model.RoleUser: 9, model.RoleAdmin: 1}, nil)
	reports.On("CountSince", mock.Anything, fixedNow.Add(-7*24*time.Hour)).Return(int64(2), nil)
	reports.On("AverageResolutionHours", mock.Anything).Return(36.5, nil)

	_, err := svc.Statistics(context.Background(), model.Actor{UserID: uuid.New(), Role: model.RoleUser})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	stats, err := svc.Statistics(context.Background(), model.Actor{UserID: uuid.New(), Role: model.RoleModerator})
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.ReportsLastWeek)
	assert.InDelta(t, 0.25, stats.ResolutionRate, 1e-9)
	assert.InDelta(t, 36.5, stats.AvgResolutionHours, 1e-9)
	assert.Equal(t, fixedNow, stats.GeneratedAt)
}
