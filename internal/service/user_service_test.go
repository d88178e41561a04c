package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/model"
)

func TestUserService_Leaderboard(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, nil)
	first, second := uuid.New(), uuid.New()

	repo.On("Leaderboard", mock.Anything, 10).Return([]model.User{
		{ID: first, Name: "Asha", Points: 120, Level: 12},
		{ID: second, Name: "Ravi", Points: 45, Level: 4},
	}, nil)

	entries, err := svc.Leaderboard(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, first, entries[0].UserID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 45, entries[1].Points)
}

func TestUserService_LeaderboardCapsLimit(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Leaderboard", mock.Anything, 100).Return([]model.User{}, nil)

	entries, err := NewUserService(repo, nil).Leaderboard(context.Background(), 1000)

	require.NoError(t, err)
	assert.Empty(t, entries)
	repo.AssertExpectations(t)
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, nil)
	id := uuid.New()
	before := &model.User{ID: id, Name: "Asha", City: "Pune", Points: 15, Level: 1}
	after := &model.User{ID: id, Name: "Asha Patil", City: "Pune", DarkMode: true, Points: 25, Level: 2}

	repo.On("FindByID", mock.Anything, id).Return(before, nil).Once()
	repo.On("UpdateProfile", mock.Anything, id, map[string]interface{}{"name": "Asha Patil", "dark_mode": true}).Return(nil)
	repo.On("FindByID", mock.Anything, id).Return(after, nil).Once()

	name, dark := "  Asha Patil ", true
	updated, err := svc.UpdateProfile(context.Background(), id, ProfileUpdate{Name: &name, DarkMode: &dark})

	require.NoError(t, err)
	assert.Equal(t, "Asha Patil", updated.Name)
	assert.True(t, updated.DarkMode)
	assert.Equal(t, "Pune", updated.City)
	// points awarded concurrently are reported, not reverted
	assert.Equal(t, 25, updated.Points)
	repo.AssertExpectations(t)

	blank := " "
	_, err = svc.UpdateProfile(context.Background(), id, ProfileUpdate{Name: &blank})
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)
}

func TestUserService_UpdateRole(t *testing.T) {
	admin := model.Actor{UserID: uuid.New(), Role: model.RoleAdmin}
	target := uuid.New()

	t.Run("admin promotes a user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UpdateRole", mock.Anything, target, model.RoleModerator).Return(nil)
		repo.On("FindByID", mock.Anything, target).Return(&model.User{ID: target, Role: model.RoleModerator}, nil)

		user, err := NewUserService(repo, nil).UpdateRole(context.Background(), admin, target, model.RoleModerator)

		require.NoError(t, err)
		assert.Equal(t, model.RoleModerator, user.Role)
	})

	t.Run("moderator is forbidden", func(t *testing.T) {
		_, err := NewUserService(new(MockUserRepository), nil).UpdateRole(context.Background(),
			model.Actor{UserID: uuid.New(), Role: model.RoleModerator}, target, model.RoleAdmin)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("admin cannot change own role", func(t *testing.T) {
		_, err := NewUserService(new(MockUserRepository), nil).UpdateRole(context.Background(), admin, admin.UserID, model.RoleUser)
		var validationErr *apperrors.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("UpdateRole", mock.Anything, target, model.RoleUser).Return(gorm.ErrRecordNotFound)

		_, err := NewUserService(repo, nil).UpdateRole(context.Background(), admin, target, model.RoleUser)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
