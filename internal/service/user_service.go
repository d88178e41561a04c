package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"swachhsetu/internal/cache"
	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/model"
	"swachhsetu/internal/repository"
)

const (
	leaderboardCacheTTL     = 30 * time.Second
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	DarkMode *bool
	Street   *string
	City     *string
	State    *string
	Pincode  *string
}

// UserService exposes profile, leaderboard and user administration operations.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.User, error)
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	ListUsers(ctx context.Context, actor model.Actor, page, limit int) (*Page[model.User], error)
	UpdateRole(ctx context.Context, actor model.Actor, id uuid.UUID, role model.Role) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func leaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard:%d", limit)
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile changes only the supplied profile fields and returns the fresh row.
func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*model.User, error) {
	fields := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "cannot be empty")
		}
		fields["name"] = name
	}
	if update.DarkMode != nil {
		fields["dark_mode"] = *update.DarkMode
	}
	if update.Street != nil {
		fields["street"] = strings.TrimSpace(*update.Street)
	}
	if update.City != nil {
		fields["city"] = strings.TrimSpace(*update.City)
	}
	if update.State != nil {
		fields["state"] = strings.TrimSpace(*update.State)
	}
	if update.Pincode != nil {
		fields["pincode"] = strings.TrimSpace(*update.Pincode)
	}

	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// Leaderboard ranks citizens by points. Results are cached briefly.
func (s *userService) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	if data, _ := s.cache.Get(ctx, leaderboardKey(limit)); data != nil {
		var cached []model.LeaderboardEntry
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	users, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	entries := make([]model.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, model.LeaderboardEntry{
			Rank:   i + 1,
			UserID: u.ID,
			Name:   u.Name,
			Points: u.Points,
			Level:  u.Level,
		})
	}

	if payload, err := json.Marshal(entries); err == nil {
		_ = s.cache.Set(ctx, leaderboardKey(limit), payload, leaderboardCacheTTL)
	}
	return entries, nil
}

func (s *userService) ListUsers(ctx context.Context, actor model.Actor, page, limit int) (*Page[model.User], error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	page, limit = normalizePage(page, limit)
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return &Page[model.User]{Items: users, Total: total, Page: page, Limit: limit}, nil
}

// UpdateRole changes another user's role. Admins cannot change their own role.
func (s *userService) UpdateRole(ctx context.Context, actor model.Actor, id uuid.UUID, role model.Role) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("role", "must be one of user, moderator, admin")
	}
	if id == actor.UserID {
		return nil, apperrors.NewValidationError("role", "you cannot change your own role")
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return s.GetUser(ctx, id)
}
