package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"swachhsetu/internal/cache"
	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/model"
	"swachhsetu/internal/realtime"
	"swachhsetu/internal/repository"
)

const (
	notifyClaimTTL  = 24 * time.Hour
	maxEventIDBytes = 64
)

var eventIDNamespace = uuid.MustParse("6f1d1c55-6f1e-4b6e-9a43-0d6c1f2b5a11")

// NotificationService turns domain events into stored notifications and live pushes.
type NotificationService interface {
	Notify(ctx context.Context, userID uuid.UUID, event model.Event) (*model.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) (*Page[model.Notification], error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo  repository.NotificationRepository
	cache *cache.Client
	hub   realtime.Emitter
	clock Clock
	log   zerolog.Logger
}

// NewNotificationService creates a notification service.
func NewNotificationService(
	repo repository.NotificationRepository,
	cache *cache.Client,
	hub realtime.Emitter,
	clock Clock,
	log zerolog.Logger,
) NotificationService {
	if clock == nil {
		clock = SystemClock
	}
	return &notificationService{repo: repo, cache: cache, hub: hub, clock: clock, log: log}
}

// normalizeEventID keeps ids within the column size. Long ids are replaced
// by a deterministic UUID so retries still collide.
func normalizeEventID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	if len(id) > maxEventIDBytes {
		return uuid.NewSHA1(eventIDNamespace, []byte(id)).String()
	}
	return id
}

// Notify persists event for userID and pushes it if the user is connected.
// Delivering an event id that was already stored returns the stored record
// and pushes nothing.
func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, event model.Event) (*model.Notification, error) {
	event.ID = normalizeEventID(event.ID)

	if !s.cache.SetNX(ctx, "notify:"+event.ID, []byte(userID.String()), notifyClaimTTL) {
		if existing, err := s.repo.FindByEventID(ctx, event.ID); err == nil {
			return existing, nil
		}
	}

	notification := model.NotificationFromEvent(userID, event)
	if err := s.repo.Create(ctx, notification); err != nil {
		if existing, findErr := s.repo.FindByEventID(ctx, event.ID); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create notification: %w", err)
	}

	if s.hub != nil && s.hub.IsOnline(userID) {
		s.hub.ToUser(userID, realtime.EventNotification, notification)
	}
	s.log.Debug().
		Str("user_id", userID.String()).
		Str("event_id", event.ID).
		Str("type", string(event.Type)).
		Msg("notification stored")
	return notification, nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) (*Page[model.Notification], error) {
	page, limit = normalizePage(page, limit)
	items, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if items == nil {
		items = []model.Notification{}
	}
	return &Page[model.Notification]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// MarkRead marks one notification read. Notifications owned by someone else
// are reported as not found.
func (s *notificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, id, s.clock()); err != nil {
		return notFound(err, apperrors.ErrNotificationNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.clock())
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
