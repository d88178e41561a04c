package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"swachhsetu/internal/model"
)

// NotificationRepository defines notification persistence operations.
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByEventID(ctx context.Context, eventID string) (*model.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) FindByEventID(ctx context.Context, eventID string) (*model.Notification, error) {
	var notification model.Notification
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByUser returns one page of a user's notifications, newest first.
func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Where("user_id = ?", userID)
		if unreadOnly {
			q = q.Where("`read` = ?", false)
		}
		return q
	}

	var total int64
	if err := base().Model(&model.Notification{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	var notifications []model.Notification
	if err := base().Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead flags one of the user's notifications as read.
// It returns gorm.ErrRecordNotFound when the notification is missing or owned by someone else.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	var notification model.Notification
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).
		First(&notification).Error; err != nil {
		return err
	}
	if notification.Read {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"read": true, "read_at": at}).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).Count(&count).Error
	return count, err
}
