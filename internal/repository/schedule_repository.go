package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"swachhsetu/internal/model"
)

// ScheduleRepository defines garbage schedule persistence operations.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.GarbageSchedule) error
	Update(ctx context.Context, schedule *model.GarbageSchedule) error
	Upsert(ctx context.Context, schedule *model.GarbageSchedule) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.GarbageSchedule, error)
	List(ctx context.Context, filter model.ScheduleFilter) ([]model.GarbageSchedule, error)
	Subscribe(ctx context.Context, scheduleID, userID uuid.UUID) error
	Unsubscribe(ctx context.Context, scheduleID, userID uuid.UUID) error
	SubscribedIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
	SubscriberCounts(ctx context.Context, scheduleIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *model.GarbageSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *model.GarbageSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

// Upsert inserts a schedule or replaces the one with the same area and ward.
func (r *scheduleRepository) Upsert(ctx context.Context, schedule *model.GarbageSchedule) error {
	var existing model.GarbageSchedule
	err := r.db.WithContext(ctx).Where("area = ? AND ward = ?", schedule.Area, schedule.Ward).First(&existing).Error
	switch {
	case err == nil:
		schedule.ID = existing.ID
		schedule.CreatedAt = existing.CreatedAt
		return r.Update(ctx, schedule)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.Create(ctx, schedule)
	default:
		return err
	}
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.GarbageSchedule, error) {
	var schedule model.GarbageSchedule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

// List returns schedules ordered by area, filtered by case-insensitive substring on area.
func (r *scheduleRepository) List(ctx context.Context, filter model.ScheduleFilter) ([]model.GarbageSchedule, error) {
	q := r.db.WithContext(ctx)
	if filter.Area != "" {
		q = q.Where("LOWER(area) LIKE ?", "%"+lower(filter.Area)+"%")
	}
	if filter.Ward != "" {
		q = q.Where("ward = ?", filter.Ward)
	}
	if filter.Zone != "" {
		q = q.Where("zone = ?", filter.Zone)
	}
	var schedules []model.GarbageSchedule
	if err := q.Order("area ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// Subscribe is idempotent: a repeated subscription leaves a single row.
func (r *scheduleRepository) Subscribe(ctx context.Context, scheduleID, userID uuid.UUID) error {
	sub := model.ScheduleSubscription{ScheduleID: scheduleID, UserID: userID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error
}

// Unsubscribe is idempotent: removing an absent subscription is not an error.
func (r *scheduleRepository) Unsubscribe(ctx context.Context, scheduleID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("schedule_id = ? AND user_id = ?", scheduleID, userID).
		Delete(&model.ScheduleSubscription{}).Error
}

func (r *scheduleRepository) SubscribedIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var subs []model.ScheduleSubscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, err
	}
	ids := make(map[uuid.UUID]bool, len(subs))
	for _, s := range subs {
		ids[s.ScheduleID] = true
	}
	return ids, nil
}

func (r *scheduleRepository) SubscriberCounts(ctx context.Context, scheduleIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(scheduleIDs))
	if len(scheduleIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		ScheduleID uuid.UUID
		Count      int64
	}
	if err := r.db.WithContext(ctx).Model(&model.ScheduleSubscription{}).
		Select("schedule_id, COUNT(*) AS count").
		Where("schedule_id IN ?", scheduleIDs).
		Group("schedule_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ScheduleID] = row.Count
	}
	return counts, nil
}
