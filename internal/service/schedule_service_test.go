package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/model"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func scheduleWith(slots model.WeeklySlots) model.GarbageSchedule {
	return model.GarbageSchedule{
		ID:    uuid.New(),
		Area:  "Kothrud",
		Ward:  "12",
		Slots: datatypes.NewJSONType(slots),
	}
}

func TestScheduleService_TodayUsesServiceTimezone(t *testing.T) {
	repo := new(MockScheduleRepository)
	// Sunday 20:00 UTC is already Monday in IST.
	clock := func() time.Time { return time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC) }
	svc := NewScheduleService(repo, clock, ist)
	userID := uuid.New()

	monday := scheduleWith(model.WeeklySlots{"monday": {{StartTime: "07:00", EndTime: "09:00", WasteType: "wet"}}})
	sunday := scheduleWith(model.WeeklySlots{"sunday": {{StartTime: "07:00", EndTime: "09:00", WasteType: "dry"}}})
	filter := model.ScheduleFilter{Area: "kothrud"}

	repo.On("List", mock.Anything, filter).Return([]model.GarbageSchedule{monday, sunday}, nil)
	repo.On("SubscribedIDs", mock.Anything, userID).Return(map[uuid.UUID]bool{monday.ID: true}, nil)

	today, err := svc.Today(context.Background(), &userID, filter)

	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, monday.ID, today[0].ScheduleID)
	assert.Equal(t, "monday", today[0].Day)
	assert.True(t, today[0].Subscribed)
	assert.NotNil(t, today[0].Vehicles)
}

func TestScheduleService_TodayAnonymous(t *testing.T) {
	repo := new(MockScheduleRepository)
	clock := func() time.Time { return time.Date(2024, 3, 11, 4, 0, 0, 0, time.UTC) }
	svc := NewScheduleService(repo, clock, ist)

	s := scheduleWith(model.WeeklySlots{"monday": {{StartTime: "07:00", EndTime: "09:00", WasteType: "wet"}}})
	repo.On("List", mock.Anything, model.ScheduleFilter{}).Return([]model.GarbageSchedule{s}, nil)

	today, err := svc.Today(context.Background(), nil, model.ScheduleFilter{})

	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.False(t, today[0].Subscribed)
	repo.AssertNotCalled(t, "SubscribedIDs", mock.Anything, mock.Anything)
}

func TestScheduleService_Subscribe(t *testing.T) {
	repo := new(MockScheduleRepository)
	svc := NewScheduleService(repo, nil, nil)
	userID, scheduleID, missing := uuid.New(), uuid.New(), uuid.New()

	repo.On("FindByID", mock.Anything, scheduleID).Return(&model.GarbageSchedule{ID: scheduleID}, nil)
	repo.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)
	repo.On("Subscribe", mock.Anything, scheduleID, userID).Return(nil).Twice()

	require.NoError(t, svc.Subscribe(context.Background(), userID, scheduleID))
	require.NoError(t, svc.Subscribe(context.Background(), userID, scheduleID))
	assert.ErrorIs(t, svc.Subscribe(context.Background(), userID, missing), apperrors.ErrScheduleNotFound)
	repo.AssertExpectations(t)
}

func TestScheduleService_Create(t *testing.T) {
	admin := model.Actor{UserID: uuid.New(), Role: model.RoleAdmin}

	tests := []struct {
		name  string
		actor model.Actor
		input ScheduleInput
		err   error
		field string
	}{
		{
			name:  "citizen forbidden",
			actor: model.Actor{UserID: uuid.New(), Role: model.RoleUser},
			input: ScheduleInput{Area: "Kothrud"},
			err:   apperrors.ErrForbidden,
		},
		{
			name:  "missing area",
			actor: admin,
			input: ScheduleInput{Area: " "},
			field: "area",
		},
		{
			name:  "unknown weekday",
			actor: admin,
			input: ScheduleInput{Area: "Kothrud", Slots: model.WeeklySlots{"funday": {{StartTime: "07:00", EndTime: "08:00", WasteType: "wet"}}}},
			field: "slots",
		},
		{
			name:  "end before start",
			actor: admin,
			input: ScheduleInput{Area: "Kothrud", Slots: model.WeeklySlots{"monday": {{StartTime: "09:00", EndTime: "08:00", WasteType: "wet"}}}},
			field: "slots",
		},
		{
			name:  "bad time format",
			actor: admin,
			input: ScheduleInput{Area: "Kothrud", Slots: model.WeeklySlots{"monday": {{StartTime: "7am", EndTime: "08:00", WasteType: "wet"}}}},
			field: "slots",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockScheduleRepository)
			_, err := NewScheduleService(repo, nil, nil).Create(context.Background(), tt.actor, tt.input)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				var validationErr *apperrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.field, validationErr.Field)
			}
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("normalizes weekday keys", func(t *testing.T) {
		repo := new(MockScheduleRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.GarbageSchedule")).Return(nil)

		schedule, err := NewScheduleService(repo, nil, nil).Create(context.Background(), admin, ScheduleInput{
			Area:  " Kothrud ",
			Slots: model.WeeklySlots{"Monday": {{StartTime: "07:00", EndTime: "09:00", WasteType: "wet"}}},
		})

		require.NoError(t, err)
		assert.Equal(t, "Kothrud", schedule.Area)
		assert.Len(t, schedule.SlotsOn("monday"), 1)
	})
}

func TestScheduleService_ListAttachesSubscriberCounts(t *testing.T) {
	repo := new(MockScheduleRepository)
	svc := NewScheduleService(repo, nil, nil)
	a, b := scheduleWith(nil), scheduleWith(nil)

	repo.On("List", mock.Anything, model.ScheduleFilter{}).Return([]model.GarbageSchedule{a, b}, nil)
	repo.On("SubscriberCounts", mock.Anything, []uuid.UUID{a.ID, b.ID}).Return(map[uuid.UUID]int64{a.ID: 3}, nil)

	schedules, err := svc.List(context.Background(), model.ScheduleFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(3), schedules[0].SubscriberCount)
	assert.Zero(t, schedules[1].SubscriberCount)
}
