package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/model"
	"swachhsetu/internal/repository"
)

const slotTimeLayout = "15:04"

// ScheduleInput creates or replaces a garbage schedule.
type ScheduleInput struct {
	Area     string
	Ward     string
	Zone     string
	Route    string
	Slots    model.WeeklySlots
	Vehicles []model.Vehicle
}

// ScheduleService serves garbage collection timetables and subscriptions.
type ScheduleService interface {
	List(ctx context.Context, filter model.ScheduleFilter) ([]model.GarbageSchedule, error)
	Get(ctx context.Context, id uuid.UUID) (*model.GarbageSchedule, error)
	Today(ctx context.Context, userID *uuid.UUID, filter model.ScheduleFilter) ([]model.TodaySchedule, error)
	Subscribe(ctx context.Context, userID, scheduleID uuid.UUID) error
	Unsubscribe(ctx context.Context, userID, scheduleID uuid.UUID) error
	Create(ctx context.Context, actor model.Actor, input ScheduleInput) (*model.GarbageSchedule, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, input ScheduleInput) (*model.GarbageSchedule, error)
	Import(ctx context.Context, inputs []ScheduleInput) (int, error)
}

type scheduleService struct {
	repo  repository.ScheduleRepository
	clock Clock
	loc   *time.Location
}

// NewScheduleService creates a schedule service. "Today" is evaluated in loc.
func NewScheduleService(repo repository.ScheduleRepository, clock Clock, loc *time.Location) ScheduleService {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &scheduleService{repo: repo, clock: clock, loc: loc}
}

func (s *scheduleService) List(ctx context.Context, filter model.ScheduleFilter) ([]model.GarbageSchedule, error) {
	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	if schedules == nil {
		return []model.GarbageSchedule{}, nil
	}

	ids := make([]uuid.UUID, len(schedules))
	for i := range schedules {
		ids[i] = schedules[i].ID
	}
	counts, err := s.repo.SubscriberCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	for i := range schedules {
		schedules[i].SubscriberCount = counts[schedules[i].ID]
	}
	return schedules, nil
}

func (s *scheduleService) Get(ctx context.Context, id uuid.UUID) (*model.GarbageSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrScheduleNotFound)
	}
	counts, err := s.repo.SubscriberCounts(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	schedule.SubscriberCount = counts[id]
	return schedule, nil
}

// Today lists the schedules matching filter that have pickups today in the
// service timezone. Subscribed is set when userID is subscribed.
func (s *scheduleService) Today(ctx context.Context, userID *uuid.UUID, filter model.ScheduleFilter) ([]model.TodaySchedule, error) {
	day := model.WeekdayKey(s.clock().In(s.loc))

	schedules, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	subscribed := map[uuid.UUID]bool{}
	if userID != nil {
		if subscribed, err = s.repo.SubscribedIDs(ctx, *userID); err != nil {
			return nil, fmt.Errorf("load subscriptions: %w", err)
		}
	}

	today := make([]model.TodaySchedule, 0, len(schedules))
	for i := range schedules {
		sc := &schedules[i]
		slots := sc.SlotsOn(day)
		if len(slots) == 0 {
			continue
		}
		vehicles := []model.Vehicle(sc.Vehicles)
		if vehicles == nil {
			vehicles = []model.Vehicle{}
		}
		today = append(today, model.TodaySchedule{
			ScheduleID: sc.ID,
			Area:       sc.Area,
			Ward:       sc.Ward,
			Zone:       sc.Zone,
			Route:      sc.Route,
			Day:        day,
			Slots:      slots,
			Vehicles:   vehicles,
			Subscribed: subscribed[sc.ID],
		})
	}
	return today, nil
}

// Subscribe is idempotent.
func (s *scheduleService) Subscribe(ctx context.Context, userID, scheduleID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, scheduleID); err != nil {
		return notFound(err, apperrors.ErrScheduleNotFound)
	}
	return s.repo.Subscribe(ctx, scheduleID, userID)
}

// Unsubscribe is idempotent.
func (s *scheduleService) Unsubscribe(ctx context.Context, userID, scheduleID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, scheduleID); err != nil {
		return notFound(err, apperrors.ErrScheduleNotFound)
	}
	return s.repo.Unsubscribe(ctx, scheduleID, userID)
}

func (s *scheduleService) Create(ctx context.Context, actor model.Actor, input ScheduleInput) (*model.GarbageSchedule, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	schedule, err := buildSchedule(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return schedule, nil
}

func (s *scheduleService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, input ScheduleInput) (*model.GarbageSchedule, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrScheduleNotFound)
	}
	schedule, err := buildSchedule(input)
	if err != nil {
		return nil, err
	}
	schedule.ID = existing.ID
	schedule.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return schedule, nil
}

// Import upserts schedules by area and ward. It is used by the seed command.
func (s *scheduleService) Import(ctx context.Context, inputs []ScheduleInput) (int, error) {
	for i, input := range inputs {
		schedule, err := buildSchedule(input)
		if err != nil {
			return i, fmt.Errorf("schedule %d (%s): %w", i, input.Area, err)
		}
		if err := s.repo.Upsert(ctx, schedule); err != nil {
			return i, fmt.Errorf("upsert %s: %w", input.Area, err)
		}
	}
	return len(inputs), nil
}

func buildSchedule(input ScheduleInput) (*model.GarbageSchedule, error) {
	area := strings.TrimSpace(input.Area)
	if area == "" {
		return nil, apperrors.NewValidationError("area", "is required")
	}
	slots, err := normalizeSlots(input.Slots)
	if err != nil {
		return nil, err
	}
	vehicles := input.Vehicles
	if vehicles == nil {
		vehicles = []model.Vehicle{}
	}
	for i, v := range vehicles {
		if strings.TrimSpace(v.Number) == "" {
			return nil, apperrors.NewValidationError("vehicles", fmt.Sprintf("vehicle %d needs a number", i+1))
		}
	}
	return &model.GarbageSchedule{
		Area:     area,
		Ward:     strings.TrimSpace(input.Ward),
		Zone:     strings.TrimSpace(input.Zone),
		Route:    strings.TrimSpace(input.Route),
		Slots:    datatypes.NewJSONType(slots),
		Vehicles: vehicles,
	}, nil
}

// normalizeSlots lowercases weekday keys and checks every window is HH:MM with start before end.
func normalizeSlots(in model.WeeklySlots) (model.WeeklySlots, error) {
	valid := make(map[string]bool, len(model.Weekdays))
	for _, d := range model.Weekdays {
		valid[d] = true
	}

	out := make(model.WeeklySlots, len(in))
	for day, slots := range in {
		key := strings.ToLower(strings.TrimSpace(day))
		if !valid[key] {
			return nil, apperrors.NewValidationError("slots", fmt.Sprintf("unknown weekday %q", day))
		}
		for _, slot := range slots {
			start, err := time.Parse(slotTimeLayout, slot.StartTime)
			if err != nil {
				return nil, apperrors.NewValidationError("slots", fmt.Sprintf("%s: startTime must be HH:MM", key))
			}
			end, err := time.Parse(slotTimeLayout, slot.EndTime)
			if err != nil {
				return nil, apperrors.NewValidationError("slots", fmt.Sprintf("%s: endTime must be HH:MM", key))
			}
			if !start.Before(end) {
				return nil, apperrors.NewValidationError("slots", fmt.Sprintf("%s: startTime must be before endTime", key))
			}
			if strings.TrimSpace(slot.WasteType) == "" {
				return nil, apperrors.NewValidationError("slots", fmt.Sprintf("%s: wasteType is required", key))
			}
		}
		out[key] = append(out[key], slots...)
	}
	return out, nil
}
