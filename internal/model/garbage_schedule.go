package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Weekdays in schedule order, keyed the way clients send them.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// WeekdayKey returns the schedule key for t's weekday.
func WeekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// CollectionSlot is one pickup window.
type CollectionSlot struct {
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	WasteType string `json:"wasteType" validate:"required"`
}

// WeeklySlots maps a lowercase weekday to its pickup windows.
type WeeklySlots map[string][]CollectionSlot

// Vehicle is a collection vehicle assigned to a route.
type Vehicle struct {
	Number      string `json:"number"`
	Type        string `json:"type,omitempty"`
	DriverName  string `json:"driverName,omitempty"`
	DriverPhone string `json:"driverPhone,omitempty"`
}

// GarbageSchedule is read-mostly reference data for an area's collection timetable.
type GarbageSchedule struct {
	ID        uuid.UUID                       `json:"id" gorm:"type:char(36);primaryKey"`
	Area      string                          `json:"area" gorm:"size:255;not null;index"`
	Ward      string                          `json:"ward" gorm:"size:64;index"`
	Zone      string                          `json:"zone" gorm:"size:64;index"`
	Route     string                          `json:"route,omitempty" gorm:"size:255"`
	Slots     datatypes.JSONType[WeeklySlots] `json:"slots"`
	Vehicles  datatypes.JSONSlice[Vehicle]    `json:"vehicles"`
	CreatedAt time.Time                       `json:"createdAt"`
	UpdatedAt time.Time                       `json:"updatedAt"`

	SubscriberCount int64 `json:"subscriberCount" gorm:"-"`
}

// BeforeCreate sets UUID before creating the record.
func (g *GarbageSchedule) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// SlotsOn returns the pickup windows for the given weekday key.
func (g *GarbageSchedule) SlotsOn(weekday string) []CollectionSlot {
	slots := g.Slots.Data()
	if slots == nil {
		return nil
	}
	return slots[weekday]
}

// ScheduleSubscription records a user's opt-in to schedule reminders.
type ScheduleSubscription struct {
	ScheduleID uuid.UUID `json:"scheduleId" gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID `json:"userId" gorm:"type:char(36);primaryKey;index"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ScheduleFilter narrows schedule listings.
type ScheduleFilter struct {
	Area string
	Ward string
	Zone string
}

// TodaySchedule is a schedule's collection plan for the current day.
type TodaySchedule struct {
	ScheduleID uuid.UUID        `json:"scheduleId"`
	Area       string           `json:"area"`
	Ward       string           `json:"ward"`
	Zone       string           `json:"zone"`
	Route      string           `json:"route,omitempty"`
	Day        string           `json:"day"`
	Slots      []CollectionSlot `json:"slots"`
	Vehicles   []Vehicle        `json:"vehicles"`
	Subscribed bool             `json:"subscribed"`
}
