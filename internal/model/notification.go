package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Priority orders notifications for display.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// EventType names the domain event behind a notification.
type EventType string

const (
	EventReportCreated EventType = "report_created"
	EventReportUpdated EventType = "report_updated"
	EventAIMilestone   EventType = "ai_milestone"
	EventSystem        EventType = "system"
)

// Event is a domain occurrence addressed to a single user.
// ID identifies the occurrence; delivering the same ID twice is a no-op.
type Event struct {
	ID       string
	Type     EventType
	Title    string
	Message  string
	Priority Priority
	Data     map[string]interface{}
}

// Notification is the persisted, pollable record of an Event.
type Notification struct {
	ID        uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID         `json:"userId" gorm:"type:char(36);not null;index:idx_notifications_user_created,priority:1"`
	EventID   string            `json:"eventId" gorm:"size:64;not null;uniqueIndex"`
	Type      EventType         `json:"type" gorm:"type:varchar(32);not null"`
	Title     string            `json:"title" gorm:"size:255;not null"`
	Message   string            `json:"message" gorm:"type:text"`
	Priority  Priority          `json:"priority" gorm:"type:varchar(10);not null;default:'normal'"`
	Data      datatypes.JSONMap `json:"data,omitempty"`
	Read      bool              `json:"read" gorm:"not null;default:false;index"`
	ReadAt    *time.Time        `json:"readAt,omitempty"`
	CreatedAt time.Time         `json:"createdAt" gorm:"index:idx_notifications_user_created,priority:2"`
}

// BeforeCreate sets UUID and priority defaults before creating the record.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	return nil
}

// NotificationFromEvent builds the record persisted for event.
func NotificationFromEvent(userID uuid.UUID, event Event) *Notification {
	priority := event.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	var data datatypes.JSONMap
	if len(event.Data) > 0 {
		data = datatypes.JSONMap(event.Data)
	}
	return &Notification{
		UserID:   userID,
		EventID:  event.ID,
		Type:     event.Type,
		Title:    event.Title,
		Message:  event.Message,
		Priority: priority,
		Data:     data,
	}
}
