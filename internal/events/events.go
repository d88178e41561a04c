// Package events connects the API to the AMQP event bus shared with the AI pipeline.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Routing keys.
const (
	KeyReportCreated = "report.created"
	KeyReportUpdated = "report.updated"
	KeyAIProgress    = "ai.progress"
)

// AI milestone stages carried in AIProgress.Stage.
const (
	StageProgress  = "progress"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// ReportEvent is published whenever a report is created or changes status.
type ReportEvent struct {
	ReportID  uuid.UUID `json:"reportId"`
	UserID    uuid.UUID `json:"userId"`
	Category  string    `json:"category"`
	Severity  string    `json:"severity"`
	Status    string    `json:"status"`
	Previous  string    `json:"previousStatus,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	At        time.Time `json:"at"`
}

// AIProgress is a milestone emitted by the AI pipeline for one job.
type AIProgress struct {
	EventID  string                 `json:"eventId"`
	JobID    string                 `json:"jobId"`
	UserID   uuid.UUID              `json:"userId"`
	Service  string                 `json:"service"`
	Stage    string                 `json:"stage"`
	Progress int                    `json:"progress"`
	Message  string                 `json:"message"`
	Result   map[string]interface{} `json:"result,omitempty"`
}

// Publisher sends JSON payloads to the bus.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
	Close() error
}

// NopPublisher discards everything. It is used when no AMQP URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                      { return nil }
