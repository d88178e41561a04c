package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "swachhsetu/internal/errors"
)

// Category classifies a hygiene report.
type Category string

const (
	CategoryWaste      Category = "waste"
	CategoryToilet     Category = "toilet"
	CategoryRestaurant Category = "restaurant"
	CategoryWater      Category = "water"
	CategoryBeach      Category = "beach"
	CategoryStreet     Category = "street"
	CategoryPark       Category = "park"
	CategoryOther      Category = "other"
)

// Categories lists every accepted category.
var Categories = []Category{
	CategoryWaste, CategoryToilet, CategoryRestaurant, CategoryWater,
	CategoryBeach, CategoryStreet, CategoryPark, CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity is the urgency tag of a report, independent of its workflow status.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every accepted severity.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	for _, known := range Severities {
		if s == known {
			return true
		}
	}
	return false
}

// ReportStatus is the workflow state of a report.
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "pending"
	ReportStatusInProgress ReportStatus = "in-progress"
	ReportStatusResolved   ReportStatus = "resolved"
	ReportStatusRejected   ReportStatus = "rejected"
)

// ReportStatuses lists every workflow state.
var ReportStatuses = []ReportStatus{
	ReportStatusPending, ReportStatusInProgress, ReportStatusResolved, ReportStatusRejected,
}

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	for _, known := range ReportStatuses {
		if s == known {
			return true
		}
	}
	return false
}

var allowedTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusPending:    {ReportStatusInProgress, ReportStatusResolved, ReportStatusRejected},
	ReportStatusInProgress: {ReportStatusResolved},
}

// CanTransitionTo reports whether a report in status s may move to next.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Location is where a report was observed.
type Location struct {
	Longitude float64 `gorm:"column:longitude;not null"`
	Latitude  float64 `gorm:"column:latitude;not null"`
	Address   string  `gorm:"column:address;size:512"`
	Landmark  string  `gorm:"column:landmark;size:255"`
}

type locationJSON struct {
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address,omitempty"`
	Landmark    string    `json:"landmark,omitempty"`
}

// MarshalJSON encodes the location with GeoJSON-ordered [lng, lat] coordinates.
func (l Location) MarshalJSON() ([]byte, error) {
	return json.Marshal(locationJSON{
		Coordinates: []float64{l.Longitude, l.Latitude},
		Address:     l.Address,
		Landmark:    l.Landmark,
	})
}

// Report is a citizen-submitted hygiene complaint.
type Report struct {
	ID                 uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	UserID             uuid.UUID                   `json:"userId" gorm:"type:char(36);not null;index"`
	Category           Category                    `json:"category" gorm:"type:varchar(20);not null;index"`
	Title              string                      `json:"title" gorm:"size:255;not null"`
	Description        string                      `json:"description" gorm:"type:text;not null"`
	Severity           Severity                    `json:"severity" gorm:"type:varchar(20);not null;default:'medium';index"`
	Status             ReportStatus                `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Location           Location                    `json:"location" gorm:"embedded"`
	Images             datatypes.JSONSlice[string] `json:"images"`
	AdminNote          string                      `json:"adminNote,omitempty" gorm:"type:text"`
	ResolutionRewarded bool                        `json:"-" gorm:"not null;default:false"`
	CreatedAt          time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt          time.Time                   `json:"updatedAt"`
	ResolvedAt         *time.Time                  `json:"resolvedAt,omitempty"`
}

// BeforeCreate sets UUID and workflow defaults before creating the record.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = ReportStatusPending
	}
	if r.Severity == "" {
		r.Severity = SeverityMedium
	}
	return nil
}

// Transition moves the report to next at time now. It reports whether the
// status changed; re-applying the current status is a no-op.
// resolvedAt is stamped only when entering resolved.
func (r *Report) Transition(next ReportStatus, now time.Time) (bool, error) {
	if r.Status == next {
		return false, nil
	}
	if !r.Status.CanTransitionTo(next) {
		return false, &apperrors.InvalidTransitionError{From: string(r.Status), To: string(next)}
	}
	r.Status = next
	if next == ReportStatusResolved {
		resolvedAt := now
		r.ResolvedAt = &resolvedAt
	}
	return true, nil
}

// ReportFilter narrows report listings.
type ReportFilter struct {
	Status   ReportStatus
	Category Category
	Severity Severity
	UserID   *uuid.UUID
	Since    *time.Time
	Page     int
	Limit    int
}

// Offset returns the row offset for the filter's page.
func (f ReportFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// StatusCounts holds the number of reports per status.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
	Rejected   int64 `json:"rejected"`
}

// Add records n reports in status.
func (c *StatusCounts) Add(status ReportStatus, n int64) {
	c.Total += n
	switch status {
	case ReportStatusPending:
		c.Pending += n
	case ReportStatusInProgress:
		c.InProgress += n
	case ReportStatusResolved:
		c.Resolved += n
	case ReportStatusRejected:
		c.Rejected += n
	}
}
