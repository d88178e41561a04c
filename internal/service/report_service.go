package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/events"
	"swachhsetu/internal/gamification"
	"swachhsetu/internal/model"
	"swachhsetu/internal/realtime"
	"swachhsetu/internal/repository"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 5000
	maxImages            = 10
)

// CreateReportInput is a citizen's report submission.
type CreateReportInput struct {
	Category    model.Category
	Title       string
	Description string
	Severity    model.Severity
	// Coordinates are [longitude, latitude].
	Coordinates []float64
	Address     string
	Landmark    string
	Images      []string
}

// BulkFailure describes one id a bulk update could not apply.
type BulkFailure struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
	Code  string    `json:"code"`
}

// BulkResult lists the outcome of every id in a bulk update.
type BulkResult struct {
	Updated []uuid.UUID   `json:"updated"`
	Failed  []BulkFailure `json:"failed"`
}

// ReportUpdate is the payload pushed on reportUpdated.
type ReportUpdate struct {
	ReportID       uuid.UUID          `json:"reportId"`
	UserID         uuid.UUID          `json:"userId"`
	Title          string             `json:"title"`
	Status         model.ReportStatus `json:"status"`
	PreviousStatus model.ReportStatus `json:"previousStatus"`
	AdminNote      string             `json:"adminNote,omitempty"`
	PointsAwarded  int                `json:"pointsAwarded,omitempty"`
	Report         *model.Report      `json:"report"`
}

// ReportService owns the report lifecycle.
type ReportService interface {
	CreateReport(ctx context.Context, actor model.Actor, input CreateReportInput) (*model.Report, error)
	UpdateReportStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.ReportStatus, note string) (*model.Report, error)
	BulkUpdateReports(ctx context.Context, actor model.Actor, ids []uuid.UUID, status model.ReportStatus) (*BulkResult, error)
	GetReport(ctx context.Context, id uuid.UUID) (*model.Report, error)
	ListReports(ctx context.Context, filter model.ReportFilter) (*Page[model.Report], error)
	DeleteReport(ctx context.Context, actor model.Actor, id uuid.UUID) error

	NearbyReports(ctx context.Context, lat, lng, radiusMeters float64) ([]NearbyReport, error)
	Hotspots(ctx context.Context, level, minCount int) ([]HotspotView, error)
	ReportsGeoJSON(ctx context.Context, filter model.ReportFilter) (interface{}, error)
	ExportReports(ctx context.Context, actor model.Actor, filter model.ReportFilter) ([]byte, error)

	Close()
}

type reportService struct {
	reports       repository.ReportRepository
	tx            repository.TxManager
	notifications NotificationService
	hub           realtime.Emitter
	bus           *busDispatcher
	exporter      Exporter
	clock         Clock
	log           zerolog.Logger
}

// ReportServiceDeps groups the collaborators of the report service.
type ReportServiceDeps struct {
	Reports       repository.ReportRepository
	Tx            repository.TxManager
	Notifications NotificationService
	Hub           realtime.Emitter
	Publisher     events.Publisher
	Exporter      Exporter
	Clock         Clock
	Log           zerolog.Logger
}

// NewReportService creates a report service. Call Close to flush pending bus events.
func NewReportService(deps ReportServiceDeps) ReportService {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock
	}
	log := deps.Log.With().Str("service", "reports").Logger()
	return &reportService{
		reports:       deps.Reports,
		tx:            deps.Tx,
		notifications: deps.Notifications,
		hub:           deps.Hub,
		bus:           newBusDispatcher(deps.Publisher, log),
		exporter:      deps.Exporter,
		clock:         clock,
		log:           log,
	}
}

func (s *reportService) Close() {
	s.bus.close()
}

func validateCreateReport(in *CreateReportInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.Category == "" {
		return apperrors.NewValidationError("category", "is required")
	}
	if !in.Category.Valid() {
		return apperrors.NewValidationError("category", "is not a known category")
	}
	if in.Title == "" {
		return apperrors.NewValidationError("title", "is required")
	}
	if len(in.Title) > maxTitleLength {
		return apperrors.NewValidationError("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	if in.Description == "" {
		return apperrors.NewValidationError("description", "is required")
	}
	if len(in.Description) > maxDescriptionLength {
		return apperrors.NewValidationError("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLength))
	}
	if len(in.Coordinates) != 2 {
		return apperrors.NewValidationError("location", "coordinates [longitude, latitude] are required")
	}
	if lng := in.Coordinates[0]; lng < -180 || lng > 180 {
		return apperrors.NewValidationError("location", "longitude must be between -180 and 180")
	}
	if lat := in.Coordinates[1]; lat < -90 || lat > 90 {
		return apperrors.NewValidationError("location", "latitude must be between -90 and 90")
	}
	if in.Severity != "" && !in.Severity.Valid() {
		return apperrors.NewValidationError("severity", "must be one of low, medium, high, critical")
	}
	if len(in.Images) > maxImages {
		return apperrors.NewValidationError("images", fmt.Sprintf("at most %d images are allowed", maxImages))
	}
	return nil
}

// CreateReport stores a new report as pending and awards submission points.
func (s *reportService) CreateReport(ctx context.Context, actor model.Actor, input CreateReportInput) (*model.Report, error) {
	if actor.UserID == uuid.Nil {
		return nil, apperrors.ErrUnauthorized
	}
	if err := validateCreateReport(&input); err != nil {
		return nil, err
	}

	severity := input.Severity
	if severity == "" {
		severity = model.SeverityMedium
	}
	images := input.Images
	if images == nil {
		images = []string{}
	}
	report := &model.Report{
		ID:          uuid.New(),
		UserID:      actor.UserID,
		Category:    input.Category,
		Title:       input.Title,
		Description: input.Description,
		Severity:    severity,
		Status:      model.ReportStatusPending,
		Location: model.Location{
			Longitude: input.Coordinates[0],
			Latitude:  input.Coordinates[1],
			Address:   strings.TrimSpace(input.Address),
			Landmark:  strings.TrimSpace(input.Landmark),
		},
		Images: images,
	}

	var points int
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Reports.Create(ctx, report); err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		awarded, err := awardPoints(ctx, tx, actor.UserID, gamification.ReportSubmittedPoints)
		if err != nil {
			return err
		}
		points = awarded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("report_id", report.ID.String()).
		Str("user_id", actor.UserID.String()).
		Str("category", string(report.Category)).
		Msg("report created")

	s.notify(ctx, actor.UserID, model.Event{
		ID:       "report-created:" + report.ID.String(),
		Type:     model.EventReportCreated,
		Title:    "Report submitted",
		Message:  fmt.Sprintf("Thanks for reporting %q. You earned %d points.", report.Title, gamification.ReportSubmittedPoints),
		Priority: model.PriorityNormal,
		Data: map[string]interface{}{
			"reportId": report.ID.String(),
			"points":   gamification.ReportSubmittedPoints,
			"total":    points,
		},
	})
	s.hub.ToStaff(realtime.EventNewReport, report)
	s.bus.enqueue(events.KeyReportCreated, reportEvent(report, ""))
	return report, nil
}

// awardPoints adds delta to the user's points under a row lock and recomputes the level.
func awardPoints(ctx context.Context, tx repository.Tx, userID uuid.UUID, delta int) (int, error) {
	user, err := tx.Users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		return 0, notFound(err, apperrors.ErrUserNotFound)
	}
	points := user.Points + delta
	if err := tx.Users.UpdatePoints(ctx, userID, points, gamification.Level(points)); err != nil {
		return 0, fmt.Errorf("update points: %w", err)
	}
	return points, nil
}

// UpdateReportStatus moves one report to status inside its own transaction.
// The first resolution of a report awards the owner ReportResolvedPoints.
func (s *reportService) UpdateReportStatus(ctx context.Context, actor model.Actor, id uuid.UUID, status model.ReportStatus, note string) (*model.Report, error) {
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "must be one of pending, in-progress, resolved, rejected")
	}
	note = strings.TrimSpace(note)

	var (
		report   *model.Report
		previous model.ReportStatus
		changed  bool
		awarded  int
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		report, err = tx.Reports.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrReportNotFound)
		}
		previous = report.Status

		changed, err = report.Transition(status, s.clock())
		if err != nil {
			return err
		}
		if note != "" {
			report.AdminNote = note
		}
		if !changed && note == "" {
			return nil
		}

		if changed && status == model.ReportStatusResolved && !report.ResolutionRewarded {
			report.ResolutionRewarded = true
			if _, err := awardPoints(ctx, tx, report.UserID, gamification.ReportResolvedPoints); err != nil {
				return err
			}
			awarded = gamification.ReportResolvedPoints
		}
		if err := tx.Reports.Update(ctx, report); err != nil {
			return fmt.Errorf("update report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return report, nil
	}

	s.log.Info().
		Str("report_id", report.ID.String()).
		Str("actor_id", actor.UserID.String()).
		Str("from", string(previous)).
		Str("to", string(status)).
		Int("points_awarded", awarded).
		Msg("report status changed")

	update := ReportUpdate{
		ReportID:       report.ID,
		UserID:         report.UserID,
		Title:          report.Title,
		Status:         report.Status,
		PreviousStatus: previous,
		AdminNote:      report.AdminNote,
		PointsAwarded:  awarded,
		Report:         report,
	}
	s.notify(ctx, report.UserID, statusEvent(report, previous, awarded))
	s.hub.ToUser(report.UserID, realtime.EventReportUpdated, update)
	s.hub.ToStaff(realtime.EventReportUpdated, update)
	s.bus.enqueue(events.KeyReportUpdated, reportEvent(report, previous))
	return report, nil
}

func statusEvent(report *model.Report, previous model.ReportStatus, awarded int) model.Event {
	priority := model.PriorityNormal
	message := fmt.Sprintf("Your report %q is now %s.", report.Title, report.Status)
	switch report.Status {
	case model.ReportStatusResolved:
		priority = model.PriorityHigh
		if awarded > 0 {
			message = fmt.Sprintf("Your report %q was resolved. You earned %d points.", report.Title, awarded)
		}
	case model.ReportStatusRejected:
		priority = model.PriorityHigh
	}
	return model.Event{
		ID:       fmt.Sprintf("report-updated:%s:%s", report.ID, report.Status),
		Type:     model.EventReportUpdated,
		Title:    "Report status updated",
		Message:  message,
		Priority: priority,
		Data: map[string]interface{}{
			"reportId":       report.ID.String(),
			"status":         string(report.Status),
			"previousStatus": string(previous),
			"adminNote":      report.AdminNote,
			"points":         awarded,
		},
	}
}

func reportEvent(report *model.Report, previous model.ReportStatus) events.ReportEvent {
	return events.ReportEvent{
		ReportID:  report.ID,
		UserID:    report.UserID,
		Category:  string(report.Category),
		Severity:  string(report.Severity),
		Status:    string(report.Status),
		Previous:  string(previous),
		Latitude:  report.Location.Latitude,
		Longitude: report.Location.Longitude,
		At:        report.UpdatedAt,
	}
}

// notify delivers a notification after the state change is committed. A
// failure here is logged; the report change itself already succeeded.
func (s *reportService) notify(ctx context.Context, userID uuid.UUID, event model.Event) {
	if _, err := s.notifications.Notify(ctx, userID, event); err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Str("event_id", event.ID).Msg("notify")
	}
}

// BulkUpdateReports applies UpdateReportStatus to each id independently.
// Failures are collected per id and never abort the batch.
func (s *reportService) BulkUpdateReports(ctx context.Context, actor model.Actor, ids []uuid.UUID, status model.ReportStatus) (*BulkResult, error) {
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("reportIds", "at least one id is required")
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "must be one of pending, in-progress, resolved, rejected")
	}

	result := &BulkResult{Updated: []uuid.UUID{}, Failed: []BulkFailure{}}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, err := s.UpdateReportStatus(ctx, actor, id, status, ""); err != nil {
			httpErr := apperrors.MapErrorToHTTP(err)
			result.Failed = append(result.Failed, BulkFailure{ID: id, Error: httpErr.Message, Code: httpErr.Code})
			continue
		}
		result.Updated = append(result.Updated, id)
	}
	s.log.Info().
		Int("updated", len(result.Updated)).
		Int("failed", len(result.Failed)).
		Str("status", string(status)).
		Msg("bulk status update")
	return result, nil
}

func (s *reportService) GetReport(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrReportNotFound)
	}
	return report, nil
}

func validateFilter(filter model.ReportFilter) error {
	if filter.Status != "" && !filter.Status.Valid() {
		return apperrors.NewValidationError("status", "is not a known status")
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return apperrors.NewValidationError("category", "is not a known category")
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		return apperrors.NewValidationError("severity", "is not a known severity")
	}
	return nil
}

func (s *reportService) ListReports(ctx context.Context, filter model.ReportFilter) (*Page[model.Report], error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	items, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if items == nil {
		items = []model.Report{}
	}
	return &Page[model.Report]{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// DeleteReport hard-deletes a report. Only admins may do this.
func (s *reportService) DeleteReport(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		return notFound(err, apperrors.ErrReportNotFound)
	}
	s.log.Info().Str("report_id", id.String()).Str("actor_id", actor.UserID.String()).Msg("report deleted")
	return nil
}
