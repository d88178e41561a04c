package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"swachhsetu/internal/model"
)

// Bounds is a latitude/longitude rectangle in degrees. MinLng > MaxLng means
// the rectangle crosses the 180th meridian.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// ReportRepository defines report persistence operations.
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	Update(ctx context.Context, report *model.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Report, error)
	List(ctx context.Context, filter model.ReportFilter) ([]model.Report, int64, error)
	ListWithin(ctx context.Context, bounds Bounds, statuses []model.ReportStatus) ([]model.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, userID *uuid.UUID) (model.StatusCounts, error)
	CountByColumn(ctx context.Context, column string) (map[string]int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	AverageResolutionHours(ctx context.Context) (float64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create creates a new report record.
func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// Update saves every column of an existing report.
func (r *reportRepository) Update(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

// FindByID finds a report by ID.
func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// FindByIDForUpdate finds a report by ID and locks the row until the transaction ends.
func (r *reportRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns one page of reports matching filter, newest first, with the total match count.
func (r *reportRepository) List(ctx context.Context, filter model.ReportFilter) ([]model.Report, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Model(&model.Report{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []model.Report
	q := r.filtered(ctx, filter).Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset()).Limit(filter.Limit)
	}
	if err := q.Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) filtered(ctx context.Context, filter model.ReportFilter) *gorm.DB {
	q := r.db.WithContext(ctx)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Since != nil {
		q = q.Where("created_at >= ?", *filter.Since)
	}
	return q
}

// ListWithin returns reports inside bounds, optionally restricted to statuses.
func (r *reportRepository) ListWithin(ctx context.Context, bounds Bounds, statuses []model.ReportStatus) ([]model.Report, error) {
	q := r.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ?", bounds.MinLat, bounds.MaxLat)
	if bounds.MinLng > bounds.MaxLng {
		// the box wraps across the antimeridian
		q = q.Where("(longitude >= ? OR longitude <= ?)", bounds.MinLng, bounds.MaxLng)
	} else {
		q = q.Where("longitude BETWEEN ? AND ?", bounds.MinLng, bounds.MaxLng)
	}
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var reports []model.Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// Delete hard-deletes a report.
func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Report{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByStatus counts reports per status, for one user when userID is set.
func (r *reportRepository) CountByStatus(ctx context.Context, userID *uuid.UUID) (model.StatusCounts, error) {
	var rows []struct {
		Status model.ReportStatus
		Count  int64
	}
	q := r.db.WithContext(ctx).Model(&model.Report{}).Select("status, COUNT(*) AS count")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var counts model.StatusCounts
	if err := q.Group("status").Scan(&rows).Error; err != nil {
		return counts, err
	}
	for _, row := range rows {
		counts.Add(row.Status, row.Count)
	}
	return counts, nil
}

var countableColumns = map[string]bool{"category": true, "severity": true, "status": true}

// CountByColumn groups reports by one of category, severity or status.
func (r *reportRepository) CountByColumn(ctx context.Context, column string) (map[string]int64, error) {
	if !countableColumns[column] {
		return nil, gorm.ErrInvalidField
	}
	var rows []struct {
		Value string
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Report{}).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.Count
	}
	return counts, nil
}

// CountSince counts reports created at or after since.
func (r *reportRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Report{}).
		Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// AverageResolutionHours returns the mean time from creation to resolution.
func (r *reportRepository) AverageResolutionHours(ctx context.Context) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&model.Report{}).
		Select("AVG(TIMESTAMPDIFF(SECOND, created_at, resolved_at)) / 3600").
		Where("status = ? AND resolved_at IS NOT NULL", model.ReportStatusResolved).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
