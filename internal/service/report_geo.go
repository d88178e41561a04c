package service

import (
	"context"
	"fmt"
	"time"

	apperrors "swachhsetu/internal/errors"
	"swachhsetu/internal/geo"
	"swachhsetu/internal/model"
	"swachhsetu/internal/repository"
)

const (
	defaultNearbyRadius = 1000.0
	maxNearbyRadius     = 50000.0
	maxMapReports       = 1000
	maxExportReports    = 10000
)

// activeStatuses are the statuses that count toward hotspots.
var activeStatuses = []model.ReportStatus{model.ReportStatusPending, model.ReportStatusInProgress}

// Exporter renders reports into a downloadable workbook.
type Exporter interface {
	Reports(reports []model.Report, generatedAt time.Time) ([]byte, error)
}

// NearbyReport is a report with its distance from the search center.
type NearbyReport struct {
	model.Report
	DistanceMeters float64 `json:"distanceMeters"`
}

// HotspotView is a dense cell of unresolved reports.
type HotspotView = geo.Hotspot

// NearbyReports returns reports within radiusMeters of (lat, lng), nearest first.
func (s *reportService) NearbyReports(ctx context.Context, lat, lng, radiusMeters float64) ([]NearbyReport, error) {
	if lat < -90 || lat > 90 {
		return nil, apperrors.NewValidationError("lat", "must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return nil, apperrors.NewValidationError("lng", "must be between -180 and 180")
	}
	if radiusMeters == 0 {
		radiusMeters = defaultNearbyRadius
	}
	if radiusMeters < 0 || radiusMeters > maxNearbyRadius {
		return nil, apperrors.NewValidationError("radius", fmt.Sprintf("must be between 1 and %.0f meters", maxNearbyRadius))
	}

	box := geo.BoundsAround(lat, lng, radiusMeters)
	candidates, err := s.reports.ListWithin(ctx, repository.Bounds(box), nil)
	if err != nil {
		return nil, fmt.Errorf("list nearby reports: %w", err)
	}

	byID := make(map[string]model.Report, len(candidates))
	points := make([]geo.Point, 0, len(candidates))
	for _, r := range candidates {
		id := r.ID.String()
		byID[id] = r
		points = append(points, geo.Point{ID: id, Lat: r.Location.Latitude, Lng: r.Location.Longitude})
	}

	matches := geo.Within(lat, lng, radiusMeters, points)
	result := make([]NearbyReport, 0, len(matches))
	for _, p := range matches {
		result = append(result, NearbyReport{
			Report:         byID[p.ID],
			DistanceMeters: geo.DistanceMeters(lat, lng, p.Lat, p.Lng),
		})
	}
	return result, nil
}

// Hotspots groups unresolved reports into S2 cells and returns the dense ones.
func (s *reportService) Hotspots(ctx context.Context, level, minCount int) ([]HotspotView, error) {
	world := repository.Bounds{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}
	reports, err := s.reports.ListWithin(ctx, world, activeStatuses)
	if err != nil {
		return nil, fmt.Errorf("list active reports: %w", err)
	}
	points := make([]geo.Point, 0, len(reports))
	for _, r := range reports {
		points = append(points, geo.Point{ID: r.ID.String(), Lat: r.Location.Latitude, Lng: r.Location.Longitude})
	}
	if minCount < 1 {
		minCount = 3
	}
	return geo.Hotspots(points, level, minCount), nil
}

// ReportsGeoJSON returns matching reports as a GeoJSON FeatureCollection.
func (s *reportService) ReportsGeoJSON(ctx context.Context, filter model.ReportFilter) (interface{}, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	filter.Page = 1
	filter.Limit = maxMapReports
	reports, _, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list map reports: %w", err)
	}
	return geo.ReportsFeatureCollection(reports), nil
}

// ExportReports renders matching reports as an xlsx workbook for staff.
func (s *reportService) ExportReports(ctx context.Context, actor model.Actor, filter model.ReportFilter) ([]byte, error) {
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	filter.Page = 1
	filter.Limit = maxExportReports
	reports, _, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list export reports: %w", err)
	}
	data, err := s.exporter.Reports(reports, s.clock())
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return data, nil
}
