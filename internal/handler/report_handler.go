package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"swachhsetu/internal/model"
	"swachhsetu/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler exposes the report lifecycle over HTTP.
type ReportHandler struct {
	reports service.ReportService
}

// NewReportHandler creates a report handler.
func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// LocationRequest is a GeoJSON-ordered point with optional address details.
type LocationRequest struct {
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
	Address     string    `json:"address" validate:"max=512"`
	Landmark    string    `json:"landmark" validate:"max=255"`
}

// CreateReportRequest is a citizen's report submission.
type CreateReportRequest struct {
	Category    string          `json:"category" validate:"required"`
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description" validate:"required"`
	Severity    string          `json:"severity"`
	Location    LocationRequest `json:"location" validate:"required"`
	Images      []string        `json:"images" validate:"max=10,dive,url"`
}

// UpdateReportRequest changes a report's status.
type UpdateReportRequest struct {
	Status    string `json:"status" validate:"required"`
	AdminNote string `json:"adminNote" validate:"max=5000"`
}

// BulkUpdateRequest applies one status to many reports.
type BulkUpdateRequest struct {
	ReportIDs []uuid.UUID `json:"reportIds" validate:"required,min=1,max=500"`
	Status    string      `json:"status" validate:"required"`
}

// CreateReport godoc
// @Summary Submit a hygiene report
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReportRequest true "Report"
// @Success 201 {object} model.Report
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req CreateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	report, err := h.reports.CreateReport(c.Request().Context(), actor, service.CreateReportInput{
		Category:    model.Category(req.Category),
		Title:       req.Title,
		Description: req.Description,
		Severity:    model.Severity(req.Severity),
		Coordinates: req.Location.Coordinates,
		Address:     req.Location.Address,
		Landmark:    req.Location.Landmark,
		Images:      req.Images,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, report)
}

// ListReports godoc
// @Summary List reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param category query string false "Category"
// @Param severity query string false "Severity"
// @Param mine query bool false "Only the caller's reports"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /reports [get]
func (h *ReportHandler) ListReports(c echo.Context) error {
	filter, err := reportFilter(c)
	if err != nil {
		return err
	}
	page, err := h.reports.ListReports(c.Request().Context(), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func reportFilter(c echo.Context) (model.ReportFilter, error) {
	filter := model.ReportFilter{
		Status:   model.ReportStatus(c.QueryParam("status")),
		Category: model.Category(c.QueryParam("category")),
		Severity: model.Severity(c.QueryParam("severity")),
	}
	var err error
	if filter.Page, err = intQuery(c, "page", 1); err != nil {
		return filter, err
	}
	if filter.Limit, err = intQuery(c, "limit", 0); err != nil {
		return filter, err
	}
	if c.QueryParam("mine") == "true" {
		actor, err := actorFrom(c)
		if err != nil {
			return filter, errorResponse(c, err)
		}
		filter.UserID = &actor.UserID
	}
	if raw := c.QueryParam("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, badRequest("since", "must be an RFC3339 timestamp")
		}
		filter.Since = &since
	}
	return filter, nil
}

// GetReport godoc
// @Summary Get a report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} model.Report
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports/{id} [get]
func (h *ReportHandler) GetReport(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	report, err := h.reports.GetReport(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// UpdateReport godoc
// @Summary Change a report's status
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body UpdateReportRequest true "New status"
// @Success 200 {object} model.Report
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /reports/{id} [patch]
func (h *ReportHandler) UpdateReport(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	report, err := h.reports.UpdateReportStatus(c.Request().Context(), actor, id, model.ReportStatus(req.Status), req.AdminNote)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// BulkUpdate godoc
// @Summary Change the status of many reports
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkUpdateRequest true "Report ids and status"
// @Success 200 {object} service.BulkResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /reports/bulk [post]
func (h *ReportHandler) BulkUpdate(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req BulkUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.reports.BulkUpdateReports(c.Request().Context(), actor, req.ReportIDs, model.ReportStatus(req.Status))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteReport godoc
// @Summary Delete a report
// @Tags reports
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.reports.DeleteReport(c.Request().Context(), actor, id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Nearby godoc
// @Summary Reports near a point
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in meters (default 1000)"
// @Success 200 {array} service.NearbyReport
// @Failure 400 {object} errors.ErrorResponse
// @Router /reports/nearby [get]
func (h *ReportHandler) Nearby(c echo.Context) error {
	lat, ok, err := floatQuery(c, "lat")
	if err != nil {
		return err
	}
	if !ok {
		return badRequest("lat", "is required")
	}
	lng, ok, err := floatQuery(c, "lng")
	if err != nil {
		return err
	}
	if !ok {
		return badRequest("lng", "is required")
	}
	radius, _, err := floatQuery(c, "radius")
	if err != nil {
		return err
	}

	reports, err := h.reports.NearbyReports(c.Request().Context(), lat, lng, radius)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, reports)
}

// Hotspots godoc
// @Summary Dense clusters of unresolved reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param level query int false "S2 cell level (6-16)"
// @Param min query int false "Minimum reports per cell (default 3)"
// @Success 200 {array} service.HotspotView
// @Router /reports/hotspots [get]
func (h *ReportHandler) Hotspots(c echo.Context) error {
	level, err := intQuery(c, "level", 0)
	if err != nil {
		return err
	}
	minCount, err := intQuery(c, "min", 0)
	if err != nil {
		return err
	}
	hotspots, err := h.reports.Hotspots(c.Request().Context(), level, minCount)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, hotspots)
}

// GeoJSON godoc
// @Summary Reports as a GeoJSON FeatureCollection
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param category query string false "Category"
// @Success 200 {object} map[string]interface{}
// @Router /reports/geojson [get]
func (h *ReportHandler) GeoJSON(c echo.Context) error {
	filter, err := reportFilter(c)
	if err != nil {
		return err
	}
	collection, err := h.reports.ReportsGeoJSON(c.Request().Context(), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, collection)
}

// Export godoc
// @Summary Download reports as an Excel workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Status"
// @Param category query string false "Category"
// @Success 200 {file} file
// @Failure 403 {object} errors.ErrorResponse
// @Router /reports/export [get]
func (h *ReportHandler) Export(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	filter, err := reportFilter(c)
	if err != nil {
		return err
	}
	data, err := h.reports.ExportReports(c.Request().Context(), actor, filter)
	if err != nil {
		return errorResponse(c, err)
	}
	filename := fmt.Sprintf("reports-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}
