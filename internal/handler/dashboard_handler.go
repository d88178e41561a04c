package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"swachhsetu/internal/service"
)

// DashboardHandler serves the citizen and admin dashboards.
type DashboardHandler struct {
	dashboards service.DashboardService
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(dashboards service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// User godoc
// @Summary My dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserDashboard
// @Failure 401 {object} errors.ErrorResponse
// @Router /dashboard/user [get]
func (h *DashboardHandler) User(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	dash, err := h.dashboards.UserDashboard(c.Request().Context(), actor.UserID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dash)
}

// Statistics godoc
// @Summary Platform statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Statistics
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/statistics [get]
func (h *DashboardHandler) Statistics(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	stats, err := h.dashboards.Statistics(c.Request().Context(), actor)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
