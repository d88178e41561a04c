package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"swachhsetu/internal/model"
	"swachhsetu/internal/service"
)

// GarbageHandler serves collection schedules.
type GarbageHandler struct {
	schedules service.ScheduleService
}

// NewGarbageHandler creates a garbage schedule handler.
func NewGarbageHandler(schedules service.ScheduleService) *GarbageHandler {
	return &GarbageHandler{schedules: schedules}
}

// ScheduleRequest creates or replaces a schedule.
type ScheduleRequest struct {
	Area     string            `json:"area" validate:"required,max=255"`
	Ward     string            `json:"ward" validate:"max=64"`
	Zone     string            `json:"zone" validate:"max=64"`
	Route    string            `json:"route" validate:"max=255"`
	Slots    model.WeeklySlots `json:"slots"`
	Vehicles []model.Vehicle   `json:"vehicles"`
}

func (r ScheduleRequest) input() service.ScheduleInput {
	return service.ScheduleInput{
		Area:     r.Area,
		Ward:     r.Ward,
		Zone:     r.Zone,
		Route:    r.Route,
		Slots:    r.Slots,
		Vehicles: r.Vehicles,
	}
}

func scheduleFilter(c echo.Context) model.ScheduleFilter {
	return model.ScheduleFilter{
		Area: c.QueryParam("area"),
		Ward: c.QueryParam("ward"),
		Zone: c.QueryParam("zone"),
	}
}

// ListSchedules godoc
// @Summary List collection schedules
// @Tags garbage
// @Produce json
// @Param area query string false "Area (substring, case-insensitive)"
// @Param ward query string false "Ward"
// @Param zone query string false "Zone"
// @Success 200 {array} model.GarbageSchedule
// @Router /garbage/schedule [get]
func (h *GarbageHandler) ListSchedules(c echo.Context) error {
	schedules, err := h.schedules.List(c.Request().Context(), scheduleFilter(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, schedules)
}

// GetSchedule godoc
// @Summary Get a collection schedule
// @Tags garbage
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} model.GarbageSchedule
// @Failure 404 {object} errors.ErrorResponse
// @Router /garbage/schedule/{id} [get]
func (h *GarbageHandler) GetSchedule(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	schedule, err := h.schedules.Get(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, schedule)
}

// Today godoc
// @Summary Today's pickups
// @Description When a bearer token is sent, each entry reports whether the caller is subscribed.
// @Tags garbage
// @Produce json
// @Param area query string false "Area"
// @Param ward query string false "Ward"
// @Success 200 {array} model.TodaySchedule
// @Router /garbage/today [get]
func (h *GarbageHandler) Today(c echo.Context) error {
	var userID *uuid.UUID
	if actor := optionalActor(c); actor != nil {
		userID = &actor.UserID
	}
	today, err := h.schedules.Today(c.Request().Context(), userID, scheduleFilter(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, today)
}

// Subscribe godoc
// @Summary Subscribe to schedule reminders
// @Tags garbage
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /garbage/schedule/{id}/subscribe [post]
func (h *GarbageHandler) Subscribe(c echo.Context) error {
	return h.setSubscription(c, true)
}

// Unsubscribe godoc
// @Summary Unsubscribe from schedule reminders
// @Tags garbage
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.ErrorResponse
// @Router /garbage/schedule/{id}/subscribe [delete]
func (h *GarbageHandler) Unsubscribe(c echo.Context) error {
	return h.setSubscription(c, false)
}

func (h *GarbageHandler) setSubscription(c echo.Context, subscribed bool) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if subscribed {
		err = h.schedules.Subscribe(ctx, actor.UserID, id)
	} else {
		err = h.schedules.Unsubscribe(ctx, actor.UserID, id)
	}
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"scheduleId": id, "subscribed": subscribed})
}

// CreateSchedule godoc
// @Summary Create a collection schedule
// @Tags garbage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ScheduleRequest true "Schedule"
// @Success 201 {object} model.GarbageSchedule
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /garbage/schedule [post]
func (h *GarbageHandler) CreateSchedule(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req ScheduleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	schedule, err := h.schedules.Create(c.Request().Context(), actor, req.input())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, schedule)
}

// UpdateSchedule godoc
// @Summary Replace a collection schedule
// @Tags garbage
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Schedule ID"
// @Param request body ScheduleRequest true "Schedule"
// @Success 200 {object} model.GarbageSchedule
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /garbage/schedule/{id} [put]
func (h *GarbageHandler) UpdateSchedule(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req ScheduleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	schedule, err := h.schedules.Update(c.Request().Context(), actor, id, req.input())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, schedule)
}
