package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"swachhsetu/internal/realtime"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) bool
}

// RealtimeHandler upgrades WebSocket connections and reports service health.
type RealtimeHandler struct {
	hub   *realtime.Hub
	redis Pinger
	db    Pinger
}

// NewRealtimeHandler creates a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub, redis, db Pinger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, redis: redis, db: db}
}

// Connect godoc
// @Summary Open the live event stream
// @Description Upgrades to a WebSocket. Pass the access token as ?token= or a bearer header.
// @Tags realtime
// @Param token query string false "Access token"
// @Success 101
// @Failure 401 {object} errors.ErrorResponse
// @Router /ws [get]
func (h *RealtimeHandler) Connect(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	if err := h.hub.ServeWS(c.Response(), c.Request(), actor); err != nil {
		// The upgrader has already written the failure response.
		zerolog.Ctx(c.Request().Context()).Debug().Err(err).Msg("websocket upgrade failed")
	}
	return nil
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status   string         `json:"status"`
	Database bool           `json:"database"`
	Redis    bool           `json:"redis"`
	Realtime realtime.Stats `json:"realtime"`
}

// Health godoc
// @Summary Liveness and dependency status
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h *RealtimeHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Database: h.db == nil || h.db.Ping(ctx),
		Redis:    h.redis != nil && h.redis.Ping(ctx),
		Realtime: h.hub.Stats(),
	}
	status := http.StatusOK
	if !resp.Database {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}
