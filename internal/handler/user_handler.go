package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"swachhsetu/internal/model"
	"swachhsetu/internal/service"
)

// UserHandler bundles profile, leaderboard and user administration handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateProfileRequest carries optional profile fields.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	DarkMode *bool   `json:"darkMode"`
	Street   *string `json:"street" validate:"omitempty,max=255"`
	City     *string `json:"city" validate:"omitempty,max=120"`
	State    *string `json:"state" validate:"omitempty,max=120"`
	Pincode  *string `json:"pincode" validate:"omitempty,max=12"`
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user moderator admin"`
}

// Me godoc
// @Summary Get my profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	user, err := h.svc.GetUser(c.Request().Context(), actor.UserID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update my profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.svc.UpdateProfile(c.Request().Context(), actor.UserID, service.ProfileUpdate{
		Name:     req.Name,
		DarkMode: req.DarkMode,
		Street:   req.Street,
		City:     req.City,
		State:    req.State,
		Pincode:  req.Pincode,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Leaderboard godoc
// @Summary Top citizens by points
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Entries (default 10, max 100)"
// @Success 200 {array} model.LeaderboardEntry
// @Router /leaderboard [get]
func (h *UserHandler) Leaderboard(c echo.Context) error {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return err
	}
	entries, err := h.svc.Leaderboard(c.Request().Context(), limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	page, err := intQuery(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return err
	}
	users, err := h.svc.ListUsers(c.Request().Context(), actor, page, limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateRoleRequest true "Role"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return errorResponse(c, err)
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.svc.UpdateRole(c.Request().Context(), actor, id, model.Role(req.Role))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
