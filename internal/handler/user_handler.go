package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"landrecords/internal/service"
)

// UserHandler exposes user profile endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.svc.Profile(c.Request().Context(), CallerFrom(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}
