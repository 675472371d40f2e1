package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetDashboard returns the coach's overview.
// GET /v1/dashboard
func (h *Handler) GetDashboard(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	dashboard, err := h.service.Dashboard(c.Request().Context(), user.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dashboard)
}
