package v1

import (
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const maxSearchQuery = 200

// Search finds clients and sessions.
// GET /v1/search?q=&type=all|clients|sessions&limit=
func (h *Handler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if utf8.RuneCountInString(q) > maxSearchQuery {
		return badRequest(c, "q must be at most 200 characters")
	}

	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	result, err := h.service.Search(c.Request().Context(), user.ID, q,
		domain.SearchType(c.QueryParam("type")), queryInt(c, "limit", 20))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
