package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// CreateSessionRequest is the request to schedule a session.
type CreateSessionRequest struct {
	ClientID        string `json:"client_id" validate:"required"`
	ScheduledAt     string `json:"scheduled_at" validate:"required"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,min=1,max=480"`
	TemplateID      string `json:"template_id"`
}

// UpdateSessionRequest is a partial session update. An explicit null
// duration_minutes clears the duration.
type UpdateSessionRequest struct {
	ScheduledAt     *string     `json:"scheduled_at"`
	DurationMinutes nullableInt `json:"duration_minutes"`
	Status          *string     `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no_show"`
}

// ListSessions lists sessions.
// GET /v1/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	filter := domain.SessionFilter{
		ClientID: c.QueryParam("client_id"),
		Status:   domain.SessionStatus(c.QueryParam("status")),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 20),
	}
	if filter.From, err = queryTime(c, "from"); err != nil {
		return badRequest(c, err.Error())
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return badRequest(c, err.Error())
	}

	sessions, total, err := h.service.ListSessions(ctx, user.ID, filter)
	if err != nil {
		return h.respondError(c, err)
	}
	if sessions == nil {
		sessions = []domain.SessionWithDetails{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"sessions": sessions,
		"total":    total,
	})
}

// CreateSession schedules a session.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateSessionRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	scheduledAt, err := parseTime(req.ScheduledAt)
	if err != nil {
		return badRequest(c, "scheduled_at must be a timestamp")
	}

	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	sess, err := h.service.CreateSession(ctx, domain.NewSession{
		UserID:          user.ID,
		ClientID:        req.ClientID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		TemplateID:      req.TemplateID,
	})
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusCreated, sess)
}

// GetSession returns the assembled session detail.
// GET /v1/sessions/:id
func (h *Handler) GetSession(c echo.Context) error {
	detail, err := h.service.GetSessionDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// UpdateSession applies a partial update.
// PUT /v1/sessions/:id
func (h *Handler) UpdateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req UpdateSessionRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	var update domain.SessionUpdate
	if req.ScheduledAt != nil {
		t, err := parseTime(*req.ScheduledAt)
		if err != nil {
			return badRequest(c, "scheduled_at must be a timestamp")
		}
		update.ScheduledAt = &t
	}
	if req.DurationMinutes.Set {
		if req.DurationMinutes.Value == nil {
			update.ClearDuration = true
		} else {
			update.DurationMinutes = req.DurationMinutes.Value
		}
	}
	if req.Status != nil {
		status := domain.SessionStatus(*req.Status)
		update.Status = &status
	}

	sess, err := h.service.UpdateSession(ctx, c.Param("id"), update)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// DeleteSession deletes a session and everything attached to it.
// DELETE /v1/sessions/:id
func (h *Handler) DeleteSession(c echo.Context) error {
	if err := h.service.DeleteSession(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
