package v1

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// UpdateSummaryRequest edits a summary version in place. action_items may be
// sent either as a JSON array or as its string encoding.
type UpdateSummaryRequest struct {
	SummaryText *string         `json:"summary_text" validate:"omitempty,max=20000"`
	ActionItems json.RawMessage `json:"action_items"`
	NextAgenda  *string         `json:"next_agenda" validate:"omitempty,max=5000"`
}

// GenerateSummary generates a new summary version from the session note.
// POST /v1/sessions/:id/ai/summary
func (h *Handler) GenerateSummary(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	summary, _, err := h.service.GenerateSummary(ctx, user.ID, c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, summary)
}

// GenerateFollowUp drafts a follow-up email from the note and latest summary.
// POST /v1/sessions/:id/ai/follow-up
func (h *Handler) GenerateFollowUp(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	email, _, err := h.service.GenerateFollowUp(ctx, user.ID, c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, email)
}

// ListSummaries lists every summary version, newest first.
// GET /v1/sessions/:id/ai/summaries
func (h *Handler) ListSummaries(c echo.Context) error {
	summaries, err := h.service.ListSummaries(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	if summaries == nil {
		summaries = []domain.Summary{}
	}
	return c.JSON(http.StatusOK, summaries)
}

// UpdateSummary edits a summary version.
// PUT /v1/sessions/:id/ai/summaries/:summary_id
func (h *Handler) UpdateSummary(c echo.Context) error {
	var req UpdateSummaryRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	update := domain.SummaryUpdate{
		SummaryText: req.SummaryText,
		NextAgenda:  req.NextAgenda,
	}
	if raw := bytes.TrimSpace(req.ActionItems); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var encoded string
		if raw[0] == '"' {
			if err := json.Unmarshal(raw, &encoded); err != nil {
				return badRequest(c, "action_items must be a JSON array")
			}
		} else {
			encoded = string(raw)
		}
		update.ActionItems = &encoded
	}

	summary, err := h.service.UpdateSummary(c.Request().Context(), c.Param("id"), c.Param("summary_id"), update)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
