package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SaveNoteRequest is an explicit note save.
type SaveNoteRequest struct {
	Content    string `json:"content" validate:"max=50000"`
	TemplateID string `json:"template_id"`
}

// AutosaveNoteRequest is a background note save.
type AutosaveNoteRequest struct {
	Content string `json:"content" validate:"max=50000"`
}

// GetNote returns the session's note, or null when none exists.
// GET /v1/sessions/:id/note
func (h *Handler) GetNote(c echo.Context) error {
	note, err := h.service.GetNote(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

// SaveNote saves the note and clears its draft flag.
// PUT /v1/sessions/:id/note
func (h *Handler) SaveNote(c echo.Context) error {
	var req SaveNoteRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	note, err := h.service.SaveNote(c.Request().Context(), c.Param("id"), req.Content, req.TemplateID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

// AutosaveNote saves the note without touching its draft flag.
// PATCH /v1/sessions/:id/note/autosave
func (h *Handler) AutosaveNote(c echo.Context) error {
	var req AutosaveNoteRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	note, err := h.service.AutosaveNote(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}
