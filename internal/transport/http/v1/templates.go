package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// TemplateRequest carries template fields for create and update.
type TemplateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Content     *string `json:"content" validate:"omitempty,max=20000"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
}

func (r *TemplateRequest) input() domain.TemplateInput {
	return domain.TemplateInput{
		Name:        r.Name,
		Description: r.Description,
		Content:     r.Content,
		Category:    r.Category,
	}
}

// ListTemplates lists system and user templates.
// GET /v1/templates
func (h *Handler) ListTemplates(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	templates, err := h.service.ListTemplates(c.Request().Context(), user.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	return c.JSON(http.StatusOK, templates)
}

// GetTemplate returns a template.
// GET /v1/templates/:id
func (h *Handler) GetTemplate(c echo.Context) error {
	tmpl, err := h.service.GetTemplate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, tmpl)
}

// CreateTemplate creates a user template.
// POST /v1/templates
func (h *Handler) CreateTemplate(c echo.Context) error {
	var req TemplateRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	tmpl, err := h.service.CreateTemplate(c.Request().Context(), user.ID, req.input())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, tmpl)
}

// UpdateTemplate edits a user template.
// PUT /v1/templates/:id
func (h *Handler) UpdateTemplate(c echo.Context) error {
	var req TemplateRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	tmpl, err := h.service.UpdateTemplate(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, tmpl)
}

// DeleteTemplate deletes a user template.
// DELETE /v1/templates/:id
func (h *Handler) DeleteTemplate(c echo.Context) error {
	if err := h.service.DeleteTemplate(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
