package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// CreateEmailRequest is a manually written follow-up email.
type CreateEmailRequest struct {
	RecipientEmail string `json:"recipient_email" validate:"required,email,max=255"`
	Subject        string `json:"subject" validate:"required,max=200"`
	Body           string `json:"body" validate:"required,max=10000"`
}

// UpdateEmailRequest is a partial edit of an email.
type UpdateEmailRequest struct {
	Subject        *string `json:"subject" validate:"omitempty,min=1,max=200"`
	Body           *string `json:"body" validate:"omitempty,min=1,max=10000"`
	RecipientEmail *string `json:"recipient_email" validate:"omitempty,email,max=255"`
}

// ListEmails lists a session's emails, newest first.
// GET /v1/sessions/:id/follow-up-emails
func (h *Handler) ListEmails(c echo.Context) error {
	emails, err := h.service.ListEmails(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	if emails == nil {
		emails = []domain.FollowUpEmail{}
	}
	return c.JSON(http.StatusOK, emails)
}

// CreateEmail stores a draft email.
// POST /v1/sessions/:id/follow-up-emails
func (h *Handler) CreateEmail(c echo.Context) error {
	var req CreateEmailRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	email, err := h.service.CreateEmail(c.Request().Context(), c.Param("id"), domain.EmailDraft{
		RecipientEmail: req.RecipientEmail,
		Subject:        req.Subject,
		Body:           req.Body,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, email)
}

// UpdateEmail edits an email's content.
// PUT /v1/sessions/:id/follow-up-emails/:email_id
func (h *Handler) UpdateEmail(c echo.Context) error {
	var req UpdateEmailRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	email, err := h.service.UpdateEmail(c.Request().Context(), c.Param("id"), c.Param("email_id"), domain.EmailUpdate{
		Subject:        req.Subject,
		Body:           req.Body,
		RecipientEmail: req.RecipientEmail,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, email)
}

// SendEmail marks an email as sent.
// POST /v1/sessions/:id/follow-up-emails/:email_id/send
func (h *Handler) SendEmail(c echo.Context) error {
	email, err := h.service.SendEmail(c.Request().Context(), c.Param("id"), c.Param("email_id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, email)
}

// DeleteEmail removes an email.
// DELETE /v1/sessions/:id/follow-up-emails/:email_id
func (h *Handler) DeleteEmail(c echo.Context) error {
	if err := h.service.DeleteEmail(c.Request().Context(), c.Param("id"), c.Param("email_id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// PendingFollowUps counts completed sessions without a sent follow-up.
// GET /v1/follow-ups/pending
func (h *Handler) PendingFollowUps(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	count, err := h.service.PendingFollowUps(c.Request().Context(), user.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}
