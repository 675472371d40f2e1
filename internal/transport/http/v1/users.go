package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=100"`
	Email          *string `json:"email" validate:"omitempty,email,max=255"`
	Title          *string `json:"title" validate:"omitempty,max=200"`
	Specialty      *string `json:"specialty" validate:"omitempty,oneof=life business career other"`
	Timezone       *string `json:"timezone" validate:"omitempty,max=50"`
	EmailSignature *string `json:"email_signature" validate:"omitempty,max=5000"`
}

// OnboardingRequest completes the first-run setup.
type OnboardingRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Specialty   string  `json:"specialty" validate:"required,oneof=life business career other"`
	ClientName  *string `json:"client_name" validate:"omitempty,min=1,max=100"`
	ClientEmail *string `json:"client_email" validate:"omitempty,email,max=255"`
}

// OnboardingResponse reports the completed setup.
type OnboardingResponse struct {
	Success bool `json:"success"`
	*domain.OnboardingResult
}

// UserResponse is the profile together with the current AI quota.
type UserResponse struct {
	*domain.User
	Quota *domain.QuotaStatus `json:"quota"`
}

// GetCurrentUser returns the coach profile.
// GET /v1/users/me
func (h *Handler) GetCurrentUser(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return h.userResponse(c, user)
}

// UpdateCurrentUser edits the coach profile.
// PUT /v1/users/me
func (h *Handler) UpdateCurrentUser(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	updated, err := h.service.UpdateProfile(c.Request().Context(), user.ID, domain.UserUpdate{
		Name:           req.Name,
		Email:          req.Email,
		Title:          req.Title,
		Specialty:      req.Specialty,
		Timezone:       req.Timezone,
		EmailSignature: req.EmailSignature,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return h.userResponse(c, updated)
}

// CompleteOnboarding stores the coach's profile and optionally the first client.
// POST /v1/onboarding/complete
func (h *Handler) CompleteOnboarding(c echo.Context) error {
	var req OnboardingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, errInvalidBody.Error())
	}
	if req.ClientEmail != nil && *req.ClientEmail == "" {
		req.ClientEmail = nil
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	result, err := h.service.CompleteOnboarding(c.Request().Context(), user.ID, domain.Onboarding{
		Name:        req.Name,
		Specialty:   req.Specialty,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, OnboardingResponse{Success: true, OnboardingResult: result})
}

// ListUsageLogs lists the coach's AI usage history.
// GET /v1/users/me/usage
func (h *Handler) ListUsageLogs(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	logs, err := h.service.ListUsageLogs(c.Request().Context(), user.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	if logs == nil {
		logs = []domain.UsageLog{}
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *Handler) userResponse(c echo.Context, user *domain.User) error {
	status, err := h.service.QuotaStatus(c.Request().Context(), user.ID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user, Quota: status})
}
