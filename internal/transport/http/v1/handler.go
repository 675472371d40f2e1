// Package v1 provides the versioned REST handlers.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ShotaHirabayashi/coachcanvas/internal/service"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	logger  zerolog.Logger
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the v1 routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Sessions
	e.GET("/v1/sessions", h.ListSessions)
	e.POST("/v1/sessions", h.CreateSession)
	e.GET("/v1/sessions/:id", h.GetSession)
	e.PUT("/v1/sessions/:id", h.UpdateSession)
	e.DELETE("/v1/sessions/:id", h.DeleteSession)

	// Notes
	e.GET("/v1/sessions/:id/note", h.GetNote)
	e.PUT("/v1/sessions/:id/note", h.SaveNote)
	e.PATCH("/v1/sessions/:id/note/autosave", h.AutosaveNote)

	// AI generation and summary history
	e.POST("/v1/sessions/:id/ai/summary", h.GenerateSummary)
	e.POST("/v1/sessions/:id/ai/follow-up", h.GenerateFollowUp)
	e.GET("/v1/sessions/:id/ai/summaries", h.ListSummaries)
	e.PUT("/v1/sessions/:id/ai/summaries/:summary_id", h.UpdateSummary)

	// Follow-up emails
	e.GET("/v1/sessions/:id/follow-up-emails", h.ListEmails)
	e.POST("/v1/sessions/:id/follow-up-emails", h.CreateEmail)
	e.PUT("/v1/sessions/:id/follow-up-emails/:email_id", h.UpdateEmail)
	e.DELETE("/v1/sessions/:id/follow-up-emails/:email_id", h.DeleteEmail)
	e.POST("/v1/sessions/:id/follow-up-emails/:email_id/send", h.SendEmail)
	e.GET("/v1/follow-ups/pending", h.PendingFollowUps)

	// Users
	e.GET("/v1/users/me", h.GetCurrentUser)
	e.PUT("/v1/users/me", h.UpdateCurrentUser)
	e.GET("/v1/users/me/usage", h.ListUsageLogs)
	e.POST("/v1/onboarding/complete", h.CompleteOnboarding)

	e.GET("/v1/dashboard", h.GetDashboard)

	// Clients
	e.GET("/v1/clients", h.ListClients)
	e.POST("/v1/clients", h.CreateClient)
	e.GET("/v1/clients/:id", h.GetClient)
	e.PUT("/v1/clients/:id", h.UpdateClient)
	e.DELETE("/v1/clients/:id", h.DeleteClient)
	e.POST("/v1/clients/:id/archive", h.ToggleClientArchive)
	e.GET("/v1/clients/:id/goal-scores", h.ListGoalScores)
	e.POST("/v1/clients/:id/goal-scores", h.CreateGoalScore)

	// Templates
	e.GET("/v1/templates", h.ListTemplates)
	e.POST("/v1/templates", h.CreateTemplate)
	e.GET("/v1/templates/:id", h.GetTemplate)
	e.PUT("/v1/templates/:id", h.UpdateTemplate)
	e.DELETE("/v1/templates/:id", h.DeleteTemplate)

	e.GET("/v1/search", h.Search)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}
