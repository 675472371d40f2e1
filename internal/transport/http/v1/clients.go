package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// ClientRequest carries client fields for create and update.
type ClientRequest struct {
	Name                  *string `json:"name" validate:"omitempty,max=100"`
	Email                 *string `json:"email" validate:"omitempty,email,max=255"`
	Phone                 *string `json:"phone" validate:"omitempty,max=20"`
	Company               *string `json:"company" validate:"omitempty,max=200"`
	Goals                 *string `json:"goals" validate:"omitempty,max=5000"`
	Notes                 *string `json:"notes" validate:"omitempty,max=10000"`
	ContractStartDate     *string `json:"contract_start_date"`
	ContractEndDate       *string `json:"contract_end_date"`
	ContractTotalSessions *int    `json:"contract_total_sessions" validate:"omitempty,min=1,max=999"`
	ContractFee           *int    `json:"contract_fee" validate:"omitempty,min=0"`
}

func (r *ClientRequest) input() domain.ClientInput {
	return domain.ClientInput{
		Name:                  r.Name,
		Email:                 r.Email,
		Phone:                 r.Phone,
		Company:               r.Company,
		Goals:                 r.Goals,
		Notes:                 r.Notes,
		ContractStartDate:     r.ContractStartDate,
		ContractEndDate:       r.ContractEndDate,
		ContractTotalSessions: r.ContractTotalSessions,
		ContractFee:           r.ContractFee,
	}
}

// bindClient binds a ClientRequest. An empty email is treated as absent.
func bindClient(c echo.Context) (*ClientRequest, error) {
	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return nil, errInvalidBody
	}
	if req.Email != nil && *req.Email == "" {
		req.Email = nil
	}
	if err := c.Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// GoalScoreRequest records a goal rating.
type GoalScoreRequest struct {
	GoalLabel string  `json:"goal_label" validate:"required,max=100"`
	Score     int     `json:"score" validate:"min=1,max=10"`
	SessionID *string `json:"session_id"`
	Note      *string `json:"note" validate:"omitempty,max=1000"`
}

// ListClients lists clients.
// GET /v1/clients
func (h *Handler) ListClients(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	clients, total, err := h.service.ListClients(c.Request().Context(), user.ID, domain.ClientFilter{
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	})
	if err != nil {
		return h.respondError(c, err)
	}
	if clients == nil {
		clients = []domain.ClientWithStats{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"clients": clients,
		"total":   total,
	})
}

// CreateClient creates a client.
// POST /v1/clients
func (h *Handler) CreateClient(c echo.Context) error {
	req, err := bindClient(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.currentUser(c)
	if err != nil {
		return h.respondError(c, err)
	}

	client, err := h.service.CreateClient(c.Request().Context(), user.ID, req.input())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, client)
}

// GetClient returns a client with its five most recent sessions.
// GET /v1/clients/:id
func (h *Handler) GetClient(c echo.Context) error {
	client, err := h.service.GetClientDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// UpdateClient edits a client.
// PUT /v1/clients/:id
func (h *Handler) UpdateClient(c echo.Context) error {
	req, err := bindClient(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	client, err := h.service.UpdateClient(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// ToggleClientArchive flips a client between active and archived.
// POST /v1/clients/:id/archive
func (h *Handler) ToggleClientArchive(c echo.Context) error {
	client, err := h.service.ToggleClientArchive(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClient soft-deletes a client.
// DELETE /v1/clients/:id
func (h *Handler) DeleteClient(c echo.Context) error {
	if err := h.service.DeleteClient(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// ListGoalScores lists a client's goal ratings, oldest first.
// GET /v1/clients/:id/goal-scores
func (h *Handler) ListGoalScores(c echo.Context) error {
	scores, err := h.service.ListGoalScores(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	if scores == nil {
		scores = []domain.GoalScore{}
	}
	return c.JSON(http.StatusOK, scores)
}

// CreateGoalScore records a goal rating.
// POST /v1/clients/:id/goal-scores
func (h *Handler) CreateGoalScore(c echo.Context) error {
	var req GoalScoreRequest
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	score, err := h.service.CreateGoalScore(c.Request().Context(), &domain.GoalScore{
		ClientID:  c.Param("id"),
		SessionID: req.SessionID,
		GoalLabel: req.GoalLabel,
		Score:     req.Score,
		Note:      req.Note,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, score)
}
