package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// respondError maps service errors to HTTP responses.
func (h *Handler) respondError(c echo.Context, err error) error {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		quotaErr      *domain.QuotaExceededError
	)
	switch {
	case errors.As(err, &quotaErr):
		return c.JSON(http.StatusForbidden, map[string]any{
			"error": quotaErr.Error(),
			"code":  quotaErr.Code,
			"count": quotaErr.Count,
			"limit": quotaErr.Limit,
		})
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": validationErr.Error()})
	case errors.As(err, &notFoundErr):
		return c.JSON(http.StatusNotFound, map[string]string{"error": notFoundErr.Error()})
	default:
		h.logger.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

var errInvalidBody = errors.New("invalid request body")

// bind decodes and validates a request body. The returned error text is
// suitable for a 400 response.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errInvalidBody
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime accepts RFC 3339 and the zone-less forms sent by date pickers,
// which are read as UTC.
func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("invalid time: " + value)
}

func queryInt(c echo.Context, name string, defaultVal int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func queryTime(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := parseTime(v)
	if err != nil {
		return nil, errors.New(name + " must be a date or timestamp")
	}
	return &t, nil
}

// nullableInt distinguishes an absent JSON field from an explicit null.
type nullableInt struct {
	Set   bool
	Value *int
}

func (n *nullableInt) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (h *Handler) currentUser(c echo.Context) (*domain.User, error) {
	return h.service.CurrentUser(c.Request().Context())
}
