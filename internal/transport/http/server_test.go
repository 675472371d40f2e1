package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShotaHirabayashi/coachcanvas/internal/adapter/ai"
	"github.com/ShotaHirabayashi/coachcanvas/internal/config"
	"github.com/ShotaHirabayashi/coachcanvas/internal/quota"
	"github.com/ShotaHirabayashi/coachcanvas/internal/service"
	"github.com/ShotaHirabayashi/coachcanvas/tests/helpers"
)

func newTestServer(t *testing.T, logs *bytes.Buffer) *Server {
	t.Helper()

	db := helpers.NewTestSQLiteStore(t)
	cfg := &config.Config{
		Plans:            config.DefaultPlanLimits(),
		QuotaLocation:    time.UTC,
		AutosaveDebounce: 10 * time.Millisecond,
	}
	logger := zerolog.New(logs)
	svc := service.New(db, ai.NewMockGenerator(), quota.New(db, cfg.Plans, nil), cfg, logger)

	s := NewServer(svc, cfg, logger)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s
}

func TestServerRoutesAndAccessLog(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, &logs)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), `"uri":"/health"`)
	assert.Contains(t, logs.String(), `"status":200`)

	req = httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"plan":"free"`)

	req = httptest.NewRequest(http.MethodGet, "/v1/nowhere", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidatorIsRegistered(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"scheduled_at":"2025-05-10T10:00"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "client_id is required")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &bytes.Buffer{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
