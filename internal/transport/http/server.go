// Package http provides the HTTP server implementation for coachcanvas.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ShotaHirabayashi/coachcanvas/internal/config"
	applog "github.com/ShotaHirabayashi/coachcanvas/internal/log"
	"github.com/ShotaHirabayashi/coachcanvas/internal/service"
	v1 "github.com/ShotaHirabayashi/coachcanvas/internal/transport/http/v1"
	"github.com/ShotaHirabayashi/coachcanvas/internal/transport/ws"
)

// Server is the REST API plus the live note channel.
type Server struct {
	echo   *echo.Echo
	live   *ws.Server
	logger zerolog.Logger
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *service.Service, cfg *config.Config, logger zerolog.Logger) *Server {
	httpLogger := applog.Component(logger, "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.StdLogger = applog.StdErrorLogger(httpLogger)
	e.Validator = v1.NewValidator()

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig(httpLogger)))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc, httpLogger)
	live := ws.NewServer(svc, cfg.AutosaveDebounce, applog.Component(logger, "ws"))

	// Register Routes
	v1Handler.RegisterRoutes(e)
	live.RegisterRoutes(e)

	return &Server{echo: e, live: live, logger: httpLogger}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("http server listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown writes pending autosaves and stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.live.Close()
	return s.echo.Shutdown(ctx)
}

func requestLoggerConfig(logger zerolog.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil {
				event = logger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}
}
