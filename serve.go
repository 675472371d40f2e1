package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShotaHirabayashi/coachcanvas/internal/adapter/ai"
	"github.com/ShotaHirabayashi/coachcanvas/internal/config"
	applog "github.com/ShotaHirabayashi/coachcanvas/internal/log"
	"github.com/ShotaHirabayashi/coachcanvas/internal/quota"
	"github.com/ShotaHirabayashi/coachcanvas/internal/repository"
	"github.com/ShotaHirabayashi/coachcanvas/internal/service"
	transport "github.com/ShotaHirabayashi/coachcanvas/internal/transport/http"
	"github.com/ShotaHirabayashi/coachcanvas/policy"
)

var (
	servePort       int
	serveDatabase   string
	servePolicyFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the CoachCanvas HTTP API and live note channel.

Configuration is read from the environment (HTTP_PORT, DATABASE_URL,
LOG_LEVEL, PLANS_FILE, ...). Flags override the environment.

Examples:
  coachcanvas serve
  coachcanvas serve --port 9090 --db "file:dev.db?_foreign_keys=1"`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides HTTP_PORT)")
	serveCmd.Flags().StringVar(&serveDatabase, "db", "", "database DSN (overrides DATABASE_URL)")
	serveCmd.Flags().StringVar(&servePolicyFile, "policy", "", "rego file replacing the built-in AI usage policy")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.HTTPPort = servePort
	}
	if serveDatabase != "" {
		cfg.DatabaseURL = serveDatabase
	}

	logger := applog.New(cfg.IsDevelopment(), cfg.LogLevel)
	logger.Info().
		Int("port", cfg.HTTPPort).
		Str("env", cfg.Env).
		Str("ai_mode", cfg.AIMode).
		Msg("starting coachcanvas")

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL, store.WithVersionRetries(cfg.SummaryVersionRetries))
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	// Initialize policy engine
	ctx := context.Background()
	policyContent := policy.DefaultPolicy
	if servePolicyFile != "" {
		data, err := os.ReadFile(servePolicyFile)
		if err != nil {
			return fmt.Errorf("failed to read policy file: %w", err)
		}
		policyContent = string(data)
	}
	policyEngine, err := policy.NewEngine(ctx, policyContent)
	if err != nil {
		return fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	// Initialize AI generator
	generator, err := ai.NewGenerator(cfg.AIMode)
	if err != nil {
		return err
	}

	// Initialize quota tracker and service
	tracker := quota.New(db, cfg.Plans, policyEngine,
		quota.WithLocation(cfg.QuotaLocation),
		quota.WithLogger(applog.Component(logger, "quota")))
	svc := service.New(db, generator, tracker, cfg, applog.Component(logger, "service"))

	server := transport.NewServer(svc, cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(fmt.Sprintf(":%d", cfg.HTTPPort))
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info().Msg("shutting down coachcanvas")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server gracefully")
	}

	logger.Info().Msg("coachcanvas stopped")
	return nil
}
