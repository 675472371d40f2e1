// Package config provides configuration for coachcanvas.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFreePlanLimit is the monthly AI allowance of the free plan.
	DefaultFreePlanLimit = 5
	// DefaultPlanLimit applies to any plan without an explicit entry.
	DefaultPlanLimit = 999
)

// Config holds the coachcanvas configuration.
type Config struct {
	// Server settings
	HTTPPort int
	Env      string

	// Database
	DatabaseURL string

	// Logging
	LogLevel string

	// AI generation
	AIMode                string
	Plans                 PlanLimits
	QuotaLocation         *time.Location
	SummaryVersionRetries int

	// Notes and email
	AutosaveDebounce    time.Duration
	AllowSentEmailEdits bool
	FallbackRecipient   string
}

// PlanLimits maps plan names to their monthly AI allowance.
type PlanLimits struct {
	Plans        map[string]int `yaml:"plans"`
	DefaultLimit int            `yaml:"default_limit"`
}

// DefaultPlanLimits returns the built-in plan table.
func DefaultPlanLimits() PlanLimits {
	return PlanLimits{
		Plans:        map[string]int{"free": DefaultFreePlanLimit},
		DefaultLimit: DefaultPlanLimit,
	}
}

// Limit returns the allowance for plan.
func (p PlanLimits) Limit(plan string) int {
	if limit, ok := p.Plans[plan]; ok {
		return limit
	}
	return p.DefaultLimit
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:              getEnvInt("HTTP_PORT", 8080),
		Env:                   getEnv("ENV", "development"),
		DatabaseURL:           getEnv("DATABASE_URL", "file:coachcanvas.db?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		AIMode:                getEnv("AI_MODE", "mock"),
		Plans:                 DefaultPlanLimits(),
		SummaryVersionRetries: getEnvInt("SUMMARY_VERSION_RETRIES", 5),
		AutosaveDebounce:      time.Duration(getEnvInt("AUTOSAVE_DEBOUNCE_MS", 500)) * time.Millisecond,
		AllowSentEmailEdits:   getEnvBool("ALLOW_SENT_EMAIL_EDITS", true),
		FallbackRecipient:     getEnv("FALLBACK_RECIPIENT", "client@example.com"),
	}

	loc, err := time.LoadLocation(getEnv("QUOTA_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("failed to load quota timezone: %w", err)
	}
	cfg.QuotaLocation = loc

	if path := os.Getenv("PLANS_FILE"); path != "" {
		plans, err := LoadPlanLimits(path)
		if err != nil {
			return nil, err
		}
		cfg.Plans = plans
	}

	return cfg, nil
}

// LoadPlanLimits reads a YAML plan table from path.
func LoadPlanLimits(path string) (PlanLimits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanLimits{}, fmt.Errorf("failed to read plans file: %w", err)
	}
	return ParsePlanLimits(data)
}

// ParsePlanLimits decodes a YAML plan table.
func ParsePlanLimits(data []byte) (PlanLimits, error) {
	plans := PlanLimits{DefaultLimit: DefaultPlanLimit}
	if err := yaml.Unmarshal(data, &plans); err != nil {
		return PlanLimits{}, fmt.Errorf("failed to parse plans file: %w", err)
	}
	if plans.Plans == nil {
		plans.Plans = map[string]int{}
	}
	for name, limit := range plans.Plans {
		if limit < 0 {
			return PlanLimits{}, fmt.Errorf("plan %q has negative limit %d", name, limit)
		}
	}
	return plans, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
