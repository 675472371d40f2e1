package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "AI_MODE", "AUTOSAVE_DEBOUNCE_MS", "ALLOW_SENT_EMAIL_EDITS", "PLANS_FILE", "QUOTA_TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "mock", cfg.AIMode)
	assert.Equal(t, 500*time.Millisecond, cfg.AutosaveDebounce)
	assert.True(t, cfg.AllowSentEmailEdits)
	assert.Equal(t, "client@example.com", cfg.FallbackRecipient)
	assert.Equal(t, time.UTC, cfg.QuotaLocation)
	assert.Equal(t, 5, cfg.Plans.Limit("free"))
	assert.Equal(t, 999, cfg.Plans.Limit("pro"))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("AUTOSAVE_DEBOUNCE_MS", "not-a-number")
	t.Setenv("ALLOW_SENT_EMAIL_EDITS", "false")
	t.Setenv("QUOTA_TIMEZONE", "Asia/Tokyo")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 500*time.Millisecond, cfg.AutosaveDebounce)
	assert.False(t, cfg.AllowSentEmailEdits)
	assert.Equal(t, "Asia/Tokyo", cfg.QuotaLocation.String())
}

func TestLoadPlansFile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte("plans:\n  free: 3\n  team: 50\ndefault_limit: 100\n"), 0o600))
		t.Setenv("PLANS_FILE", path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Plans.Limit("free"))
		assert.Equal(t, 50, cfg.Plans.Limit("team"))
		assert.Equal(t, 100, cfg.Plans.Limit("enterprise"))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("PLANS_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative limit", func(t *testing.T) {
		_, err := ParsePlanLimits([]byte("plans:\n  free: -1\n"))
		assert.Error(t, err)
	})

	t.Run("default limit kept when omitted", func(t *testing.T) {
		plans, err := ParsePlanLimits([]byte("plans:\n  free: 5\n"))
		require.NoError(t, err)
		assert.Equal(t, DefaultPlanLimit, plans.Limit("pro"))
	})
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"staging", true},
		{"production", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.IsDevelopment())
		})
	}
}
