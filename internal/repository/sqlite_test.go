package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

func newTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:", opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func defaultUser(t *testing.T, s *SQLiteStore) *domain.User {
	t.Helper()

	u, err := s.GetDefaultUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func createClient(t *testing.T, s *SQLiteStore, userID, name string) *domain.ClientWithStats {
	t.Helper()

	c, err := s.CreateClient(context.Background(), userID, domain.ClientInput{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func createSession(t *testing.T, s *SQLiteStore, userID, clientID string, at time.Time) *domain.Session {
	t.Helper()

	sess, err := s.CreateSession(context.Background(), domain.NewSession{
		UserID:      userID,
		ClientID:    clientID,
		ScheduledAt: at,
	})
	require.NoError(t, err)
	return sess
}

func countRows(t *testing.T, s *SQLiteStore, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, s.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestNewSQLiteStoreSeedsDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := defaultUser(t, s)
	assert.Equal(t, DefaultUserEmail, u.Email)
	assert.Equal(t, "free", u.Plan)
	assert.Equal(t, 0, u.AIUsageCount)
	assert.Nil(t, u.AIUsageResetAt)

	templates, err := s.ListTemplates(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	for _, tmpl := range templates {
		assert.True(t, tmpl.IsSystem)
	}
	assert.Equal(t, "ライフコーチング", templates[0].Name)
}

func TestMigrationStatus(t *testing.T) {
	s := newTestStore(t)

	current, latest, err := s.MigrationStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest)
	assert.Equal(t, latest, current)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.seed(context.Background()))
	assert.Equal(t, 1, countRows(t, s, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 3, countRows(t, s, `SELECT COUNT(*) FROM templates`))
}

func TestUpdateAIUsage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := defaultUser(t, s)

	reset := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	updated, err := s.UpdateAIUsage(ctx, u.ID, func(user *domain.User) error {
		user.AIUsageCount = 3
		user.AIUsageResetAt = &reset
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.AIUsageCount)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AIUsageCount)
	require.NotNil(t, got.AIUsageResetAt)
	assert.True(t, reset.Equal(*got.AIUsageResetAt))

	t.Run("apply error rolls back", func(t *testing.T) {
		_, err := s.UpdateAIUsage(ctx, u.ID, func(user *domain.User) error {
			user.AIUsageCount = 99
			return domain.NewValidationError("user", "nope")
		})
		assert.ErrorIs(t, err, domain.ErrValidation)

		got, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.AIUsageCount)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.UpdateAIUsage(ctx, "missing", func(*domain.User) error { return nil })
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTemplatesSystemImmutable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := defaultUser(t, s)

	templates, err := s.ListTemplates(ctx, u.ID)
	require.NoError(t, err)
	name := "changed"

	_, err = s.UpdateTemplate(ctx, templates[0].ID, domain.TemplateInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, s.DeleteTemplate(ctx, templates[0].ID), domain.ErrValidation)

	content := "## Custom"
	custom, err := s.CreateTemplate(ctx, u.ID, domain.TemplateInput{Name: &name, Content: &content})
	require.NoError(t, err)
	assert.False(t, custom.IsSystem)

	newName := "renamed"
	updated, err := s.UpdateTemplate(ctx, custom.ID, domain.TemplateInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, content, updated.Content)

	require.NoError(t, s.DeleteTemplate(ctx, custom.ID))
	assert.ErrorIs(t, s.DeleteTemplate(ctx, custom.ID), domain.ErrNotFound)
}

func TestClients(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := defaultUser(t, s)

	alice := createClient(t, s, u.ID, "Alice")
	createClient(t, s, u.ID, "Bob")
	createSession(t, s, u.ID, alice.ID, time.Now())

	clients, total, err := s.ListClients(ctx, u.ID, domain.ClientFilter{Search: "ali"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, clients, 1)
	assert.Equal(t, 1, clients[0].SessionCount)

	archived, err := s.ToggleClientArchive(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusArchived, archived.Status)

	_, total, err = s.ListClients(ctx, u.ID, domain.ClientFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = s.ListClients(ctx, u.ID, domain.ClientFilter{Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	require.NoError(t, s.SoftDeleteClient(ctx, alice.ID))
	got, err := s.GetClient(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
