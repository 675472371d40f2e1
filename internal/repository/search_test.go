package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

func TestSanitizeFTS(t *testing.T) {
	assert.Equal(t, `"fix" "auth" "bug"`, sanitizeFTS("fix auth bug"))
	assert.Equal(t, `"quoted"`, sanitizeFTS(`"quoted"`))
	assert.Equal(t, `"its"`, sanitizeFTS(`it's`))
	assert.Equal(t, "", sanitizeFTS(`  "" `))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := defaultUser(t, s)

	company := "Acme Corp"
	acme, err := s.CreateClient(ctx, u.ID, domain.ClientInput{Name: strPtr("Hanako"), Company: &company})
	require.NoError(t, err)
	taro := createClient(t, s, u.ID, "Taro")

	english := createSession(t, s, u.ID, acme.ID, time.Now())
	_, err = s.SaveNote(ctx, english.ID, "## Career\n- negotiate promotion", "")
	require.NoError(t, err)

	japanese := createSession(t, s, u.ID, taro.ID, time.Now())
	_, err = s.SaveNote(ctx, japanese.ID, "## テーマ\n目標設定について話した", "")
	require.NoError(t, err)

	t.Run("clients by company", func(t *testing.T) {
		result, err := s.Search(ctx, u.ID, "acme", domain.SearchTypeClients, 10)
		require.NoError(t, err)
		require.Len(t, result.Clients, 1)
		assert.Equal(t, acme.ID, result.Clients[0].ID)
		assert.Empty(t, result.Sessions)
	})

	t.Run("sessions by full-text index", func(t *testing.T) {
		result, err := s.Search(ctx, u.ID, "promotion", domain.SearchTypeSessions, 10)
		require.NoError(t, err)
		require.Len(t, result.Sessions, 1)
		assert.Equal(t, english.ID, result.Sessions[0].ID)
		assert.Equal(t, "Hanako", result.Sessions[0].ClientName)
		assert.Equal(t, "Career\nnegotiate promotion", result.Sessions[0].Snippet)
	})

	t.Run("substring falls back to LIKE", func(t *testing.T) {
		result, err := s.Search(ctx, u.ID, "目標", domain.SearchTypeAll, 10)
		require.NoError(t, err)
		require.Len(t, result.Sessions, 1)
		assert.Equal(t, japanese.ID, result.Sessions[0].ID)
	})

	t.Run("snippet is truncated", func(t *testing.T) {
		long := createSession(t, s, u.ID, taro.ID, time.Now())
		_, err := s.SaveNote(ctx, long.ID, "zebra "+strings.Repeat("あ", 300), "")
		require.NoError(t, err)

		result, err := s.Search(ctx, u.ID, "zebra", domain.SearchTypeSessions, 10)
		require.NoError(t, err)
		require.Len(t, result.Sessions, 1)
		assert.Equal(t, 200, len([]rune(result.Sessions[0].Snippet)))
	})

	t.Run("deleted clients are hidden", func(t *testing.T) {
		require.NoError(t, s.SoftDeleteClient(ctx, taro.ID))
		result, err := s.Search(ctx, u.ID, "taro", domain.SearchTypeClients, 10)
		require.NoError(t, err)
		assert.Empty(t, result.Clients)
	})
}

func strPtr(s string) *string {
	return &s
}
