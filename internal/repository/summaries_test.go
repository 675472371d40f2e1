package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

func generated(text string) domain.GeneratedSummary {
	return domain.GeneratedSummary{
		SummaryText: text,
		ActionItems: []domain.ActionItem{{Item: "follow up", Done: false}},
		NextAgenda:  "next",
		Model:       "mock",
	}
}

func TestSummaryVersions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := defaultUser(t, s)
	c := createClient(t, s, u.ID, "Client")
	sess := createSession(t, s, u.ID, c.ID, time.Now())

	latest, err := s.GetLatestSummary(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	v1, err := s.CreateSummary(ctx, sess.ID, generated("first"))
	require.NoError(t, err)
	v2, err := s.CreateSummary(ctx, sess.ID, generated("second"))
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.Equal(t, 2, v2.Version)
	require.NotNil(t, v1.ActionItems)
	assert.JSONEq(t, `[{"item":"follow up","done":false}]`, *v1.ActionItems)

	latest, err = s.GetLatestSummary(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)

	all, err := s.ListSummaries(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 2, all[0].Version)
	assert.Equal(t, 1, all[1].Version)

	t.Run("editing an old version keeps its identity", func(t *testing.T) {
		text := "corrected"
		edited, err := s.UpdateSummary(ctx, v1.ID, domain.SummaryUpdate{SummaryText: &text})
		require.NoError(t, err)
		assert.Equal(t, "corrected", edited.SummaryText)
		assert.Equal(t, 1, edited.Version)
		assert.Equal(t, sess.ID, edited.SessionID)
		assert.Equal(t, *v1.ActionItems, *edited.ActionItems)

		latest, err := s.GetLatestSummary(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, v2.ID, latest.ID)
		assert.Equal(t, "second", latest.SummaryText)
	})

	t.Run("unknown id", func(t *testing.T) {
		text := "x"
		got, err := s.UpdateSummary(ctx, "missing", domain.SummaryUpdate{SummaryText: &text})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := s.CreateSummary(ctx, "missing", generated("x"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCreateSummaryConcurrent(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/summaries.db"
	s, err := NewSQLiteStore(fmt.Sprintf("file:%s?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	u := defaultUser(t, s)
	c := createClient(t, s, u.ID, "Client")
	sess := createSession(t, s, u.ID, c.ID, time.Now())

	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateSummary(ctx, sess.ID, generated(fmt.Sprintf("summary %d", i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := s.ListSummaries(ctx, sess.ID)
	require.NoError(t, err)
	versions := make([]int, 0, len(all))
	for _, sum := range all {
		versions = append(versions, sum.Version)
	}
	sort.Ints(versions)

	want := make([]int, n)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, versions)
}

func TestCreateSummaryRetriesVersionConflicts(t *testing.T) {
	conflict := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}

	conflictingHook := func(failures *int) storeHooks {
		return storeHooks{
			exec: func(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
				if strings.HasPrefix(query, "INSERT INTO ai_summaries") && *failures > 0 {
					*failures--
					return nil, conflict
				}
				return q.ExecContext(ctx, query, args...)
			},
		}
	}

	t.Run("conflict then success", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t)
		u := defaultUser(t, s)
		c := createClient(t, s, u.ID, "Client")
		sess := createSession(t, s, u.ID, c.ID, time.Now())

		failures := 2
		s.hooks = conflictingHook(&failures)
		sum, err := s.CreateSummary(ctx, sess.ID, generated("retry"))
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Version)
		assert.Equal(t, 0, failures)
	})

	t.Run("retries exhausted", func(t *testing.T) {
		ctx := context.Background()
		s := newTestStore(t, WithVersionRetries(3))
		u := defaultUser(t, s)
		c := createClient(t, s, u.ID, "Client")
		sess := createSession(t, s, u.ID, c.ID, time.Now())

		failures := 100
		s.hooks = conflictingHook(&failures)
		_, err := s.CreateSummary(ctx, sess.ID, generated("never"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStorage)
		assert.Equal(t, 97, failures)
		assert.Equal(t, 0, countRows(t, s, `SELECT COUNT(*) FROM ai_summaries`))
	})
}
