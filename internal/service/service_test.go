package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShotaHirabayashi/coachcanvas/internal/adapter/ai"
	"github.com/ShotaHirabayashi/coachcanvas/internal/config"
	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
	applog "github.com/ShotaHirabayashi/coachcanvas/internal/log"
	"github.com/ShotaHirabayashi/coachcanvas/internal/quota"
	"github.com/ShotaHirabayashi/coachcanvas/internal/repository"
	"github.com/ShotaHirabayashi/coachcanvas/policy"
	"github.com/ShotaHirabayashi/coachcanvas/tests/helpers"
)

type fixture struct {
	svc   *Service
	store *store.SQLiteStore
	user  *domain.User
	cfg   *config.Config
	now   time.Time
}

type failingGenerator struct{}

func (failingGenerator) GenerateSummary(ctx context.Context, noteContent string) (*domain.GeneratedSummary, error) {
	return nil, errors.New("model unavailable")
}

func (failingGenerator) GenerateFollowUp(ctx context.Context, noteContent, clientName, summaryText string) (*domain.GeneratedEmail, error) {
	return nil, errors.New("model unavailable")
}

func newFixture(t *testing.T, generator ai.Generator) *fixture {
	t.Helper()
	return newFixtureOn(t, helpers.NewTestSQLiteStore(t), generator)
}

func newFixtureOn(t *testing.T, db *store.SQLiteStore, generator ai.Generator) *fixture {
	t.Helper()

	f := &fixture{now: time.Date(2025, 5, 10, 3, 0, 0, 0, time.UTC)}
	f.store = db
	f.cfg = &config.Config{
		Plans:               config.DefaultPlanLimits(),
		QuotaLocation:       time.UTC,
		AllowSentEmailEdits: true,
		FallbackRecipient:   "client@example.com",
	}

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)
	tracker := quota.New(f.store, f.cfg.Plans, engine,
		quota.WithClock(func() time.Time { return f.now }),
		quota.WithLocation(f.cfg.QuotaLocation))

	if generator == nil {
		generator = ai.NewMockGenerator()
	}
	f.svc = New(f.store, generator, tracker, f.cfg, applog.Nop(),
		WithClock(func() time.Time { return f.now }))

	f.user, err = f.svc.CurrentUser(context.Background())
	require.NoError(t, err)
	return f
}

func (f *fixture) client(t *testing.T, name string, email *string) *domain.ClientWithStats {
	t.Helper()
	c, err := f.svc.CreateClient(context.Background(), f.user.ID, domain.ClientInput{Name: &name, Email: email})
	require.NoError(t, err)
	return c
}

func (f *fixture) session(t *testing.T, clientID string, at time.Time) *domain.Session {
	t.Helper()
	sess, err := f.svc.CreateSession(context.Background(), domain.NewSession{
		UserID:      f.user.ID,
		ClientID:    clientID,
		ScheduledAt: at,
	})
	require.NoError(t, err)
	return sess
}

func (f *fixture) usageCount(t *testing.T) int {
	t.Helper()
	u, err := f.store.GetUser(context.Background(), f.user.ID)
	require.NoError(t, err)
	return u.AIUsageCount
}

func TestShortNoteIsRejectedWithoutConsumingQuota(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)

	sess := f.session(t, c.ID, f.now)
	require.NotNil(t, sess.SessionNumber)
	assert.Equal(t, 1, *sess.SessionNumber)

	_, err := f.svc.SaveNote(ctx, sess.ID, "hi", "")
	require.NoError(t, err)

	_, _, err = f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.usageCount(t))

	t.Run("whitespace does not count", func(t *testing.T) {
		_, err := f.svc.SaveNote(ctx, sess.ID, "   123456789   \n\n", "")
		require.NoError(t, err)
		_, _, err = f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing note", func(t *testing.T) {
		other := f.session(t, c.ID, f.now)
		_, _, err := f.svc.GenerateSummary(ctx, f.user.ID, other.ID)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 0, f.usageCount(t))
	})
}

func TestGenerateSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)
	sess := f.session(t, c.ID, f.now)

	_, err := f.svc.SaveNote(ctx, sess.ID, "## テーマ\n目標設定\n振り返り", "")
	require.NoError(t, err)

	summary, usage, err := f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
	require.NoError(t, err)
	assert.Contains(t, summary.SummaryText, "セッション要約")
	assert.Contains(t, summary.SummaryText, "テーマ")
	assert.Equal(t, 1, summary.Version)
	assert.Equal(t, ai.MockModel, summary.Model)

	items, err := summary.ParsedActionItems()
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.NotEmpty(t, items[0].Item)

	assert.Equal(t, domain.QuotaUsage{Count: 1, Limit: 5}, *usage)
	assert.Equal(t, 1, f.usageCount(t))

	logs, err := f.svc.ListUsageLogs(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AIFeatureSummary, logs[0].Feature)
	require.NotNil(t, logs[0].SessionID)
	assert.Equal(t, sess.ID, *logs[0].SessionID)
}

func TestGenerateSummaryConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixtureOn(t, helpers.NewTestFileStore(t), nil)
	c := f.client(t, "X", nil)
	sess := f.session(t, c.ID, f.now)
	_, err := f.svc.SaveNote(ctx, sess.ID, "## Plan\n- Goal A\n- Goal B", "")
	require.NoError(t, err)

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	summaries, err := f.svc.ListSummaries(ctx, sess.ID)
	require.NoError(t, err)
	versions := make([]int, 0, len(summaries))
	for _, sum := range summaries {
		versions = append(versions, sum.Version)
	}
	sort.Ints(versions)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, versions)

	assert.Equal(t, n, f.usageCount(t))
	logs, err := f.svc.ListUsageLogs(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, logs, n)
}

func TestGenerateSummaryUnknownSession(t *testing.T) {
	f := newFixture(t, nil)
	_, _, err := f.svc.GenerateSummary(context.Background(), f.user.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.usageCount(t))
}

func TestGeneratorFailureConsumesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, failingGenerator{})
	c := f.client(t, "X", nil)
	sess := f.session(t, c.ID, f.now)
	_, err := f.svc.SaveNote(ctx, sess.ID, "a long enough note", "")
	require.NoError(t, err)

	_, _, err = f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
	require.Error(t, err)
	_, _, err = f.svc.GenerateFollowUp(ctx, f.user.ID, sess.ID)
	require.Error(t, err)

	assert.Equal(t, 0, f.usageCount(t))
	summaries, err := f.svc.ListSummaries(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestFreePlanQuota(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)
	sess := f.session(t, c.ID, f.now)
	_, err := f.svc.SaveNote(ctx, sess.ID, "## Plan\n- Goal A\n- Goal B", "")
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		summary, usage, err := f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
		require.NoError(t, err, "generation %d", i)
		assert.Equal(t, i, summary.Version)
		assert.Equal(t, i, usage.Count)
	}

	status, err := f.svc.QuotaStatus(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotaStatus{Allowed: false, Count: 5, Limit: 5}, *status)

	_, _, err = f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
	var quotaErr *domain.QuotaExceededError
	require.True(t, errors.As(err, &quotaErr))
	assert.Equal(t, domain.QuotaCodeAILimit, quotaErr.Code)
	assert.Equal(t, 5, quotaErr.Count)
	assert.Equal(t, 5, quotaErr.Limit)

	_, _, err = f.svc.GenerateFollowUp(ctx, f.user.ID, sess.ID)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	emails, err := f.svc.ListEmails(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, emails)
	assert.Equal(t, 5, f.usageCount(t))

	t.Run("next month unblocks", func(t *testing.T) {
		f.now = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
		status, err := f.svc.QuotaStatus(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuotaStatus{Allowed: true, Count: 0, Limit: 5}, *status)

		_, usage, err := f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, usage.Count)
	})
}

func TestSummaryVersionsAndEdits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)
	sess := f.session(t, c.ID, f.now)
	_, err := f.svc.SaveNote(ctx, sess.ID, "## Plan\n- Goal A", "")
	require.NoError(t, err)

	v1, _, err := f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
	require.NoError(t, err)
	v2, _, err := f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.Equal(t, 2, v2.Version)

	latest, err := f.svc.LatestSummary(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)

	text := "edited by the coach"
	edited, err := f.svc.UpdateSummary(ctx, sess.ID, v1.ID, domain.SummaryUpdate{SummaryText: &text})
	require.NoError(t, err)
	assert.Equal(t, 1, edited.Version)
	assert.Equal(t, text, edited.SummaryText)

	latest, err = f.svc.LatestSummary(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, latest.ID)
	assert.Equal(t, v2.SummaryText, latest.SummaryText)

	t.Run("invalid action items", func(t *testing.T) {
		bad := "not json"
		_, err := f.svc.UpdateSummary(ctx, sess.ID, v1.ID, domain.SummaryUpdate{ActionItems: &bad})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("summary of another session", func(t *testing.T) {
		other := f.session(t, c.ID, f.now)
		_, err := f.svc.UpdateSummary(ctx, other.ID, v1.ID, domain.SummaryUpdate{SummaryText: &text})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown summary", func(t *testing.T) {
		_, err := f.svc.UpdateSummary(ctx, sess.ID, "missing", domain.SummaryUpdate{SummaryText: &text})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGenerateFollowUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	t.Run("client without email uses the fallback recipient", func(t *testing.T) {
		c := f.client(t, "山田花子", nil)
		sess := f.session(t, c.ID, f.now)

		email, usage, err := f.svc.GenerateFollowUp(ctx, f.user.ID, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, "client@example.com", email.RecipientEmail)
		assert.Equal(t, domain.EmailStatusDraft, email.Status)
		assert.Contains(t, email.Body, "山田花子様")
		assert.Equal(t, 1, usage.Count)
	})

	t.Run("summary text is quoted", func(t *testing.T) {
		addr := "taro@example.com"
		c := f.client(t, "田中太郎", &addr)
		sess := f.session(t, c.ID, f.now)
		_, err := f.svc.SaveNote(ctx, sess.ID, "本日のテーマ\n目標振り返り", "")
		require.NoError(t, err)
		summary, _, err := f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
		require.NoError(t, err)

		email, _, err := f.svc.GenerateFollowUp(ctx, f.user.ID, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, addr, email.RecipientEmail)
		assert.Equal(t, ai.FollowUpSubject, email.Subject)
		assert.Contains(t, email.Body, summary.SummaryText)
	})

	logs, err := f.svc.ListUsageLogs(ctx, f.user.ID)
	require.NoError(t, err)
	features := make([]domain.AIFeature, 0, len(logs))
	for _, l := range logs {
		features = append(features, l.Feature)
	}
	assert.Equal(t, []domain.AIFeature{domain.AIFeatureFollowUp, domain.AIFeatureSummary, domain.AIFeatureFollowUp}, features)
}
