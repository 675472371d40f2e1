package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

func intPtr(i int) *int { return &i }

func TestCreateSessionValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)

	tests := []struct {
		name  string
		input domain.NewSession
		field string
	}{
		{"missing client", domain.NewSession{UserID: f.user.ID, ScheduledAt: f.now}, "client_id"},
		{"missing time", domain.NewSession{UserID: f.user.ID, ClientID: c.ID}, "scheduled_at"},
		{"zero duration", domain.NewSession{UserID: f.user.ID, ClientID: c.ID, ScheduledAt: f.now, DurationMinutes: intPtr(0)}, "duration_minutes"},
		{"too long", domain.NewSession{UserID: f.user.ID, ClientID: c.ID, ScheduledAt: f.now, DurationMinutes: intPtr(481)}, "duration_minutes"},
		{"unknown client", domain.NewSession{UserID: f.user.ID, ClientID: "missing", ScheduledAt: f.now}, "client_id"},
		{"unknown template", domain.NewSession{UserID: f.user.ID, ClientID: c.ID, ScheduledAt: f.now, TemplateID: "missing"}, "template_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateSession(ctx, tt.input)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	sess, err := f.svc.CreateSession(ctx, domain.NewSession{
		UserID: f.user.ID, ClientID: c.ID, ScheduledAt: f.now, DurationMinutes: intPtr(480),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, *sess.SessionNumber, "rejected attempts do not consume numbers")
	assert.Equal(t, domain.SessionStatusScheduled, sess.Status)
}

func TestCreateSessionFromTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)

	templates, err := f.svc.ListTemplates(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, templates)

	sess, err := f.svc.CreateSession(ctx, domain.NewSession{
		UserID: f.user.ID, ClientID: c.ID, ScheduledAt: f.now, TemplateID: templates[0].ID,
	})
	require.NoError(t, err)

	note, err := f.svc.GetNote(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, templates[0].Content, note.Content)
	assert.Equal(t, templates[0].Content, note.PlainText)
	require.NotNil(t, note.TemplateID)
	assert.Equal(t, templates[0].ID, *note.TemplateID)
}

func TestUpdateSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)
	sess := f.session(t, c.ID, f.now)

	completed := domain.SessionStatusCompleted
	updated, err := f.svc.UpdateSession(ctx, sess.ID, domain.SessionUpdate{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, updated.Status)
	assert.True(t, sess.ScheduledAt.Equal(updated.ScheduledAt))

	t.Run("any status may follow any other", func(t *testing.T) {
		scheduled := domain.SessionStatusScheduled
		updated, err := f.svc.UpdateSession(ctx, sess.ID, domain.SessionUpdate{Status: &scheduled})
		require.NoError(t, err)
		assert.Equal(t, domain.SessionStatusScheduled, updated.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		bogus := domain.SessionStatus("archived")
		_, err := f.svc.UpdateSession(ctx, sess.ID, domain.SessionUpdate{Status: &bogus})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := f.svc.UpdateSession(ctx, sess.ID, domain.SessionUpdate{DurationMinutes: intPtr(600)})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := f.svc.UpdateSession(ctx, "missing", domain.SessionUpdate{Status: &completed})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)
	sess := f.session(t, c.ID, f.now)
	_, err := f.svc.SaveNote(ctx, sess.ID, "enough text to summarise", "")
	require.NoError(t, err)
	_, _, err = f.svc.GenerateSummary(ctx, f.user.ID, sess.ID)
	require.NoError(t, err)
	_, _, err = f.svc.GenerateFollowUp(ctx, f.user.ID, sess.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSession(ctx, sess.ID))

	_, err = f.svc.GetSessionDetail(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	logs, err := f.svc.ListUsageLogs(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	assert.ErrorIs(t, f.svc.DeleteSession(ctx, sess.ID), domain.ErrNotFound)
}

func TestSessionDetailPreviousSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)

	jan := f.session(t, c.ID, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC))
	mar := f.session(t, c.ID, time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	// Created last but scheduled in between.
	feb := f.session(t, c.ID, time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC))

	_, err := f.svc.SaveNote(ctx, jan.ID, "January goals and reflections", "")
	require.NoError(t, err)
	janSummary, _, err := f.svc.GenerateSummary(ctx, f.user.ID, jan.ID)
	require.NoError(t, err)

	detail, err := f.svc.GetSessionDetail(ctx, feb.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.PreviousSummary)
	assert.Equal(t, janSummary.ID, detail.PreviousSummary.ID)
	assert.Equal(t, 3, *detail.SessionNumber)
	assert.Nil(t, detail.Note)
	assert.Nil(t, detail.Summary)
	assert.Empty(t, detail.Emails)

	detail, err = f.svc.GetSessionDetail(ctx, mar.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.PreviousSummary, "february has no summary")

	detail, err = f.svc.GetSessionDetail(ctx, jan.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.PreviousSummary)
	require.NotNil(t, detail.Note)
	require.NotNil(t, detail.Summary)
	assert.Equal(t, janSummary.ID, detail.Summary.ID)
	assert.True(t, detail.HasNote)
	assert.True(t, detail.HasSummary)
}

func TestSaveNote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)
	sess := f.session(t, c.ID, f.now)

	_, err := f.svc.SaveNote(ctx, sess.ID, "content", "missing-template")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.SaveNote(ctx, "missing", "content", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	note, err := f.svc.AutosaveNote(ctx, sess.ID, "## Draft")
	require.NoError(t, err)
	assert.Equal(t, "Draft", note.PlainText)
	assert.True(t, note.IsDraft)

	note, err = f.svc.SaveNote(ctx, sess.ID, "## Final", "")
	require.NoError(t, err)
	assert.Equal(t, "Final", note.PlainText)
	assert.False(t, note.IsDraft)

	_, err = f.svc.GetNote(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.client(t, "X", nil)
	f.session(t, c.ID, f.now)
	f.session(t, c.ID, f.now.Add(time.Hour))

	sessions, total, err := f.svc.ListSessions(ctx, f.user.ID, domain.SessionFilter{ClientID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, sessions, 2)
	assert.Equal(t, 2, *sessions[0].SessionNumber)

	_, _, err = f.svc.ListSessions(ctx, f.user.ID, domain.SessionFilter{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	from := f.now.Add(time.Hour)
	to := f.now
	_, _, err = f.svc.ListSessions(ctx, f.user.ID, domain.SessionFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
