package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const summaryColumns = `id, session_id, summary_text, action_items, next_agenda, model, version, created_at`

func scanSummary(row scanner) (*domain.Summary, error) {
	var sum domain.Summary
	var actionItems, nextAgenda sql.NullString
	if err := row.Scan(&sum.ID, &sum.SessionID, &sum.SummaryText, &actionItems, &nextAgenda,
		&sum.Model, &sum.Version, &sum.CreatedAt); err != nil {
		return nil, err
	}
	sum.ActionItems = stringPtr(actionItems)
	sum.NextAgenda = stringPtr(nextAgenda)
	return &sum, nil
}

func (s *SQLiteStore) querySummary(ctx context.Context, q querier, query string, args ...any) (*domain.Summary, error) {
	sum, err := scanSummary(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get summary", err)
	}
	return sum, nil
}

// ListSummaries returns every version for a session, newest version first.
func (s *SQLiteStore) ListSummaries(ctx context.Context, sessionID string) ([]domain.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM ai_summaries WHERE session_id = ? ORDER BY version DESC`, sessionID)
	if err != nil {
		return nil, domain.NewStorageError("list summaries", err)
	}
	defer rows.Close()

	summaries := []domain.Summary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, domain.NewStorageError("list summaries", err)
		}
		summaries = append(summaries, *sum)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list summaries", err)
	}
	return summaries, nil
}

// GetLatestSummary returns the highest version for a session.
func (s *SQLiteStore) GetLatestSummary(ctx context.Context, sessionID string) (*domain.Summary, error) {
	return s.querySummary(ctx, s.db,
		`SELECT `+summaryColumns+` FROM ai_summaries WHERE session_id = ? ORDER BY version DESC LIMIT 1`, sessionID)
}

// GetSummary retrieves one summary version by ID.
func (s *SQLiteStore) GetSummary(ctx context.Context, id string) (*domain.Summary, error) {
	return s.querySummary(ctx, s.db, `SELECT `+summaryColumns+` FROM ai_summaries WHERE id = ?`, id)
}

// CreateSummary appends a new version for the session. The version is read
// and inserted in one transaction; the unique (session_id, version) index
// catches a concurrent writer, in which case the whole attempt is retried.
func (s *SQLiteStore) CreateSummary(ctx context.Context, sessionID string, generated domain.GeneratedSummary) (*domain.Summary, error) {
	actionItems, err := domain.EncodeActionItems(generated.ActionItems)
	if err != nil {
		return nil, domain.NewValidationError("action_items", err.Error())
	}

	var lastErr error
	for attempt := 0; attempt < s.versionRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewStorageError("create summary", err)
		}
		sum, err := s.insertSummaryVersion(ctx, sessionID, generated, actionItems)
		if err == nil {
			return sum, nil
		}
		if !isUniqueViolation(err) && !isBusy(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, domain.NewStorageError("create summary",
		fmt.Errorf("version assignment conflicted %d times: %w", s.versionRetries, lastErr))
}

func (s *SQLiteStore) insertSummaryVersion(ctx context.Context, sessionID string, generated domain.GeneratedSummary, actionItems string) (*domain.Summary, error) {
	var created *domain.Summary
	err := s.withTx(ctx, "create summary", func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("session", sessionID)
		}
		if err != nil {
			return err
		}

		var version int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM ai_summaries WHERE session_id = ?`, sessionID).Scan(&version); err != nil {
			return err
		}

		sum := &domain.Summary{
			ID:          newID(),
			SessionID:   sessionID,
			SummaryText: generated.SummaryText,
			ActionItems: &actionItems,
			NextAgenda:  &generated.NextAgenda,
			Model:       generated.Model,
			Version:     version,
			CreatedAt:   s.timestamp(),
		}
		if _, err := s.exec(ctx, tx,
			`INSERT INTO ai_summaries (id, session_id, summary_text, action_items, next_agenda, model, version, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sum.ID, sum.SessionID, sum.SummaryText, actionItems, generated.NextAgenda, sum.Model, sum.Version, sum.CreatedAt); err != nil {
			return err
		}
		created = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateSummary edits fields of one version in place. The version number and
// session are never changed. It returns (nil, nil) for an unknown ID.
func (s *SQLiteStore) UpdateSummary(ctx context.Context, id string, update domain.SummaryUpdate) (*domain.Summary, error) {
	if update.Empty() {
		return s.GetSummary(ctx, id)
	}

	var set setClause
	if update.SummaryText != nil {
		set.add("summary_text", *update.SummaryText)
	}
	if update.ActionItems != nil {
		set.add("action_items", *update.ActionItems)
	}
	if update.NextAgenda != nil {
		set.add("next_agenda", *update.NextAgenda)
	}

	res, err := s.exec(ctx, s.db, `UPDATE ai_summaries SET `+set.sql()+` WHERE id = ?`, append(set.args, id)...)
	if err != nil {
		return nil, domain.NewStorageError("update summary", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetSummary(ctx, id)
}
