package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const sessionColumns = `s.id, s.client_id, s.user_id, s.scheduled_at, s.duration_minutes, s.status,
	s.session_number, s.created_at, s.updated_at`

const sessionDetailColumns = sessionColumns + `, c.name, c.email,
	EXISTS (SELECT 1 FROM session_notes sn WHERE sn.session_id = s.id),
	EXISTS (SELECT 1 FROM ai_summaries a WHERE a.session_id = s.id),
	EXISTS (SELECT 1 FROM follow_up_emails fe WHERE fe.session_id = s.id)`

func sessionDest(sess *domain.Session, duration, number *sql.NullInt64, status *string) []any {
	return []any{&sess.ID, &sess.ClientID, &sess.UserID, &sess.ScheduledAt, duration, status,
		number, &sess.CreatedAt, &sess.UpdatedAt}
}

func scanSession(row scanner) (*domain.Session, error) {
	var sess domain.Session
	var duration, number sql.NullInt64
	var status string
	if err := row.Scan(sessionDest(&sess, &duration, &number, &status)...); err != nil {
		return nil, err
	}
	sess.DurationMinutes = intPtr(duration)
	sess.SessionNumber = intPtr(number)
	sess.Status = domain.SessionStatus(status)
	return &sess, nil
}

func scanSessionDetails(row scanner) (*domain.SessionWithDetails, error) {
	var d domain.SessionWithDetails
	var duration, number sql.NullInt64
	var status string
	var clientEmail sql.NullString
	dest := append(sessionDest(&d.Session, &duration, &number, &status),
		&d.ClientName, &clientEmail, &d.HasNote, &d.HasSummary, &d.HasFollowUp)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	d.DurationMinutes = intPtr(duration)
	d.SessionNumber = intPtr(number)
	d.Status = domain.SessionStatus(status)
	d.ClientEmail = stringPtr(clientEmail)
	return &d, nil
}

// CreateSession schedules a session and assigns the client's next session
// number. Numbers come from a per-client high-water mark so a number is never
// handed out twice, even after the newest session is deleted. When a template
// is given, the note is created from its content verbatim in the same
// transaction.
func (s *SQLiteStore) CreateSession(ctx context.Context, input domain.NewSession) (*domain.Session, error) {
	var created *domain.Session
	err := s.withTx(ctx, "create session", func(tx *sql.Tx) error {
		var counter int
		err := tx.QueryRowContext(ctx,
			`SELECT session_counter FROM clients WHERE id = ? AND deleted_at IS NULL`, input.ClientID).Scan(&counter)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewValidationError("client_id", "client not found")
		}
		if err != nil {
			return err
		}

		var template *domain.Template
		if input.TemplateID != "" {
			template, err = s.getTemplate(ctx, tx, input.TemplateID)
			if err != nil {
				return err
			}
			if template == nil {
				return domain.NewValidationError("template_id", "template not found")
			}
		}

		var maxNumber int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(session_number), 0) FROM sessions WHERE client_id = ?`, input.ClientID).Scan(&maxNumber); err != nil {
			return err
		}
		number := max(counter, maxNumber) + 1

		if _, err := s.exec(ctx, tx,
			`UPDATE clients SET session_counter = ? WHERE id = ?`, number, input.ClientID); err != nil {
			return err
		}

		now := s.timestamp()
		sess := &domain.Session{
			ID:              newID(),
			ClientID:        input.ClientID,
			UserID:          input.UserID,
			ScheduledAt:     input.ScheduledAt.UTC(),
			DurationMinutes: input.DurationMinutes,
			Status:          domain.SessionStatusScheduled,
			SessionNumber:   &number,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := s.exec(ctx, tx,
			`INSERT INTO sessions (id, client_id, user_id, scheduled_at, duration_minutes, status, session_number, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, sess.ClientID, sess.UserID, sess.ScheduledAt, nullInt(sess.DurationMinutes),
			string(sess.Status), number, now, now); err != nil {
			return err
		}

		if template != nil {
			if _, err := s.insertNote(ctx, tx, noteWrite{
				sessionID:  sess.ID,
				templateID: template.ID,
				content:    template.Content,
				plainText:  template.Content,
				isDraft:    true,
			}); err != nil {
				return err
			}
		}

		created = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SQLiteStore) getSession(ctx context.Context, q querier, id string) (*domain.SessionWithDetails, error) {
	d, err := scanSessionDetails(q.QueryRowContext(ctx,
		`SELECT `+sessionDetailColumns+` FROM sessions s JOIN clients c ON c.id = s.client_id WHERE s.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get session", err)
	}
	return d, nil
}

// GetSession retrieves a session with its client and dependent-entity flags.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*domain.SessionWithDetails, error) {
	return s.getSession(ctx, s.db, id)
}

// ListSessions returns one page of a coach's sessions, most recently scheduled first.
func (s *SQLiteStore) ListSessions(ctx context.Context, userID string, filter domain.SessionFilter) ([]domain.SessionWithDetails, int, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)

	where := "s.user_id = ?"
	args := []any{userID}
	if filter.ClientID != "" {
		where += " AND s.client_id = ?"
		args = append(args, filter.ClientID)
	}
	if filter.From != nil {
		where += " AND s.scheduled_at >= ?"
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where += " AND s.scheduled_at <= ?"
		args = append(args, filter.To.UTC())
	}
	if filter.Status != "" {
		where += " AND s.status = ?"
		args = append(args, string(filter.Status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions s WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.NewStorageError("count sessions", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionDetailColumns+` FROM sessions s JOIN clients c ON c.id = s.client_id
		 WHERE `+where+` ORDER BY s.scheduled_at DESC, s.rowid DESC LIMIT ? OFFSET ?`,
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, domain.NewStorageError("list sessions", err)
	}
	defer rows.Close()

	sessions := []domain.SessionWithDetails{}
	for rows.Next() {
		d, err := scanSessionDetails(rows)
		if err != nil {
			return nil, 0, domain.NewStorageError("list sessions", err)
		}
		sessions = append(sessions, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.NewStorageError("list sessions", err)
	}
	return sessions, total, nil
}

// UpdateSession applies the provided fields only. It returns (nil, nil) when
// the session does not exist.
func (s *SQLiteStore) UpdateSession(ctx context.Context, id string, update domain.SessionUpdate) (*domain.SessionWithDetails, error) {
	if update.Empty() {
		return s.GetSession(ctx, id)
	}

	var set setClause
	if update.ScheduledAt != nil {
		set.add("scheduled_at", update.ScheduledAt.UTC())
	}
	if update.ClearDuration {
		set.add("duration_minutes", nil)
	} else if update.DurationMinutes != nil {
		set.add("duration_minutes", *update.DurationMinutes)
	}
	if update.Status != nil {
		set.add("status", string(*update.Status))
	}
	set.add("updated_at", s.timestamp())

	res, err := s.exec(ctx, s.db, `UPDATE sessions SET `+set.sql()+` WHERE id = ?`, append(set.args, id)...)
	if err != nil {
		return nil, domain.NewStorageError("update session", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetSession(ctx, id)
}

// cascadeStatements delete a session's dependents in dependency order, then
// the session itself.
var cascadeStatements = []struct {
	table string
	query string
}{
	{"session_notes_fts", `DELETE FROM session_notes_fts WHERE docid IN (SELECT doc_id FROM session_notes WHERE session_id = ?)`},
	{"follow_up_emails", `DELETE FROM follow_up_emails WHERE session_id = ?`},
	{"ai_summaries", `DELETE FROM ai_summaries WHERE session_id = ?`},
	{"ai_usage_logs", `DELETE FROM ai_usage_logs WHERE session_id = ?`},
	{"goal_scores", `DELETE FROM goal_scores WHERE session_id = ?`},
	{"session_notes", `DELETE FROM session_notes WHERE session_id = ?`},
	{"sessions", `DELETE FROM sessions WHERE id = ?`},
}

// DeleteSession removes a session and everything that belongs to it in one
// transaction. A failure at any step leaves the database untouched.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	return s.withTx(ctx, "delete session", func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("session", id)
		}
		if err != nil {
			return err
		}

		for _, stmt := range cascadeStatements {
			if _, err := s.exec(ctx, tx, stmt.query, id); err != nil {
				return fmt.Errorf("delete %s: %w", stmt.table, err)
			}
		}
		return nil
	})
}

// GetPreviousSession returns the client's most recent session scheduled
// strictly before the given time, excluding excludeID.
func (s *SQLiteStore) GetPreviousSession(ctx context.Context, clientID string, before time.Time, excludeID string) (*domain.Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions s
		 WHERE s.client_id = ? AND s.scheduled_at < ? AND s.id != ?
		 ORDER BY s.scheduled_at DESC, s.rowid DESC LIMIT 1`,
		clientID, before.UTC(), excludeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get previous session", err)
	}
	return sess, nil
}
