package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const emailColumns = `id, session_id, recipient_email, subject, body, status, sent_at, error_message, created_at, updated_at`

func scanEmail(row scanner) (*domain.FollowUpEmail, error) {
	var e domain.FollowUpEmail
	var status string
	var sentAt sql.NullTime
	var errorMessage sql.NullString
	if err := row.Scan(&e.ID, &e.SessionID, &e.RecipientEmail, &e.Subject, &e.Body, &status, &sentAt,
		&errorMessage, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Status = domain.EmailStatus(status)
	e.SentAt = timePtr(sentAt)
	e.ErrorMessage = stringPtr(errorMessage)
	return &e, nil
}

// ListEmails returns a session's follow-up emails, newest first.
func (s *SQLiteStore) ListEmails(ctx context.Context, sessionID string) ([]domain.FollowUpEmail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+emailColumns+` FROM follow_up_emails WHERE session_id = ? ORDER BY created_at DESC, rowid DESC`, sessionID)
	if err != nil {
		return nil, domain.NewStorageError("list emails", err)
	}
	defer rows.Close()

	emails := []domain.FollowUpEmail{}
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, domain.NewStorageError("list emails", err)
		}
		emails = append(emails, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list emails", err)
	}
	return emails, nil
}

// GetEmail retrieves an email by ID.
func (s *SQLiteStore) GetEmail(ctx context.Context, id string) (*domain.FollowUpEmail, error) {
	e, err := scanEmail(s.db.QueryRowContext(ctx, `SELECT `+emailColumns+` FROM follow_up_emails WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get email", err)
	}
	return e, nil
}

// CreateEmail stores a new draft email.
func (s *SQLiteStore) CreateEmail(ctx context.Context, sessionID string, draft domain.EmailDraft) (*domain.FollowUpEmail, error) {
	now := s.timestamp()
	e := &domain.FollowUpEmail{
		ID:             newID(),
		SessionID:      sessionID,
		RecipientEmail: draft.RecipientEmail,
		Subject:        draft.Subject,
		Body:           draft.Body,
		Status:         domain.EmailStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.exec(ctx, s.db,
		`INSERT INTO follow_up_emails (id, session_id, recipient_email, subject, body, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.RecipientEmail, e.Subject, e.Body, string(e.Status), now, now); err != nil {
		return nil, domain.NewStorageError("create email", err)
	}
	return e, nil
}

// UpdateEmail edits an email's content. Status and sent_at are untouched.
func (s *SQLiteStore) UpdateEmail(ctx context.Context, id string, update domain.EmailUpdate) (*domain.FollowUpEmail, error) {
	if update.Empty() {
		return s.GetEmail(ctx, id)
	}

	var set setClause
	if update.Subject != nil {
		set.add("subject", *update.Subject)
	}
	if update.Body != nil {
		set.add("body", *update.Body)
	}
	if update.RecipientEmail != nil {
		set.add("recipient_email", *update.RecipientEmail)
	}
	set.add("updated_at", s.timestamp())

	res, err := s.exec(ctx, s.db, `UPDATE follow_up_emails SET `+set.sql()+` WHERE id = ?`, append(set.args, id)...)
	if err != nil {
		return nil, domain.NewStorageError("update email", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetEmail(ctx, id)
}

// SendEmail marks an email as sent. No mail is delivered.
func (s *SQLiteStore) SendEmail(ctx context.Context, id string) (*domain.FollowUpEmail, error) {
	now := s.timestamp()
	res, err := s.exec(ctx, s.db,
		`UPDATE follow_up_emails SET status = 'sent', sent_at = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		now, now, id)
	if err != nil {
		return nil, domain.NewStorageError("send email", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetEmail(ctx, id)
}

// DeleteEmail removes an email. It reports NotFound for an unknown ID.
func (s *SQLiteStore) DeleteEmail(ctx context.Context, id string) error {
	res, err := s.exec(ctx, s.db, `DELETE FROM follow_up_emails WHERE id = ?`, id)
	if err != nil {
		return domain.NewStorageError("delete email", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("email", id)
	}
	return nil
}

// CountPendingFollowUps counts completed sessions that have no sent email.
func (s *SQLiteStore) CountPendingFollowUps(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions s
		 WHERE s.user_id = ? AND s.status = 'completed'
		 AND NOT EXISTS (SELECT 1 FROM follow_up_emails fe WHERE fe.session_id = s.id AND fe.status = 'sent')`,
		userID).Scan(&count)
	if err != nil {
		return 0, domain.NewStorageError("count pending follow-ups", err)
	}
	return count, nil
}
