package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
	"github.com/ShotaHirabayashi/coachcanvas/internal/markdown"
)

const noteColumns = `doc_id, id, session_id, template_id, content, plain_text, is_draft, auto_saved_at, created_at, updated_at`

func scanNote(row scanner) (*domain.Note, int64, error) {
	var n domain.Note
	var docID int64
	var templateID, content, plainText sql.NullString
	var isDraft int
	var autoSavedAt sql.NullTime
	if err := row.Scan(&docID, &n.ID, &n.SessionID, &templateID, &content, &plainText, &isDraft,
		&autoSavedAt, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, 0, err
	}
	n.TemplateID = stringPtr(templateID)
	n.Content = content.String
	n.PlainText = plainText.String
	n.IsDraft = isDraft == 1
	n.AutoSavedAt = timePtr(autoSavedAt)
	return &n, docID, nil
}

func (s *SQLiteStore) getNote(ctx context.Context, q querier, sessionID string) (*domain.Note, int64, error) {
	n, docID, err := scanNote(q.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM session_notes WHERE session_id = ?`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, domain.NewStorageError("get note", err)
	}
	return n, docID, nil
}

// GetNoteBySession returns the session's note, or nil if none was written yet.
func (s *SQLiteStore) GetNoteBySession(ctx context.Context, sessionID string) (*domain.Note, error) {
	n, _, err := s.getNote(ctx, s.db, sessionID)
	return n, err
}

type noteWrite struct {
	sessionID  string
	templateID string
	content    string
	plainText  string
	isDraft    bool
	autosave   bool
}

// insertNote creates the note row and its search index entry.
func (s *SQLiteStore) insertNote(ctx context.Context, tx *sql.Tx, w noteWrite) (int64, error) {
	now := s.timestamp()
	var autoSavedAt sql.NullTime
	if w.autosave {
		autoSavedAt = sql.NullTime{Time: now, Valid: true}
	}
	res, err := s.exec(ctx, tx,
		`INSERT INTO session_notes (id, session_id, template_id, content, plain_text, is_draft, auto_saved_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		newID(), w.sessionID, nullStringValue(w.templateID), w.content, w.plainText, boolInt(w.isDraft),
		autoSavedAt, now, now)
	if err != nil {
		return 0, err
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := s.reindexNote(ctx, tx, docID, w.plainText); err != nil {
		return 0, err
	}
	return docID, nil
}

// reindexNote replaces the search index entry for a note.
func (s *SQLiteStore) reindexNote(ctx context.Context, tx *sql.Tx, docID int64, plainText string) error {
	if _, err := s.exec(ctx, tx, `DELETE FROM session_notes_fts WHERE docid = ?`, docID); err != nil {
		return err
	}
	_, err := s.exec(ctx, tx, `INSERT INTO session_notes_fts (docid, plain_text) VALUES (?, ?)`, docID, plainText)
	return err
}

// SaveNote performs an explicit save. It creates the note when absent,
// clears the draft flag, and only replaces template_id when one is given.
func (s *SQLiteStore) SaveNote(ctx context.Context, sessionID, content, templateID string) (*domain.Note, error) {
	return s.writeNote(ctx, "save note", noteWrite{
		sessionID:  sessionID,
		templateID: templateID,
		content:    content,
		plainText:  markdown.Strip(content),
	})
}

// AutosaveNote writes content from the debounced autosave path. It stamps
// auto_saved_at and never changes template_id or the draft flag of an
// existing note; a note first created here starts as a draft.
func (s *SQLiteStore) AutosaveNote(ctx context.Context, sessionID, content string) (*domain.Note, error) {
	return s.writeNote(ctx, "autosave note", noteWrite{
		sessionID: sessionID,
		content:   content,
		plainText: markdown.Strip(content),
		isDraft:   true,
		autosave:  true,
	})
}

// writeNote updates content, plain text and the search index together.
func (s *SQLiteStore) writeNote(ctx context.Context, op string, w noteWrite) (*domain.Note, error) {
	var saved *domain.Note
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, w.sessionID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("session", w.sessionID)
		}
		if err != nil {
			return err
		}

		existing, docID, err := s.getNote(ctx, tx, w.sessionID)
		if err != nil {
			return err
		}

		if existing == nil {
			if _, err := s.insertNote(ctx, tx, w); err != nil {
				return err
			}
		} else {
			now := s.timestamp()
			if w.autosave {
				_, err = s.exec(ctx, tx,
					`UPDATE session_notes SET content = ?, plain_text = ?, auto_saved_at = ?, updated_at = ?
					 WHERE doc_id = ?`,
					w.content, w.plainText, now, now, docID)
			} else {
				_, err = s.exec(ctx, tx,
					`UPDATE session_notes
					 SET content = ?, plain_text = ?, template_id = COALESCE(?, template_id), is_draft = 0, updated_at = ?
					 WHERE doc_id = ?`,
					w.content, w.plainText, nullStringValue(w.templateID), now, docID)
			}
			if err != nil {
				return err
			}
			if err := s.reindexNote(ctx, tx, docID, w.plainText); err != nil {
				return err
			}
		}

		saved, _, err = s.getNote(ctx, tx, w.sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
