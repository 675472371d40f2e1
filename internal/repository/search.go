package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const snippetLength = 200

// Search matches clients by name, email or company and sessions by note text.
// Note text goes through the full-text index first and falls back to a LIKE
// scan when the index query fails or finds nothing.
func (s *SQLiteStore) Search(ctx context.Context, userID, query string, searchType domain.SearchType, limit int) (*domain.SearchResult, error) {
	if limit < 1 {
		limit = 20
	}
	result := &domain.SearchResult{
		Clients:  []domain.ClientHit{},
		Sessions: []domain.SessionHit{},
	}

	if searchType == domain.SearchTypeAll || searchType == domain.SearchTypeClients {
		clients, err := s.searchClients(ctx, userID, query, limit)
		if err != nil {
			return nil, err
		}
		result.Clients = clients
	}

	if searchType == domain.SearchTypeAll || searchType == domain.SearchTypeSessions {
		var sessions []domain.SessionHit
		var err error
		if ftsQuery := sanitizeFTS(query); ftsQuery != "" {
			sessions, err = s.searchNotesFTS(ctx, userID, ftsQuery, limit)
		}
		if err != nil || len(sessions) == 0 {
			sessions, err = s.searchNotesLike(ctx, userID, query, limit)
			if err != nil {
				return nil, err
			}
		}
		result.Sessions = sessions
	}

	return result, nil
}

func (s *SQLiteStore) searchClients(ctx context.Context, userID, query string, limit int) ([]domain.ClientHit, error) {
	term := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, company, status FROM clients
		 WHERE user_id = ? AND deleted_at IS NULL AND (name LIKE ? OR email LIKE ? OR company LIKE ?)
		 ORDER BY name LIMIT ?`,
		userID, term, term, term, limit)
	if err != nil {
		return nil, domain.NewStorageError("search clients", err)
	}
	defer rows.Close()

	hits := []domain.ClientHit{}
	for rows.Next() {
		var h domain.ClientHit
		var status string
		var email, company sql.NullString
		if err := rows.Scan(&h.ID, &h.Name, &email, &company, &status); err != nil {
			return nil, domain.NewStorageError("search clients", err)
		}
		h.Email = stringPtr(email)
		h.Company = stringPtr(company)
		h.Status = domain.ClientStatus(status)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("search clients", err)
	}
	return hits, nil
}

func (s *SQLiteStore) searchNotesFTS(ctx context.Context, userID, ftsQuery string, limit int) ([]domain.SessionHit, error) {
	return s.querySessionHits(ctx,
		`SELECT s.id, c.name, s.scheduled_at, substr(sn.plain_text, 1, ?)
		 FROM session_notes_fts fts
		 JOIN session_notes sn ON sn.doc_id = fts.docid
		 JOIN sessions s ON s.id = sn.session_id
		 JOIN clients c ON c.id = s.client_id
		 WHERE s.user_id = ? AND session_notes_fts MATCH ?
		 ORDER BY s.scheduled_at DESC
		 LIMIT ?`,
		snippetLength, userID, ftsQuery, limit)
}

func (s *SQLiteStore) searchNotesLike(ctx context.Context, userID, query string, limit int) ([]domain.SessionHit, error) {
	hits, err := s.querySessionHits(ctx,
		`SELECT s.id, c.name, s.scheduled_at, substr(sn.plain_text, 1, ?)
		 FROM session_notes sn
		 JOIN sessions s ON s.id = sn.session_id
		 JOIN clients c ON c.id = s.client_id
		 WHERE s.user_id = ? AND sn.plain_text LIKE ?
		 ORDER BY s.scheduled_at DESC
		 LIMIT ?`,
		snippetLength, userID, "%"+query+"%", limit)
	if err != nil {
		return nil, domain.NewStorageError("search notes", err)
	}
	return hits, nil
}

func (s *SQLiteStore) querySessionHits(ctx context.Context, query string, args ...any) ([]domain.SessionHit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := []domain.SessionHit{}
	for rows.Next() {
		var h domain.SessionHit
		var snippet sql.NullString
		if err := rows.Scan(&h.ID, &h.ClientName, &h.ScheduledAt, &snippet); err != nil {
			return nil, err
		}
		h.Snippet = snippet.String
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// sanitizeFTS wraps each word in quotes for safe FTS queries.
// "fix auth bug" → `"fix" "auth" "bug"`
func sanitizeFTS(query string) string {
	words := strings.Fields(strings.NewReplacer(`"`, "", `'`, "").Replace(query))
	for i, w := range words {
		words[i] = `"` + w + `"`
	}
	return strings.Join(words, " ")
}
