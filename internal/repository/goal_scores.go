package store

import (
	"context"
	"database/sql"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// CreateGoalScore records a goal rating for a client.
func (s *SQLiteStore) CreateGoalScore(ctx context.Context, score *domain.GoalScore) error {
	if score.ID == "" {
		score.ID = newID()
	}
	score.CreatedAt = s.timestamp()
	_, err := s.exec(ctx, s.db,
		`INSERT INTO goal_scores (id, client_id, session_id, goal_label, score, note, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		score.ID, score.ClientID, nullString(score.SessionID), score.GoalLabel, score.Score, nullString(score.Note), score.CreatedAt)
	if err != nil {
		return domain.NewStorageError("create goal score", err)
	}
	return nil
}

// ListGoalScores returns a client's scores, oldest first.
func (s *SQLiteStore) ListGoalScores(ctx context.Context, clientID string) ([]domain.GoalScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_id, session_id, goal_label, score, note, created_at FROM goal_scores
		 WHERE client_id = ? ORDER BY created_at ASC, rowid ASC`, clientID)
	if err != nil {
		return nil, domain.NewStorageError("list goal scores", err)
	}
	defer rows.Close()

	scores := []domain.GoalScore{}
	for rows.Next() {
		var g domain.GoalScore
		var sessionID, note sql.NullString
		if err := rows.Scan(&g.ID, &g.ClientID, &sessionID, &g.GoalLabel, &g.Score, &note, &g.CreatedAt); err != nil {
			return nil, domain.NewStorageError("list goal scores", err)
		}
		g.SessionID = stringPtr(sessionID)
		g.Note = stringPtr(note)
		scores = append(scores, g)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list goal scores", err)
	}
	return scores, nil
}
