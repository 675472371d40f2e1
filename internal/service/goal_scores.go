package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const (
	minGoalScore = 1
	maxGoalScore = 10
)

func (s *Service) ListGoalScores(ctx context.Context, clientID string) ([]domain.GoalScore, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	scores, err := s.store.ListGoalScores(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goal scores: %w", err)
	}
	return scores, nil
}

// CreateGoalScore records a rating. A referenced session must belong to the client.
func (s *Service) CreateGoalScore(ctx context.Context, score *domain.GoalScore) (*domain.GoalScore, error) {
	if strings.TrimSpace(score.GoalLabel) == "" {
		return nil, domain.NewValidationError("goal_label", "is required")
	}
	if score.Score < minGoalScore || score.Score > maxGoalScore {
		return nil, domain.NewValidationError("score", fmt.Sprintf("must be between %d and %d", minGoalScore, maxGoalScore))
	}
	if _, err := s.GetClient(ctx, score.ClientID); err != nil {
		return nil, err
	}
	if score.SessionID != nil && *score.SessionID != "" {
		sess, err := s.store.GetSession(ctx, *score.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}
		if sess == nil || sess.ClientID != score.ClientID {
			return nil, domain.NewValidationError("session_id", "session does not belong to the client")
		}
	} else {
		score.SessionID = nil
	}

	if err := s.store.CreateGoalScore(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to create goal score: %w", err)
	}
	return score, nil
}
