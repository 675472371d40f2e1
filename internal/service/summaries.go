package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// ListSummaries returns every version for the session, newest first.
func (s *Service) ListSummaries(ctx context.Context, sessionID string) ([]domain.Summary, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	summaries, err := s.store.ListSummaries(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

// LatestSummary returns the highest version, or nil when none exists.
func (s *Service) LatestSummary(ctx context.Context, sessionID string) (*domain.Summary, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	summary, err := s.store.GetLatestSummary(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return summary, nil
}

// UpdateSummary edits one version in place.
func (s *Service) UpdateSummary(ctx context.Context, sessionID, summaryID string, update domain.SummaryUpdate) (*domain.Summary, error) {
	if update.ActionItems != nil {
		var items []domain.ActionItem
		if err := json.Unmarshal([]byte(*update.ActionItems), &items); err != nil {
			return nil, domain.NewValidationError("action_items", "must be a JSON array of {item, done}")
		}
	}

	existing, err := s.store.GetSummary(ctx, summaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	if existing == nil || existing.SessionID != sessionID {
		return nil, domain.NewNotFoundError("summary", summaryID)
	}

	summary, err := s.store.UpdateSummary(ctx, summaryID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update summary: %w", err)
	}
	if summary == nil {
		return nil, domain.NewNotFoundError("summary", summaryID)
	}
	return summary, nil
}
