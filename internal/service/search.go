package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

const defaultSearchLimit = 20

// Search finds clients and sessions matching q. An empty query matches nothing.
func (s *Service) Search(ctx context.Context, userID, q string, searchType domain.SearchType, limit int) (*domain.SearchResult, error) {
	switch searchType {
	case "":
		searchType = domain.SearchTypeAll
	case domain.SearchTypeAll, domain.SearchTypeClients, domain.SearchTypeSessions:
	default:
		return nil, domain.NewValidationError("type", "must be all, clients or sessions")
	}
	if limit < 1 || limit > 100 {
		limit = defaultSearchLimit
	}

	q = strings.TrimSpace(q)
	if q == "" {
		return &domain.SearchResult{Clients: []domain.ClientHit{}, Sessions: []domain.SessionHit{}}, nil
	}

	result, err := s.store.Search(ctx, userID, q, searchType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	return result, nil
}
