package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

func (s *Service) CreateClient(ctx context.Context, userID string, input domain.ClientInput) (*domain.ClientWithStats, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if err := validateClientInput(input); err != nil {
		return nil, err
	}
	client, err := s.store.CreateClient(ctx, userID, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	s.logger.Info().Str("client_id", client.ID).Msg("client created")
	return client, nil
}

func (s *Service) GetClient(ctx context.Context, id string) (*domain.ClientWithStats, error) {
	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, domain.NewNotFoundError("client", id)
	}
	return client, nil
}

// GetClientDetail returns a client with its most recently scheduled sessions.
func (s *Service) GetClientDetail(ctx context.Context, id string) (*domain.ClientDetail, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	sessions, _, err := s.store.ListSessions(ctx, client.UserID, domain.SessionFilter{
		ClientID: id,
		Limit:    domain.ClientRecentSessionsLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list client sessions: %w", err)
	}
	return &domain.ClientDetail{ClientWithStats: *client, RecentSessions: sessions}, nil
}

func (s *Service) ListClients(ctx context.Context, userID string, filter domain.ClientFilter) ([]domain.ClientWithStats, int, error) {
	switch filter.Status {
	case "", "all", string(domain.ClientStatusActive), string(domain.ClientStatusArchived):
	default:
		return nil, 0, domain.NewValidationError("status", "must be active, archived or all")
	}
	clients, total, err := s.store.ListClients(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

func (s *Service) UpdateClient(ctx context.Context, id string, input domain.ClientInput) (*domain.ClientWithStats, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	if err := validateClientInput(input); err != nil {
		return nil, err
	}
	client, err := s.store.UpdateClient(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	if client == nil {
		return nil, domain.NewNotFoundError("client", id)
	}
	return client, nil
}

// ToggleClientArchive flips a client between active and archived.
func (s *Service) ToggleClientArchive(ctx context.Context, id string) (*domain.ClientWithStats, error) {
	client, err := s.store.ToggleClientArchive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to archive client: %w", err)
	}
	if client == nil {
		return nil, domain.NewNotFoundError("client", id)
	}
	return client, nil
}

// DeleteClient soft-deletes a client. Its sessions are kept.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}
	if err := s.store.SoftDeleteClient(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	s.logger.Info().Str("client_id", id).Msg("client deleted")
	return nil
}

func validateClientInput(input domain.ClientInput) error {
	if input.Status != nil && *input.Status != domain.ClientStatusActive && *input.Status != domain.ClientStatusArchived {
		return domain.NewValidationError("status", "must be active or archived")
	}
	if input.ContractTotalSessions != nil && *input.ContractTotalSessions < 0 {
		return domain.NewValidationError("contract_total_sessions", "must not be negative")
	}
	if input.ContractFee != nil && *input.ContractFee < 0 {
		return domain.NewValidationError("contract_fee", "must not be negative")
	}
	return nil
}
