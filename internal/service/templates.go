package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// ListTemplates returns the system templates followed by the user's own.
func (s *Service) ListTemplates(ctx context.Context, userID string) ([]domain.Template, error) {
	templates, err := s.store.ListTemplates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (s *Service) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	tmpl, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if tmpl == nil {
		return nil, domain.NewNotFoundError("template", id)
	}
	return tmpl, nil
}

func (s *Service) CreateTemplate(ctx context.Context, userID string, input domain.TemplateInput) (*domain.Template, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if input.Content == nil || strings.TrimSpace(*input.Content) == "" {
		return nil, domain.NewValidationError("content", "is required")
	}
	tmpl, err := s.store.CreateTemplate(ctx, userID, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tmpl, nil
}

// UpdateTemplate edits a user template. System templates are rejected.
func (s *Service) UpdateTemplate(ctx context.Context, id string, input domain.TemplateInput) (*domain.Template, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	tmpl, err := s.store.UpdateTemplate(ctx, id, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return tmpl, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}
