package service

import (
	"context"
	"fmt"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// GetNote returns the session's note, or nil when none has been written.
func (s *Service) GetNote(ctx context.Context, sessionID string) (*domain.Note, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	note, err := s.store.GetNoteBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// SaveNote performs an explicit save. An empty templateID keeps the note's
// existing template reference.
func (s *Service) SaveNote(ctx context.Context, sessionID, content, templateID string) (*domain.Note, error) {
	if templateID != "" {
		tmpl, err := s.store.GetTemplate(ctx, templateID)
		if err != nil {
			return nil, fmt.Errorf("failed to get template: %w", err)
		}
		if tmpl == nil {
			return nil, domain.NewValidationError("template_id", "template not found")
		}
	}

	note, err := s.store.SaveNote(ctx, sessionID, content, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	s.logger.Debug().Str("session_id", sessionID).Int("length", len(content)).Msg("note saved")
	return note, nil
}

// AutosaveNote stores content from the autosave path. Repeated calls are
// last-write-wins.
func (s *Service) AutosaveNote(ctx context.Context, sessionID, content string) (*domain.Note, error) {
	note, err := s.store.AutosaveNote(ctx, sessionID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to autosave note: %w", err)
	}
	s.logger.Debug().Str("session_id", sessionID).Int("length", len(content)).Msg("note autosaved")
	return note, nil
}
