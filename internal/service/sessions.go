package service

import (
	"context"
	"fmt"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

func validateDuration(minutes *int) error {
	if minutes == nil {
		return nil
	}
	if *minutes < domain.MinDurationMinutes || *minutes > domain.MaxDurationMinutes {
		return domain.NewValidationError("duration_minutes",
			fmt.Sprintf("must be between %d and %d", domain.MinDurationMinutes, domain.MaxDurationMinutes))
	}
	return nil
}

// CreateSession schedules a session and numbers it within the client's history.
func (s *Service) CreateSession(ctx context.Context, input domain.NewSession) (*domain.Session, error) {
	if input.ClientID == "" {
		return nil, domain.NewValidationError("client_id", "is required")
	}
	if input.ScheduledAt.IsZero() {
		return nil, domain.NewValidationError("scheduled_at", "is required")
	}
	if err := validateDuration(input.DurationMinutes); err != nil {
		return nil, err
	}

	sess, err := s.store.CreateSession(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info().
		Str("session_id", sess.ID).
		Str("client_id", sess.ClientID).
		Int("session_number", *sess.SessionNumber).
		Msg("session created")
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*domain.SessionWithDetails, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if sess == nil {
		return nil, domain.NewNotFoundError("session", id)
	}
	return sess, nil
}

func (s *Service) ListSessions(ctx context.Context, userID string, filter domain.SessionFilter) ([]domain.SessionWithDetails, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", "unknown session status")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, domain.NewValidationError("to", "must not be before from")
	}

	sessions, total, err := s.store.ListSessions(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, total, nil
}

// UpdateSession applies the provided fields. Any valid status may replace any other.
func (s *Service) UpdateSession(ctx context.Context, id string, update domain.SessionUpdate) (*domain.SessionWithDetails, error) {
	if !update.ClearDuration {
		if err := validateDuration(update.DurationMinutes); err != nil {
			return nil, err
		}
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown session status")
	}
	if update.ScheduledAt != nil && update.ScheduledAt.IsZero() {
		return nil, domain.NewValidationError("scheduled_at", "must not be empty")
	}

	sess, err := s.store.UpdateSession(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if sess == nil {
		return nil, domain.NewNotFoundError("session", id)
	}

	s.logger.Debug().Str("session_id", id).Str("status", string(sess.Status)).Msg("session updated")
	return sess, nil
}

// DeleteSession removes the session with its note, summaries, emails, usage
// logs and goal scores.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		if !isCallerError(err) {
			s.logger.Error().Err(err).Str("session_id", id).Msg("session delete failed")
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// GetSessionDetail assembles a session with its note, latest summary, emails
// and the latest summary of the client's previous session by scheduled time.
func (s *Service) GetSessionDetail(ctx context.Context, id string) (*domain.SessionDetail, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	note, err := s.store.GetNoteBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	summary, err := s.store.GetLatestSummary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	emails, err := s.store.ListEmails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}

	detail := &domain.SessionDetail{
		SessionWithDetails: *sess,
		Note:               note,
		Summary:            summary,
		Emails:             emails,
	}

	prev, err := s.store.GetPreviousSession(ctx, sess.ClientID, sess.ScheduledAt, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous session: %w", err)
	}
	if prev != nil {
		detail.PreviousSummary, err = s.store.GetLatestSummary(ctx, prev.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get previous summary: %w", err)
		}
	}
	return detail, nil
}
