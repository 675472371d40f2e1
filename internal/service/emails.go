package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// ListEmails returns the session's follow-up emails, newest first.
func (s *Service) ListEmails(ctx context.Context, sessionID string) ([]domain.FollowUpEmail, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	emails, err := s.store.ListEmails(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

// CreateEmail stores a hand-written draft.
func (s *Service) CreateEmail(ctx context.Context, sessionID string, draft domain.EmailDraft) (*domain.FollowUpEmail, error) {
	if strings.TrimSpace(draft.RecipientEmail) == "" {
		return nil, domain.NewValidationError("recipient_email", "is required")
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	email, err := s.store.CreateEmail(ctx, sessionID, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create email: %w", err)
	}
	return email, nil
}

// UpdateEmail edits an email's subject, body or recipient. Sent emails stay
// sent; editing them is allowed unless ALLOW_SENT_EMAIL_EDITS is off.
func (s *Service) UpdateEmail(ctx context.Context, sessionID, emailID string, update domain.EmailUpdate) (*domain.FollowUpEmail, error) {
	if update.RecipientEmail != nil && strings.TrimSpace(*update.RecipientEmail) == "" {
		return nil, domain.NewValidationError("recipient_email", "must not be empty")
	}

	existing, err := s.sessionEmail(ctx, sessionID, emailID)
	if err != nil {
		return nil, err
	}
	if existing.Status == domain.EmailStatusSent && !s.config.AllowSentEmailEdits {
		return nil, domain.NewValidationError("status", "sent emails cannot be edited")
	}

	email, err := s.store.UpdateEmail(ctx, emailID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update email: %w", err)
	}
	if email == nil {
		return nil, domain.NewNotFoundError("email", emailID)
	}
	return email, nil
}

// SendEmail marks the email as sent. No mail is delivered.
func (s *Service) SendEmail(ctx context.Context, sessionID, emailID string) (*domain.FollowUpEmail, error) {
	if _, err := s.sessionEmail(ctx, sessionID, emailID); err != nil {
		return nil, err
	}
	email, err := s.store.SendEmail(ctx, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	if email == nil {
		return nil, domain.NewNotFoundError("email", emailID)
	}
	s.logger.Info().Str("session_id", sessionID).Str("email_id", emailID).Msg("follow-up marked sent")
	return email, nil
}

func (s *Service) DeleteEmail(ctx context.Context, sessionID, emailID string) error {
	if _, err := s.sessionEmail(ctx, sessionID, emailID); err != nil {
		return err
	}
	if err := s.store.DeleteEmail(ctx, emailID); err != nil {
		return fmt.Errorf("failed to delete email: %w", err)
	}
	return nil
}

// PendingFollowUps counts completed sessions without a sent follow-up.
func (s *Service) PendingFollowUps(ctx context.Context, userID string) (int, error) {
	count, err := s.store.CountPendingFollowUps(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending follow-ups: %w", err)
	}
	return count, nil
}

// sessionEmail loads an email and checks it belongs to the session.
func (s *Service) sessionEmail(ctx context.Context, sessionID, emailID string) (*domain.FollowUpEmail, error) {
	email, err := s.store.GetEmail(ctx, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to get email: %w", err)
	}
	if email == nil || email.SessionID != sessionID {
		return nil, domain.NewNotFoundError("email", emailID)
	}
	return email, nil
}
