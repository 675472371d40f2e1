package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// GenerateSummary creates a new summary version from the session's note.
// The quota is checked first and consumed only after the summary is stored.
func (s *Service) GenerateSummary(ctx context.Context, userID, sessionID string) (*domain.Summary, *domain.QuotaUsage, error) {
	if _, err := s.quota.Require(ctx, userID); err != nil {
		return nil, nil, err
	}

	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, nil, err
	}

	note, err := s.store.GetNoteBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get note: %w", err)
	}
	if note == nil || utf8.RuneCountInString(strings.TrimSpace(note.Content)) < domain.MinSummaryNoteLength {
		return nil, nil, domain.NewValidationError("note",
			fmt.Sprintf("at least %d characters are required to generate a summary", domain.MinSummaryNoteLength))
	}

	generated, err := s.generator.GenerateSummary(ctx, note.Content)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("summary generation failed")
		return nil, nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	summary, err := s.store.CreateSummary(ctx, sessionID, *generated)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store summary: %w", err)
	}

	usage, err := s.consume(ctx, userID, sessionID, domain.AIFeatureSummary)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("version", summary.Version).
		Str("model", summary.Model).
		Msg("summary generated")
	return summary, usage, nil
}

// GenerateFollowUp drafts a follow-up email from the session's note and latest summary.
func (s *Service) GenerateFollowUp(ctx context.Context, userID, sessionID string) (*domain.FollowUpEmail, *domain.QuotaUsage, error) {
	if _, err := s.quota.Require(ctx, userID); err != nil {
		return nil, nil, err
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	var noteContent string
	note, err := s.store.GetNoteBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get note: %w", err)
	}
	if note != nil {
		noteContent = note.Content
	}

	var summaryText string
	summary, err := s.store.GetLatestSummary(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get summary: %w", err)
	}
	if summary != nil {
		summaryText = summary.SummaryText
	}

	generated, err := s.generator.GenerateFollowUp(ctx, noteContent, sess.ClientName, summaryText)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("follow-up generation failed")
		return nil, nil, fmt.Errorf("failed to generate follow-up: %w", err)
	}

	recipient := s.config.FallbackRecipient
	if sess.ClientEmail != nil && *sess.ClientEmail != "" {
		recipient = *sess.ClientEmail
	}

	email, err := s.store.CreateEmail(ctx, sessionID, domain.EmailDraft{
		RecipientEmail: recipient,
		Subject:        generated.Subject,
		Body:           generated.Body,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store follow-up email: %w", err)
	}

	usage, err := s.consume(ctx, userID, sessionID, domain.AIFeatureFollowUp)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("session_id", sessionID).Str("email_id", email.ID).Msg("follow-up generated")
	return email, usage, nil
}

// consume increments the quota and records the usage log for one generation.
func (s *Service) consume(ctx context.Context, userID, sessionID string, feature domain.AIFeature) (*domain.QuotaUsage, error) {
	usage, err := s.quota.Increment(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("quota increment failed")
		return nil, fmt.Errorf("failed to increment ai usage: %w", err)
	}

	if err := s.store.CreateUsageLog(ctx, &domain.UsageLog{
		UserID:    userID,
		Feature:   feature,
		SessionID: &sessionID,
	}); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("usage log failed")
		return nil, fmt.Errorf("failed to record ai usage: %w", err)
	}
	return usage, nil
}
