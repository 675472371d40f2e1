// Package ai provides the AI generation gateway used for summaries and
// follow-up emails.
package ai

import (
	"context"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// Generator produces summaries and follow-up emails from session notes.
// Implementations have no knowledge of storage; persistence and quota
// accounting happen around the calls.
type Generator interface {
	// GenerateSummary produces a structured recap of a note.
	GenerateSummary(ctx context.Context, noteContent string) (*domain.GeneratedSummary, error)

	// GenerateFollowUp drafts an email to the client from a note and its summary.
	GenerateFollowUp(ctx context.Context, noteContent, clientName, summaryText string) (*domain.GeneratedEmail, error)
}

// Ensure MockGenerator implements Generator interface.
var _ Generator = (*MockGenerator)(nil)
