// Package store provides the persistence layer for coachcanvas.
package store

import (
	"context"
	"time"

	"github.com/ShotaHirabayashi/coachcanvas/internal/domain"
)

// Store defines the interface for data persistence. Lookups return (nil, nil)
// when the row does not exist; driver failures are returned as
// *domain.StorageError.
type Store interface {
	// Users
	GetDefaultUser(ctx context.Context) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error)
	UpdateAIUsage(ctx context.Context, userID string, apply func(user *domain.User) error) (*domain.User, error)

	// Usage logs
	CreateUsageLog(ctx context.Context, log *domain.UsageLog) error
	ListUsageLogs(ctx context.Context, userID string) ([]domain.UsageLog, error)

	// Clients
	CreateClient(ctx context.Context, userID string, input domain.ClientInput) (*domain.ClientWithStats, error)
	GetClient(ctx context.Context, id string) (*domain.ClientWithStats, error)
	ListClients(ctx context.Context, userID string, filter domain.ClientFilter) ([]domain.ClientWithStats, int, error)
	UpdateClient(ctx context.Context, id string, input domain.ClientInput) (*domain.ClientWithStats, error)
	ToggleClientArchive(ctx context.Context, id string) (*domain.ClientWithStats, error)
	SoftDeleteClient(ctx context.Context, id string) error

	// Templates
	ListTemplates(ctx context.Context, userID string) ([]domain.Template, error)
	GetTemplate(ctx context.Context, id string) (*domain.Template, error)
	CreateTemplate(ctx context.Context, userID string, input domain.TemplateInput) (*domain.Template, error)
	UpdateTemplate(ctx context.Context, id string, input domain.TemplateInput) (*domain.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// Sessions
	CreateSession(ctx context.Context, input domain.NewSession) (*domain.Session, error)
	GetSession(ctx context.Context, id string) (*domain.SessionWithDetails, error)
	ListSessions(ctx context.Context, userID string, filter domain.SessionFilter) ([]domain.SessionWithDetails, int, error)
	UpdateSession(ctx context.Context, id string, update domain.SessionUpdate) (*domain.SessionWithDetails, error)
	DeleteSession(ctx context.Context, id string) error
	GetPreviousSession(ctx context.Context, clientID string, before time.Time, excludeID string) (*domain.Session, error)

	// Notes
	GetNoteBySession(ctx context.Context, sessionID string) (*domain.Note, error)
	SaveNote(ctx context.Context, sessionID, content, templateID string) (*domain.Note, error)
	AutosaveNote(ctx context.Context, sessionID, content string) (*domain.Note, error)

	// Summaries
	ListSummaries(ctx context.Context, sessionID string) ([]domain.Summary, error)
	GetLatestSummary(ctx context.Context, sessionID string) (*domain.Summary, error)
	GetSummary(ctx context.Context, id string) (*domain.Summary, error)
	CreateSummary(ctx context.Context, sessionID string, generated domain.GeneratedSummary) (*domain.Summary, error)
	UpdateSummary(ctx context.Context, id string, update domain.SummaryUpdate) (*domain.Summary, error)

	// Follow-up emails
	ListEmails(ctx context.Context, sessionID string) ([]domain.FollowUpEmail, error)
	GetEmail(ctx context.Context, id string) (*domain.FollowUpEmail, error)
	CreateEmail(ctx context.Context, sessionID string, draft domain.EmailDraft) (*domain.FollowUpEmail, error)
	UpdateEmail(ctx context.Context, id string, update domain.EmailUpdate) (*domain.FollowUpEmail, error)
	SendEmail(ctx context.Context, id string) (*domain.FollowUpEmail, error)
	DeleteEmail(ctx context.Context, id string) error
	CountPendingFollowUps(ctx context.Context, userID string) (int, error)

	// Goal scores
	CreateGoalScore(ctx context.Context, score *domain.GoalScore) error
	ListGoalScores(ctx context.Context, clientID string) ([]domain.GoalScore, error)

	// Dashboard
	GetDashboard(ctx context.Context, userID string, window domain.DashboardWindow) (*domain.Dashboard, error)

	// Search
	Search(ctx context.Context, userID, query string, searchType domain.SearchType, limit int) (*domain.SearchResult, error)

	Close() error
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
