package domain

import "time"

// Dashboard is the coach's landing overview.
type Dashboard struct {
	UpcomingSessions     []UpcomingSession `json:"upcoming_sessions"`
	PendingFollowUpCount int               `json:"pending_followup_count"`
	RecentSessions       []RecentSession   `json:"recent_sessions"`
	Stats                DashboardStats    `json:"stats"`
}

// UpcomingSession is a scheduled session shown on the dashboard.
type UpcomingSession struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	ClientName      string    `json:"client_name"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes *int      `json:"duration_minutes"`
	SessionNumber   *int      `json:"session_number"`
	HasNote         bool      `json:"has_note"`
}

// RecentSession is one of the most recently scheduled sessions.
type RecentSession struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	Status      SessionStatus `json:"status"`
	HasSummary  bool          `json:"has_summary"`
}

// DashboardStats are the headline counters.
type DashboardStats struct {
	TotalClients      int `json:"total_clients"`
	SessionsThisMonth int `json:"sessions_this_month"`
	AIUsageCount      int `json:"ai_usage_count"`
	AIUsageLimit      int `json:"ai_usage_limit"`
}

// DashboardWindow bounds the time-based dashboard queries.
type DashboardWindow struct {
	// UpcomingFrom is the earliest scheduled_at listed as upcoming.
	UpcomingFrom time.Time
	// MonthStart is the first instant of the current month in the coach's timezone.
	MonthStart time.Time
}

const (
	// DashboardUpcomingLimit caps the upcoming session list.
	DashboardUpcomingLimit = 5
	// DashboardRecentLimit caps the recent session list.
	DashboardRecentLimit = 3
	// ClientRecentSessionsLimit caps the sessions embedded in a client detail.
	ClientRecentSessionsLimit = 5
)

// ClientDetail is a client with its most recent sessions.
type ClientDetail struct {
	ClientWithStats
	RecentSessions []SessionWithDetails `json:"recent_sessions"`
}

// Onboarding is the first-run profile setup, optionally registering the
// first client.
type Onboarding struct {
	Name        string
	Specialty   string
	ClientName  *string
	ClientEmail *string
}

// OnboardingResult is the updated coach and the client created alongside, if any.
type OnboardingResult struct {
	User   *User            `json:"user"`
	Client *ClientWithStats `json:"client"`
}
