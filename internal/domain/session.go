package domain

import "time"

// Session is one scheduled or completed coaching meeting.
type Session struct {
	ID              string        `json:"id"`
	ClientID        string        `json:"client_id"`
	UserID          string        `json:"user_id"`
	ScheduledAt     time.Time     `json:"scheduled_at"`
	DurationMinutes *int          `json:"duration_minutes"`
	Status          SessionStatus `json:"status"`
	SessionNumber   *int          `json:"session_number"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// SessionWithDetails is a session joined with its client and dependent-entity flags.
type SessionWithDetails struct {
	Session
	ClientName  string  `json:"client_name"`
	ClientEmail *string `json:"client_email"`
	HasNote     bool    `json:"has_note"`
	HasSummary  bool    `json:"has_summary"`
	HasFollowUp bool    `json:"has_follow_up"`
}

// NewSession holds the inputs for scheduling a session.
type NewSession struct {
	UserID          string
	ClientID        string
	ScheduledAt     time.Time
	DurationMinutes *int
	TemplateID      string
}

// SessionUpdate is a partial update; nil fields are left untouched.
type SessionUpdate struct {
	ScheduledAt     *time.Time
	DurationMinutes *int
	// ClearDuration sets duration_minutes to NULL. It wins over DurationMinutes.
	ClearDuration bool
	Status        *SessionStatus
}

// Empty reports whether the update changes nothing.
func (u SessionUpdate) Empty() bool {
	return u.ScheduledAt == nil && u.DurationMinutes == nil && !u.ClearDuration && u.Status == nil
}

// SessionFilter narrows a session listing.
type SessionFilter struct {
	ClientID string
	From     *time.Time
	To       *time.Time
	Status   SessionStatus
	Page     int
	Limit    int
}

// SessionDetail is the assembled view of one session.
type SessionDetail struct {
	SessionWithDetails
	Note            *Note           `json:"note"`
	Summary         *Summary        `json:"summary"`
	Emails          []FollowUpEmail `json:"emails"`
	PreviousSummary *Summary        `json:"previous_summary"`
}
