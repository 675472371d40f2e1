// Package domain defines the core domain models for coachcanvas.
package domain

// SessionStatus represents the status of a coaching session.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
	SessionStatusNoShow    SessionStatus = "no_show"
)

// Valid reports whether s is one of the known session statuses.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusCompleted, SessionStatusCancelled, SessionStatusNoShow:
		return true
	}
	return false
}

// EmailStatus represents the send state of a follow-up email.
type EmailStatus string

const (
	EmailStatusDraft  EmailStatus = "draft"
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// ClientStatus represents whether a client is active or archived.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusArchived ClientStatus = "archived"
)

// Specialty is a coach's practice area.
type Specialty string

const (
	SpecialtyLife     Specialty = "life"
	SpecialtyBusiness Specialty = "business"
	SpecialtyCareer   Specialty = "career"
	SpecialtyOther    Specialty = "other"
)

// Valid reports whether s is one of the known specialties.
func (s Specialty) Valid() bool {
	switch s {
	case SpecialtyLife, SpecialtyBusiness, SpecialtyCareer, SpecialtyOther:
		return true
	}
	return false
}

// AIFeature names an AI capability that consumes quota.
type AIFeature string

const (
	AIFeatureSummary  AIFeature = "summary"
	AIFeatureFollowUp AIFeature = "follow_up"
)

// SearchType restricts which entities a search covers.
type SearchType string

const (
	SearchTypeAll      SearchType = "all"
	SearchTypeClients  SearchType = "clients"
	SearchTypeSessions SearchType = "sessions"
)

const (
	// MinDurationMinutes and MaxDurationMinutes bound a session's duration.
	MinDurationMinutes = 1
	MaxDurationMinutes = 480

	// MinSummaryNoteLength is the minimum trimmed note length for summary generation.
	MinSummaryNoteLength = 10
)
