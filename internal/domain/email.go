package domain

import "time"

// FollowUpEmail is a drafted or sent email tied to a session.
type FollowUpEmail struct {
	ID             string      `json:"id"`
	SessionID      string      `json:"session_id"`
	RecipientEmail string      `json:"recipient_email"`
	Subject        string      `json:"subject"`
	Body           string      `json:"body"`
	Status         EmailStatus `json:"status"`
	SentAt         *time.Time  `json:"sent_at"`
	ErrorMessage   *string     `json:"error_message"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// EmailDraft holds the content of a new follow-up email.
type EmailDraft struct {
	RecipientEmail string
	Subject        string
	Body           string
}

// EmailUpdate is a partial edit of an email's content.
type EmailUpdate struct {
	Subject        *string
	Body           *string
	RecipientEmail *string
}

// Empty reports whether the update changes nothing.
func (u EmailUpdate) Empty() bool {
	return u.Subject == nil && u.Body == nil && u.RecipientEmail == nil
}

// GeneratedEmail is the output of a follow-up generator.
type GeneratedEmail struct {
	Subject string
	Body    string
}
