package domain

import "time"

// Note is the single free-text record attached to a session.
type Note struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	TemplateID  *string    `json:"template_id"`
	Content     string     `json:"content"`
	PlainText   string     `json:"plain_text"`
	IsDraft     bool       `json:"is_draft"`
	AutoSavedAt *time.Time `json:"auto_saved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
