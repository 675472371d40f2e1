package domain

import "time"

// Client is a coachee.
type Client struct {
	ID                    string       `json:"id"`
	UserID                string       `json:"user_id"`
	Name                  string       `json:"name"`
	Email                 *string      `json:"email"`
	Phone                 *string      `json:"phone"`
	Company               *string      `json:"company"`
	Goals                 *string      `json:"goals"`
	Notes                 *string      `json:"notes"`
	Status                ClientStatus `json:"status"`
	ContractStartDate     *string      `json:"contract_start_date"`
	ContractEndDate       *string      `json:"contract_end_date"`
	ContractTotalSessions *int         `json:"contract_total_sessions"`
	ContractFee           *int         `json:"contract_fee"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// ClientWithStats adds session aggregates to a client.
type ClientWithStats struct {
	Client
	SessionCount int `json:"session_count"`
}

// ClientInput carries client fields for create and update. Nil fields are
// stored as NULL on create and left untouched on update.
type ClientInput struct {
	Name                  *string
	Email                 *string
	Phone                 *string
	Company               *string
	Goals                 *string
	Notes                 *string
	Status                *ClientStatus
	ContractStartDate     *string
	ContractEndDate       *string
	ContractTotalSessions *int
	ContractFee           *int
}

// ClientFilter narrows a client listing. Status "all" disables the status filter.
type ClientFilter struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// GoalScore is a point-in-time rating of a client's goal.
type GoalScore struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	SessionID *string   `json:"session_id"`
	GoalLabel string    `json:"goal_label"`
	Score     int       `json:"score"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Template is reusable initial note content.
type Template struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Content     string    `json:"content"`
	Category    *string   `json:"category"`
	IsSystem    bool      `json:"is_system"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TemplateInput carries template fields for create and update.
type TemplateInput struct {
	Name        *string
	Description *string
	Content     *string
	Category    *string
}

// SearchResult groups search hits by entity.
type SearchResult struct {
	Clients  []ClientHit  `json:"clients"`
	Sessions []SessionHit `json:"sessions"`
}

// ClientHit is a client matched by search.
type ClientHit struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Email   *string      `json:"email"`
	Company *string      `json:"company"`
	Status  ClientStatus `json:"status"`
}

// SessionHit is a session whose note matched a search.
type SessionHit struct {
	ID          string    `json:"id"`
	ClientName  string    `json:"client_name"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Snippet     string    `json:"snippet"`
}
