package domain

import (
	"encoding/json"
	"time"
)

// ActionItem is one follow-up task extracted from a session.
type ActionItem struct {
	Item string `json:"item"`
	Done bool   `json:"done"`
}

// Summary is one immutable-version snapshot of a generated session summary.
// ActionItems holds the serialized JSON list of ActionItem.
type Summary struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	SummaryText string    `json:"summary_text"`
	ActionItems *string   `json:"action_items"`
	NextAgenda  *string   `json:"next_agenda"`
	Model       string    `json:"model"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

// ParsedActionItems decodes ActionItems.
func (s *Summary) ParsedActionItems() ([]ActionItem, error) {
	if s.ActionItems == nil || *s.ActionItems == "" {
		return nil, nil
	}
	var items []ActionItem
	if err := json.Unmarshal([]byte(*s.ActionItems), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SummaryUpdate edits fields of an existing version in place.
type SummaryUpdate struct {
	SummaryText *string
	ActionItems *string
	NextAgenda  *string
}

// Empty reports whether the update changes nothing.
func (u SummaryUpdate) Empty() bool {
	return u.SummaryText == nil && u.ActionItems == nil && u.NextAgenda == nil
}

// GeneratedSummary is the output of a summary generator.
type GeneratedSummary struct {
	SummaryText string
	ActionItems []ActionItem
	NextAgenda  string
	Model       string
}

// EncodeActionItems serializes action items the way they are stored.
func EncodeActionItems(items []ActionItem) (string, error) {
	if items == nil {
		items = []ActionItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
