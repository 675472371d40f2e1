package domain

import "time"

// User is the coach operating the system.
type User struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	Title               *string    `json:"title"`
	Specialty           *string    `json:"specialty"`
	Plan                string     `json:"plan"`
	AIUsageCount        int        `json:"ai_usage_count"`
	AIUsageResetAt      *time.Time `json:"ai_usage_reset_at"`
	Timezone            string     `json:"timezone"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	EmailSignature      *string    `json:"email_signature"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// UserUpdate is a partial profile update.
type UserUpdate struct {
	Name           *string
	Email          *string
	Title          *string
	Specialty      *string
	Timezone       *string
	EmailSignature *string

	OnboardingCompleted *bool
}

// QuotaStatus is the result of a quota check.
type QuotaStatus struct {
	Allowed bool `json:"allowed"`
	Count   int  `json:"count"`
	Limit   int  `json:"limit"`
}

// QuotaUsage is the result of a quota increment.
type QuotaUsage struct {
	Count int `json:"count"`
	Limit int `json:"limit"`
}

// UsageLog records one successful AI generation.
type UsageLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Feature   AIFeature `json:"feature"`
	SessionID *string   `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}
