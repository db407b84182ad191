package models

import "time"

// Plan is the billing plan of a subscription row.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Subscription is a single subscription row. EndsAt is zero when unset.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Plan      Plan      `json:"plan"`
	Active    bool      `json:"active"`
	StartedAt time.Time `json:"started_at"`
	EndsAt    time.Time `json:"ends_at"`
}
