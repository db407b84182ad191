package models

import "time"

// Level is the explanation-difficulty tier a user reads analyses at.
type Level int

const (
	LevelEasy   Level = 1
	LevelNormal Level = 2
	LevelHard   Level = 3

	// DefaultLevel is used whenever a stored level is missing or invalid.
	DefaultLevel = LevelNormal
)

// Valid reports whether l is one of the three known tiers.
func (l Level) Valid() bool {
	return l >= LevelEasy && l <= LevelHard
}

// ColumnPrefix returns the name of the analysis field family for l.
func (l Level) ColumnPrefix() string {
	switch l {
	case LevelEasy:
		return "easy"
	case LevelHard:
		return "hard"
	default:
		return "normal"
	}
}

func (l Level) String() string {
	return l.ColumnPrefix()
}

// UserProfile is the per-request view of a user's personalization settings.
type UserProfile struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email,omitempty"`
	Level        Level     `json:"level"`
	InterestTags []string  `json:"interests"`
	ContextTags  []string  `json:"contexts"`
	OnboardedAt  time.Time `json:"onboarded_at,omitempty"`
	Onboarded    bool      `json:"onboarding_complete"`
}

// User is the synced copy of an auth provider account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	Level        Level      `json:"level"`
	InterestTags []string   `json:"interests"`
	ContextTags  []string   `json:"contexts"`
	OnboardedAt  *time.Time `json:"onboarded_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Onboarding is the set of preferences a user submits when finishing onboarding.
type Onboarding struct {
	Level        Level     `json:"level"`
	InterestTags []string  `json:"interests"`
	ContextTags  []string  `json:"contexts"`
	OnboardedAt  time.Time `json:"onboarded_at"`
}
