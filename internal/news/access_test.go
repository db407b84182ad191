package news

import (
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

func TestShouldBlur(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	inTrial := now.Add(-5 * 24 * time.Hour)
	expired := now.Add(-31 * 24 * time.Hour)

	tests := []struct {
		name        string
		onboardedAt time.Time
		flag        *bool
		want        bool
	}{
		{"trial flag true", inTrial, boolPtr(true), false},
		{"trial flag false", inTrial, boolPtr(false), false},
		{"trial flag absent", inTrial, nil, false},
		{"after trial flag true", expired, boolPtr(true), true},
		{"after trial flag false", expired, boolPtr(false), false},
		{"after trial flag absent", expired, nil, true},
		{"never onboarded flag false", time.Time{}, boolPtr(false), false},
		{"never onboarded flag absent", time.Time{}, nil, true},
		{"trial boundary", now.Add(-TrialPeriod), boolPtr(true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldBlur(tt.onboardedAt, now, tt.flag); got != tt.want {
				t.Errorf("ShouldBlur() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrialDaysRemaining(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		onboardedAt time.Time
		want        int
	}{
		{now, 30},
		{now.Add(-5 * 24 * time.Hour), 25},
		{now.Add(-5*24*time.Hour - time.Hour), 25},
		{now.Add(-TrialPeriod + time.Minute), 1},
		{now.Add(-TrialPeriod), 0},
		{time.Time{}, 0},
	}

	for _, tt := range tests {
		if got := TrialDaysRemaining(tt.onboardedAt, now); got != tt.want {
			t.Errorf("TrialDaysRemaining(%v) = %d, want %d", tt.onboardedAt, got, tt.want)
		}
	}
}
