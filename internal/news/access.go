package news

import (
	"math"
	"time"
)

// TrialPeriod is how long after onboarding every action guide is unblurred.
const TrialPeriod = 30 * 24 * time.Hour

// IsTrialPeriod reports whether now falls within the trial that starts at
// onboardedAt. A zero onboardedAt means the user never onboarded.
func IsTrialPeriod(onboardedAt, now time.Time) bool {
	if onboardedAt.IsZero() {
		return false
	}
	return now.Sub(onboardedAt) < TrialPeriod
}

// ShouldBlur decides whether an article's action guide is hidden. During the
// trial nothing is blurred; afterwards the persisted flag decides and a
// missing flag counts as blurred.
func ShouldBlur(onboardedAt, now time.Time, actionBlurred *bool) bool {
	if IsTrialPeriod(onboardedAt, now) {
		return false
	}
	return actionBlurred == nil || *actionBlurred
}

// TrialDaysRemaining returns the whole days left in the trial, rounded up.
func TrialDaysRemaining(onboardedAt, now time.Time) int {
	if !IsTrialPeriod(onboardedAt, now) {
		return 0
	}
	left := onboardedAt.Add(TrialPeriod).Sub(now)
	return int(math.Ceil(left.Hours() / 24))
}
