// Package subscription classifies users into seat classes from their
// subscription rows.
package subscription

import (
	"context"
	"math"
	"time"

	"github.com/bilgisen/newsinflight/internal/logger"
	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/storage"
)

// Status is the seat class shown to the user.
type Status string

const (
	FirstClass Status = "first_class"
	Economy    Status = "economy"
)

// Where a Result's status came from.
const (
	SourceSubscriptions = "subscriptions"
	SourceDefault       = "default"
	SourceFallback      = "fallback"
)

// Result is the resolved subscription state of a user.
type Result struct {
	Status Status     `json:"status"`
	Source string     `json:"source"`
	EndsAt *time.Time `json:"ends_at,omitempty"`
}

// Classify applies the plan rules to the user's latest row. Both plans grant
// first class while active and not yet ended; a row without an end date never
// qualifies.
func Classify(sub *models.Subscription, now time.Time) Status {
	if sub == nil || !sub.Active || sub.EndsAt.IsZero() {
		return Economy
	}
	switch sub.Plan {
	case models.PlanPremium, models.PlanFree:
		if sub.EndsAt.After(now) {
			return FirstClass
		}
	}
	return Economy
}

// DaysRemaining returns the whole days until the result's end date, rounded up.
func (r Result) DaysRemaining(now time.Time) int {
	if r.Status != FirstClass || r.EndsAt == nil || !r.EndsAt.After(now) {
		return 0
	}
	return int(math.Ceil(r.EndsAt.Sub(now).Hours() / 24))
}

// Resolver reads subscription rows and classifies them.
type Resolver struct {
	store storage.SubscriptionStore
	now   func() time.Time
}

func NewResolver(store storage.SubscriptionStore) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Resolve never fails: backend errors are logged and the user is treated as
// economy.
func (r *Resolver) Resolve(ctx context.Context, userID string) Result {
	sub, err := r.store.LatestSubscription(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Warn().
			Err(err).
			Str("user_id", userID).
			Msg("subscription lookup failed, defaulting to economy")
		return Result{Status: Economy, Source: SourceFallback}
	}
	if sub == nil {
		return Result{Status: Economy, Source: SourceDefault}
	}

	res := Result{
		Status: Classify(sub, r.now()),
		Source: SourceSubscriptions,
	}
	if !sub.EndsAt.IsZero() {
		ends := sub.EndsAt.UTC()
		res.EndsAt = &ends
	}
	return res
}
