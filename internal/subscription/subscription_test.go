package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/storage"
	"github.com/bilgisen/newsinflight/internal/storage/memory"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		sub  *models.Subscription
		want Status
	}{
		{"no row", nil, Economy},
		{"expired premium", &models.Subscription{Plan: models.PlanPremium, Active: true, EndsAt: past}, Economy},
		{"active premium", &models.Subscription{Plan: models.PlanPremium, Active: true, EndsAt: future}, FirstClass},
		{"expired free", &models.Subscription{Plan: models.PlanFree, Active: true, EndsAt: past}, Economy},
		{"active free", &models.Subscription{Plan: models.PlanFree, Active: true, EndsAt: future}, FirstClass},
		{"inactive premium", &models.Subscription{Plan: models.PlanPremium, Active: false, EndsAt: future}, Economy},
		{"inactive free", &models.Subscription{Plan: models.PlanFree, Active: false, EndsAt: future}, Economy},
		{"no end date", &models.Subscription{Plan: models.PlanPremium, Active: true}, Economy},
		{"ends exactly now", &models.Subscription{Plan: models.PlanPremium, Active: true, EndsAt: now}, Economy},
		{"unknown plan", &models.Subscription{Plan: "gold", Active: true, EndsAt: future}, Economy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sub, now))
		})
	}
}

type failingStore struct{}

func (failingStore) LatestSubscription(context.Context, string) (*models.Subscription, error) {
	return nil, errors.New("connection refused")
}

func newResolver(store storage.SubscriptionStore) *Resolver {
	r := NewResolver(store)
	r.now = func() time.Time { return now }
	return r
}

func TestResolve(t *testing.T) {
	store := memory.NewSubscriptionStore()
	store.Add(models.Subscription{
		ID: "old", UserID: "paid", Plan: models.PlanFree, Active: true,
		StartedAt: now.Add(-60 * 24 * time.Hour), EndsAt: now.Add(-30 * 24 * time.Hour),
	})
	store.Add(models.Subscription{
		ID: "new", UserID: "paid", Plan: models.PlanPremium, Active: true,
		StartedAt: now.Add(-24 * time.Hour), EndsAt: now.Add(36 * time.Hour),
	})
	r := newResolver(store)

	res := r.Resolve(context.Background(), "paid")
	assert.Equal(t, FirstClass, res.Status)
	assert.Equal(t, SourceSubscriptions, res.Source)
	if assert.NotNil(t, res.EndsAt) {
		assert.Equal(t, 2, res.DaysRemaining(now))
	}

	res = r.Resolve(context.Background(), "nobody")
	assert.Equal(t, Result{Status: Economy, Source: SourceDefault}, res)
	assert.Zero(t, res.DaysRemaining(now))
}

func TestResolveFallsBackOnError(t *testing.T) {
	res := newResolver(failingStore{}).Resolve(context.Background(), "user")
	assert.Equal(t, Economy, res.Status)
	assert.Equal(t, SourceFallback, res.Source)
}
