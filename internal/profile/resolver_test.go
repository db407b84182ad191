package profile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/newsinflight/internal/models"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want models.Level
	}{
		{"missing", nil, models.LevelNormal},
		{"non-numeric string", "abc", models.LevelNormal},
		{"zero", float64(0), models.LevelNormal},
		{"four", float64(4), models.LevelNormal},
		{"negative", -1, models.LevelNormal},
		{"fractional", 1.5, models.LevelNormal},
		{"bool", true, models.LevelNormal},
		{"one", float64(1), models.LevelEasy},
		{"two", float64(2), models.LevelNormal},
		{"three", float64(3), models.LevelHard},
		{"int three", 3, models.LevelHard},
		{"numeric string", " 3 ", models.LevelHard},
		{"json number", json.Number("1"), models.LevelEasy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags([]interface{}{"stock", "", 42, "  crypto ", nil, "stock", true})
	assert.Equal(t, []string{"stock", "crypto"}, got)

	assert.Equal(t, []string{}, ParseTags("stock"))
	assert.Equal(t, []string{}, ParseTags(nil))
	assert.Equal(t, []string{"a", "b"}, ParseTags([]string{"a", "b", "a"}))
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, want.Equal(ParseTime("2026-10-01T12:00:00Z")))
	assert.True(t, want.Equal(ParseTime(float64(want.Unix()))))
	assert.True(t, want.Equal(ParseTime(float64(want.UnixMilli()))))
	assert.True(t, ParseTime("yesterday").IsZero())
	assert.True(t, ParseTime(nil).IsZero())
}

func TestResolve(t *testing.T) {
	_, err := Resolve(nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = Resolve(&Session{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	p, err := Resolve(&Session{
		UserID: "user_1",
		Email:  "pilot@example.com",
		Metadata: map[string]interface{}{
			"level":               float64(3),
			"interests":           []interface{}{"stock", "crypto"},
			"contextTags":         []interface{}{"loan_holder"},
			"onboarded_at":        "2026-09-01T00:00:00Z",
			"onboarding_complete": true,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "user_1", p.UserID)
	assert.Equal(t, models.LevelHard, p.Level)
	assert.Equal(t, []string{"stock", "crypto"}, p.InterestTags)
	assert.Equal(t, []string{"loan_holder"}, p.ContextTags)
	assert.True(t, p.Onboarded)
	assert.Equal(t, 2026, p.OnboardedAt.Year())
}

func TestResolveDefaults(t *testing.T) {
	p, err := Resolve(&Session{UserID: "user_2"})
	require.NoError(t, err)

	assert.Equal(t, models.LevelNormal, p.Level)
	assert.Empty(t, p.InterestTags)
	assert.Empty(t, p.ContextTags)
	assert.False(t, p.Onboarded)
	assert.True(t, p.OnboardedAt.IsZero())
}
