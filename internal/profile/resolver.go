// Package profile turns the auth provider's session metadata into a UserProfile.
package profile

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bilgisen/newsinflight/internal/models"
)

// ErrUnauthenticated is returned when no verified session is available.
var ErrUnauthenticated = errors.New("not authenticated")

// Metadata keys written by the onboarding flow.
const (
	KeyLevel              = "level"
	KeyInterests          = "interests"
	KeyContexts           = "contexts"
	KeyOnboardedAt        = "onboarded_at"
	KeyOnboardingComplete = "onboarding_complete"
)

// Session is the verified identity and metadata of the caller.
type Session struct {
	UserID   string
	Email    string
	Metadata map[string]interface{}
}

// Resolve builds the caller's profile from session metadata, applying defaults
// for anything missing or malformed.
func Resolve(s *Session) (models.UserProfile, error) {
	if s == nil || s.UserID == "" {
		return models.UserProfile{}, ErrUnauthenticated
	}

	md := s.Metadata
	p := models.UserProfile{
		UserID:       s.UserID,
		Email:        s.Email,
		Level:        ParseLevel(lookup(md, KeyLevel)),
		InterestTags: ParseTags(lookup(md, KeyInterests, "interestTags")),
		ContextTags:  ParseTags(lookup(md, KeyContexts, "contextTags")),
		OnboardedAt:  ParseTime(lookup(md, KeyOnboardedAt, "onboardedAt")),
	}
	complete, _ := lookup(md, KeyOnboardingComplete, "onboardingComplete").(bool)
	p.Onboarded = complete || !p.OnboardedAt.IsZero()

	return p, nil
}

func lookup(md map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := md[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// ParseLevel keeps levels 1 and 3 and maps every other value to the default.
func ParseLevel(v interface{}) models.Level {
	n, ok := toInt(v)
	if !ok {
		return models.DefaultLevel
	}
	switch l := models.Level(n); l {
	case models.LevelEasy, models.LevelHard:
		return l
	default:
		return models.DefaultLevel
	}
}

func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case models.Level:
		return int(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := strconv.Atoi(t.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}

// ParseTags reads a list of tags, dropping non-string, blank and repeated entries.
func ParseTags(v interface{}) []string {
	var raw []interface{}
	switch t := v.(type) {
	case []interface{}:
		raw = t
	case []string:
		raw = make([]interface{}, len(t))
		for i, s := range t {
			raw[i] = s
		}
	default:
		return []string{}
	}

	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		tags = append(tags, s)
	}
	return tags
}

// ParseTime accepts RFC3339 strings and Unix timestamps in seconds or
// milliseconds. Anything else yields the zero time.
func ParseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(t)); err == nil {
			return ts.UTC()
		}
	case float64:
		return fromUnix(int64(t))
	case int64:
		return fromUnix(t)
	case int:
		return fromUnix(int64(t))
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return fromUnix(n)
		}
	}
	return time.Time{}
}

func fromUnix(n int64) time.Time {
	if n <= 0 {
		return time.Time{}
	}
	// Values this large can only be milliseconds.
	if n > 1e11 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
