// Package timewindow computes the UTC day and month intervals news queries run over.
//
// Malformed or missing input never fails: it silently falls back to the
// current day or month. Callers that need to know whether the requested
// window was honoured can compare Label with their input.
package timewindow

import (
	"regexp"
	"strconv"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

var (
	dayPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// Granularity is the size of a window.
type Granularity int

const (
	Daily Granularity = iota
	Monthly
)

// Window is a half-open [Start, End) UTC interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Day returns the UTC day named by date (YYYY-MM-DD), or the day containing now.
func Day(date string, now time.Time) Window {
	if dayPattern.MatchString(date) {
		if start, err := time.ParseInLocation(DayLayout, date, time.UTC); err == nil {
			return dayWindow(start)
		}
	}
	now = now.UTC()
	return dayWindow(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
}

// Month returns the UTC month named by month (YYYY-MM), or the month containing now.
func Month(month string, now time.Time) Window {
	if m := monthPattern.FindStringSubmatch(month); m != nil {
		year, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		if mon >= 1 && mon <= 12 {
			return monthWindow(year, time.Month(mon))
		}
	}
	now = now.UTC()
	return monthWindow(now.Year(), now.Month())
}

// For dispatches to Day or Month by granularity.
func For(g Granularity, value string, now time.Time) Window {
	if g == Monthly {
		return Month(value, now)
	}
	return Day(value, now)
}

func dayWindow(start time.Time) Window {
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, 1),
		Label: start.Format(DayLayout),
	}
}

func monthWindow(year int, month time.Month) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Window{
		Start: start,
		End:   start.AddDate(0, 1, 0),
		Label: start.Format(MonthLayout),
	}
}
