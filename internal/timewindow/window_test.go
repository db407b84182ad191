package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 10, 16, 22, 30, 0, 0, time.FixedZone("KST", 9*3600))

func TestDay(t *testing.T) {
	w := Day("2026-02-28", now)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, "2026-02-28", w.Label)
}

func TestDayFallsBackToToday(t *testing.T) {
	// now is 13:30 UTC on the 16th.
	today := Window{
		Start: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		Label: "2026-10-16",
	}

	for _, in := range []string{"", "2026-10", "2026-13-01", "2026-02-30", "16/10/2026", "2026-10-16T00:00:00Z"} {
		assert.Equal(t, today, Day(in, now), "input %q", in)
	}
}

func TestMonth(t *testing.T) {
	w := Month("2025-12", now)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, "2025-12", w.Label)
}

func TestMonthFallsBackToCurrentMonth(t *testing.T) {
	current := Month("", now)
	assert.Equal(t, "2026-10", current.Label)

	for _, in := range []string{"2026-00", "2026-13", "2026-1", "26-01", "abc", "2026-01-01", " 2026-01"} {
		assert.Equal(t, current, Month(in, now), "input %q", in)
	}
}

func TestWindowContains(t *testing.T) {
	w := Day("2026-10-01", now)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
}

func TestFor(t *testing.T) {
	assert.Equal(t, "2026-10", For(Monthly, "", now).Label)
	assert.Equal(t, "2026-10-16", For(Daily, "", now).Label)
}
