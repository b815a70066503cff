package flow

import (
	"fmt"
	"time"
)

// NightlyKey is the dateKey of the nightly plan that applies to t's day.
func NightlyKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeeklyKey is the ISO week key, e.g. "2026-W42".
func WeeklyKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether ms falls on the same calendar day as day, using
// day's location.
func SameDay(ms Millis, day time.Time) bool {
	start := StartOfDay(day)
	t := ms.Time().In(day.Location())
	return !t.Before(start) && t.Before(start.AddDate(0, 0, 1))
}
