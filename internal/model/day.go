package model

import "time"

// DayStart normalizes an instant to the start of its calendar day in loc.
// The same rule is applied to the upsert key and every lookup key so the two
// can never drift apart.
func DayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayWindow returns the half-open interval [dayStart, dayEnd) covering the
// calendar day of t in loc.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := DayStart(t, loc)
	return start, start.AddDate(0, 0, 1)
}
