// Package clock provides the calendar-date source used by date-dependent logic.
package clock

import "time"

// Clock reports the current calendar date.
type Clock interface {
	// Today returns the current date at midnight UTC.
	Today() time.Time
}

// System reads the local wall clock.
type System struct{}

func (System) Today() time.Time {
	return Date(time.Now())
}

// Fixed always reports the same date.
type Fixed struct {
	Day time.Time
}

// NewFixed returns a clock frozen at the date of t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{Day: Date(t)}
}

func (f *Fixed) Today() time.Time {
	return f.Day
}

// Advance moves the clock forward by the given number of days.
func (f *Fixed) Advance(days int) {
	f.Day = f.Day.AddDate(0, 0, days)
}

// Date truncates t to its calendar date, expressed at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the number of whole calendar days from a to b.
// The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int((Date(b).Unix() - Date(a).Unix()) / secondsPerDay)
}
