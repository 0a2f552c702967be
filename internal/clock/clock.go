// Package clock supplies "now" and calendar-day helpers to the services.
package clock

import (
	"fmt"
	"time"

	"github.com/fdg312/physique-hub/internal/apperr"
)

const DateLayout = "2006-01-02"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the wall clock.
var System Clock = systemClock{}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// Day truncates t to midnight of its calendar day in loc, returned as a UTC
// midnight so that days from any location compare and subtract cleanly.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is Day(c.Now(), loc).
func Today(c Clock, loc *time.Location) time.Time {
	return Day(c.Now(), loc)
}

// ParseDate parses YYYY-MM-DD into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// DaysBetween returns the whole calendar days from b to a (a - b).
func DaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// ParseDateOr parses s, or returns def when s is empty. Malformed input
// wraps apperr.ErrInvalidDate.
func ParseDateOr(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expected YYYY-MM-DD, got %q", apperr.ErrInvalidDate, s)
	}
	return d, nil
}
