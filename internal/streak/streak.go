// Package streak computes the run of consecutive logged days ending at a
// given date.
package streak

import (
	"sort"
	"time"

	"github.com/fdg312/physique-hub/internal/clock"
)

// DefaultLookbackCap bounds how many distinct dates are scanned.
const DefaultLookbackCap = 400

// State is the derived streak. It is never stored.
type State struct {
	Length         int     `json:"length"`
	AnchorDate     string  `json:"anchor_date"`
	LastLoggedDate *string `json:"last_logged_date"`
}

// Compute walks the distinct logged dates newest first. The date at index i
// belongs to the streak only when it lies exactly i days before asOf; the
// first mismatch ends the walk. There is no grace day, so nothing logged on
// asOf means length 0. Dates after asOf are ignored.
func Compute(dates []time.Time, asOf time.Time) State {
	anchor := clock.Day(asOf, time.UTC)
	state := State{AnchorDate: anchor.Format(clock.DateLayout)}

	days := normalize(dates, anchor)
	if len(days) == 0 {
		return state
	}

	last := days[0].Format(clock.DateLayout)
	state.LastLoggedDate = &last

	for i, d := range days {
		if clock.DaysBetween(anchor, d) != i {
			break
		}
		state.Length = i + 1
	}

	return state
}

// normalize returns distinct calendar days on or before anchor, newest first.
func normalize(dates []time.Time, anchor time.Time) []time.Time {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := clock.Day(d, time.UTC)
		if day.After(anchor) {
			continue
		}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	out := days[:0]
	for i, d := range days {
		if i > 0 && d.Equal(days[i-1]) {
			continue
		}
		out = append(out, d)
	}
	return out
}
