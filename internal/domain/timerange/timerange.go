package timerange

import "time"

// Range is a symbolic time-window token from the search API.
type Range string

const (
	// Today starts at midnight of the reference day.
	Today Range = "today"
	// ThisWeek is a rolling trailing 7 days.
	ThisWeek Range = "thisWeek"
	// ThisMonth starts at the first day of the reference month.
	ThisMonth Range = "thisMonth"
	// ThisYear starts at January 1 of the reference year.
	ThisYear Range = "thisYear"
	// AllTime starts at the Unix epoch.
	AllTime Range = "allTime"
)

// Epoch is the open-window sentinel start.
var Epoch = time.Unix(0, 0).UTC()

// Parse maps a token to a Range. Unknown tokens resolve to AllTime:
// an unrecognized range must widen the window, never fail the request.
func Parse(s string) Range {
	switch Range(s) {
	case Today, ThisWeek, ThisMonth, ThisYear, AllTime:
		return Range(s)
	default:
		return AllTime
	}
}

// Resolve maps a range to its concrete start instant relative to now.
// The window is open-ended toward now; no end boundary is produced.
//
// thisWeek is rolling (now minus 7 days) while thisMonth/thisYear are
// calendar-aligned. One policy for every call site.
func Resolve(r Range, now time.Time) time.Time {
	switch r {
	case Today:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case ThisWeek:
		return now.AddDate(0, 0, -7)
	case ThisMonth:
		y, m, _ := now.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	case ThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return Epoch
	}
}
