package trending

import "time"

// DefaultWindowDays is the trailing window length for trending lists.
const DefaultWindowDays = 7

// Window is a trailing time interval ending at a reference date.
// Both ends are inclusive.
type Window struct {
	reference  time.Time
	windowDays int
	limit      int
}

// NewWindow creates a trailing window of windowDays days ending at reference.
// windowDays <= 0 falls back to DefaultWindowDays.
func NewWindow(reference time.Time, windowDays, limit int) Window {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return Window{reference: reference, windowDays: windowDays, limit: limit}
}

// Reference returns the window end.
func (w Window) Reference() time.Time { return w.reference }

// Start returns the window start (reference minus windowDays).
func (w Window) Start() time.Time { return w.reference.AddDate(0, 0, -w.windowDays) }

// Limit returns the top-K bound.
func (w Window) Limit() int { return w.limit }

// Contains reports whether ts falls inside [Start, Reference].
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start()) && !ts.After(w.reference)
}
