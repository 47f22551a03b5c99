package model

import "time"

// StayInterval is a half-open date range [CheckIn, CheckOut).
// The checkout date is excluded, so back-to-back stays that share a
// boundary date do not overlap (same-day turnover is allowed).
type StayInterval struct {
	CheckIn  time.Time `json:"check_in" bson:"check_in"`
	CheckOut time.Time `json:"check_out" bson:"check_out"`
}

// Overlaps reports whether the two intervals share at least one night.
// The predicate is symmetric.
func (s StayInterval) Overlaps(other StayInterval) bool {
	return s.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(s.CheckOut)
}

// Nights returns the number of whole days between check-in and check-out.
// Zero for same-day or inverted intervals.
func (s StayInterval) Nights() int {
	n := int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Normalize snaps both boundaries to UTC calendar dates.
func (s StayInterval) Normalize() StayInterval {
	return StayInterval{CheckIn: DateOnly(s.CheckIn), CheckOut: DateOnly(s.CheckOut)}
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
