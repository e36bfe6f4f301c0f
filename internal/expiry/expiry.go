// Package expiry derives the display status of a compliance document from its
// expiry date. Pure functions, no I/O — callers pass "now" explicitly so the
// classification is deterministic and testable.
package expiry

import "time"

// SoonThresholdDays is the window within which a document counts as
// expiring soon. The boundary is inclusive: exactly 30 days out is
// still "expiring soon".
const SoonThresholdDays = 30

// Status classifies a document's expiry date relative to a reference time.
// Derived at display time, never persisted.
type Status int

const (
	// StatusNone means the document has no expiry date.
	StatusNone Status = iota
	// StatusExpired means the expiry date is in the past.
	StatusExpired
	// StatusExpiringSoon means the document expires within SoonThresholdDays.
	StatusExpiringSoon
	// StatusValid means the expiry date is more than SoonThresholdDays away.
	StatusValid
)

// String returns the status name for logging and display.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusExpired:
		return "expired"
	case StatusExpiringSoon:
		return "expiring_soon"
	case StatusValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Classify maps an expiry date to a Status relative to now. A zero expiry
// time means the document has no expiry date and yields StatusNone.
//
// Day counting uses calendar-date subtraction: both instants are truncated
// to their civil date before diffing, so a document expiring today is
// "expiring soon" all day rather than flipping to "expired" at some hour
// past midnight.
func Classify(expiry, now time.Time) Status {
	if expiry.IsZero() {
		return StatusNone
	}

	days := DaysUntil(expiry, now)

	switch {
	case days < 0:
		return StatusExpired
	case days <= SoonThresholdDays:
		return StatusExpiringSoon
	default:
		return StatusValid
	}
}

// DaysUntil returns the number of whole calendar days from now until expiry.
// Negative when the expiry date has passed, zero when it is today. Partial
// days round up to the next calendar day, matching the remaining-days count
// shown to users ("expires in 14 days").
func DaysUntil(expiry, now time.Time) int {
	e := civil(expiry)
	n := civil(now)

	return int(e.Sub(n) / (24 * time.Hour))
}

// civil truncates an instant to midnight UTC of its calendar date.
// Both operands of a diff go through this, so the subtraction is always
// an exact multiple of 24 hours.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
