package schedule

import (
	"fmt"
	"time"
)

// Policy describes a clinic's business-hours configuration. Hours are
// whole-hour marks in the clinic's local day (9 means 09:00).
type Policy struct {
	OpenHour            int
	CloseHour           int
	LunchStart          int
	LunchEnd            int
	SlotDurationMinutes int

	// StrictBoundaries enables the corrected slot-clipping mode: slots
	// whose end would cross into lunch or past closing are excluded.
	// The default (false) reproduces the legacy behavior, which only
	// tests the slot start hour.
	StrictBoundaries bool
}

// Validate checks the ordering invariant open < lunch start < lunch end < close.
func (p Policy) Validate() error {
	if p.SlotDurationMinutes <= 0 {
		return fmt.Errorf("slot duration must be positive, got %d", p.SlotDurationMinutes)
	}
	if !(p.OpenHour < p.LunchStart && p.LunchStart < p.LunchEnd && p.LunchEnd < p.CloseHour) {
		return fmt.Errorf("business hours out of order: open=%d lunch=[%d,%d) close=%d",
			p.OpenHour, p.LunchStart, p.LunchEnd, p.CloseHour)
	}
	return nil
}

// SlotDuration returns the slot length as a time.Duration.
func (p Policy) SlotDuration() time.Duration {
	return time.Duration(p.SlotDurationMinutes) * time.Minute
}
