package schedule

import (
	"strings"
	"time"

	"github.com/mkbeefcake/clinic-scheduler/internal/calendar"
)

// BusyInterval is an occupied period for a dentist, derived from an
// existing calendar event.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// BusyIntervals filters events down to the busy periods of the named
// dentist, matched case-insensitively against the "dentist: <name>"
// marker inside the event description. Events without the marker are
// ignored. Overlapping intervals are returned as-is; callers must treat
// the result as a raw exclusion set, not a normalized schedule.
func BusyIntervals(events []calendar.Event, dentist string) []BusyInterval {
	marker := "dentist: " + strings.ToLower(dentist)
	var busy []BusyInterval
	for _, ev := range events {
		if ev.Start.IsZero() || ev.End.IsZero() {
			continue
		}
		if strings.Contains(strings.ToLower(ev.Description), marker) {
			busy = append(busy, BusyInterval{Start: ev.Start, End: ev.End})
		}
	}
	return busy
}

// Overlaps reports whether a slot starting at slotStart with the given
// duration collides with the interval, using the half-open test: touching
// endpoints do not conflict.
func (b BusyInterval) Overlaps(slotStart time.Time, duration time.Duration) bool {
	slotEnd := slotStart.Add(duration)
	return slotStart.Before(b.End) && slotEnd.After(b.Start)
}
