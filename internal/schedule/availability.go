package schedule

import "time"

// DayLabelFormat renders a day key like "Thursday, September 25, 2025".
const DayLabelFormat = "Monday, January 02, 2006"

// DayAvailability holds the free slots of a single business day, in
// chronological order.
type DayAvailability struct {
	Date  time.Time
	Label string
	Slots []time.Time
}

// Availability is the free-slot result over the engine's window, one
// entry per business day that still has at least one open slot, in
// calendar order.
type Availability struct {
	Days []DayAvailability
}

// Empty reports whether no day has any free slot.
func (a Availability) Empty() bool {
	return len(a.Days) == 0
}

// Engine computes free appointment slots over the next business days.
type Engine struct {
	policy Policy
	loc    *time.Location
	days   int
	now    func() time.Time
}

// NewEngine builds an availability engine for the clinic timezone.
func NewEngine(policy Policy, loc *time.Location, days int) *Engine {
	if days <= 0 {
		days = 3
	}
	return &Engine{
		policy: policy,
		loc:    loc,
		days:   days,
		now:    time.Now,
	}
}

// WithClock overrides the engine's notion of "now". Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Policy returns the engine's business-hours policy.
func (e *Engine) Policy() Policy { return e.policy }

// Window returns the calendar query range covering the engine's business
// days: from now until the last day's closing hour plus one slot.
func (e *Engine) Window() (time.Time, time.Time) {
	now := e.now().In(e.loc)
	days := NextBusinessDays(now, e.days)
	last := days[len(days)-1]
	max := time.Date(last.Year(), last.Month(), last.Day(), e.policy.CloseHour, 0, 0, 0, e.loc).
		Add(e.policy.SlotDuration())
	return now, max
}

// Available computes the free-slot set for the next business days, given
// the dentist's busy intervals. Slots in the past are dropped on the
// current day only; a slot conflicts with a busy interval when
// slotStart < busyEnd && slotEnd > busyStart. Days left with no free slot
// are omitted entirely.
func (e *Engine) Available(busy []BusyInterval) Availability {
	now := e.now().In(e.loc)
	duration := e.policy.SlotDuration()

	var result Availability
	for _, day := range NextBusinessDays(now, e.days) {
		candidates := SlotsForDay(e.policy, day)

		var free []time.Time
		for _, slot := range candidates {
			if sameDate(day, now) && !slot.After(now) {
				continue
			}
			conflicted := false
			for _, b := range busy {
				if b.Overlaps(slot, duration) {
					conflicted = true
					break
				}
			}
			if !conflicted {
				free = append(free, slot)
			}
		}

		if len(free) > 0 {
			result.Days = append(result.Days, DayAvailability{
				Date:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, e.loc),
				Label: free[0].Format(DayLabelFormat),
				Slots: free,
			})
		}
	}
	return result
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
