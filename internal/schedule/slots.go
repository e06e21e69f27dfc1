package schedule

import "time"

// IsBusinessDay reports whether t falls on a Monday through Friday.
// There is no holiday calendar.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextBusinessDays walks forward from start, one calendar day at a time,
// and collects the first n business days. The start day itself counts
// when it is a business day.
func NextBusinessDays(start time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	cur := start
	for len(days) < n {
		if IsBusinessDay(cur) {
			days = append(days, cur)
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// SlotsForDay enumerates candidate appointment starts for the calendar day
// of `day`, beginning at the open hour and advancing by the slot duration.
//
// Lunch handling preserves the legacy semantics: only the slot's start
// hour is compared against the lunch-start hour, and the jump to lunch end
// keeps the minute component of the running pointer. A duration that does
// not divide the morning evenly therefore resumes off the hour after
// lunch (e.g. a 40-minute grid reaches 12:20, skips it, and resumes at
// 13:20), and a slot starting just before lunch may run into it.
// StrictBoundaries clips those edge slots instead.
func SlotsForDay(p Policy, day time.Time) []time.Time {
	loc := day.Location()
	cur := time.Date(day.Year(), day.Month(), day.Day(), p.OpenHour, 0, 0, 0, loc)
	closeAt := time.Date(day.Year(), day.Month(), day.Day(), p.CloseHour, 0, 0, 0, loc)
	lunchAt := time.Date(day.Year(), day.Month(), day.Day(), p.LunchStart, 0, 0, 0, loc)

	var slots []time.Time
	for cur.Hour() < p.CloseHour {
		if cur.Hour() != p.LunchStart {
			if p.StrictBoundaries {
				end := cur.Add(p.SlotDuration())
				crossesLunch := cur.Before(lunchAt) && end.After(lunchAt)
				if !crossesLunch && !end.After(closeAt) {
					slots = append(slots, cur)
				}
			} else {
				slots = append(slots, cur)
			}
		}
		if cur.Hour() == p.LunchStart {
			cur = time.Date(day.Year(), day.Month(), day.Day(), p.LunchEnd, cur.Minute(), 0, 0, loc)
		} else {
			cur = cur.Add(p.SlotDuration())
		}
	}
	return slots
}
