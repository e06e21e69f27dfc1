package schedule

import (
	"fmt"
	"strings"
)

// NoSlotsMessage is the fixed response when the whole window is booked out.
const NoSlotsMessage = "No available slots found in the next 3 business days."

// FormatSummary renders availability into a compact voice/SMS-friendly
// string like "Thursday 9:00 am ~ 5:00 pm, Friday 11:00 am ~ 4:00 pm".
//
// Each day reports the bounding envelope of its free slots, from the
// earliest start to the latest start plus one slot duration. It is not
// the literal union of free intervals, so a
// day with a gap in the middle still reads as one range. End hours of 17
// and later keep their raw 24-hour number ("17:00 pm"), a legacy quirk
// kept for compatibility with existing consumers of the string.
func FormatSummary(a Availability, p Policy) string {
	if a.Empty() {
		return NoSlotsMessage
	}

	var segments []string
	for _, day := range a.Days {
		if len(day.Slots) == 0 {
			continue
		}
		dayName := day.Slots[0].Format("Monday")

		min := day.Slots[0]
		max := day.Slots[0]
		for _, s := range day.Slots[1:] {
			if s.Before(min) {
				min = s
			}
			if s.After(max) {
				max = s
			}
		}
		end := max.Add(p.SlotDuration())

		segments = append(segments, fmt.Sprintf("%s %s ~ %s",
			dayName, formatStartHour(min.Hour()), formatEndHour(end.Hour())))
	}
	if len(segments) == 0 {
		return "No available slots"
	}
	return strings.Join(segments, ", ")
}

func formatStartHour(hour int) string {
	switch {
	case hour < 12:
		return fmt.Sprintf("%d:00 am", hour)
	case hour == 12:
		return "12:00 pm"
	default:
		return fmt.Sprintf("%d:00 pm", hour-12)
	}
}

func formatEndHour(hour int) string {
	switch {
	case hour < 12:
		return fmt.Sprintf("%d:00 am", hour)
	case hour == 12:
		return "12:00 pm"
	case hour < 17:
		return fmt.Sprintf("%d:00 pm", hour-12)
	default:
		// 17:00 onward renders with the 24-hour number.
		return fmt.Sprintf("%d:00 pm", hour)
	}
}
