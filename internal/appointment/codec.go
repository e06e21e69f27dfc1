package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkbeefcake/clinic-scheduler/internal/calendar"
)

// detailTimeFormat renders event instants like "2025-09-25 09:00 AM EDT".
const detailTimeFormat = "2006-01-02 03:04 PM MST"

// EncodeDescription renders patient metadata into the free-text calendar
// event description that serves as the de-facto appointment record.
func EncodeDescription(p Params) string {
	var b strings.Builder
	b.WriteString("Booking Information:\n")
	b.WriteString("------------------\n")
	fmt.Fprintf(&b, "Patient: %s\n", p.PatientName)
	fmt.Fprintf(&b, "Phone: %s\n", p.PatientPhone)
	fmt.Fprintf(&b, "Service: %s\n", p.ServiceType)
	fmt.Fprintf(&b, "Dentist: %s\n", p.Dentist)
	b.WriteString("\n")
	if p.Referral != "" {
		fmt.Fprintf(&b, "Referral: %s\n", p.Referral)
	}
	if p.InsuranceName != "" {
		fmt.Fprintf(&b, "Insurance: %s\n", p.InsuranceName)
	}
	return strings.TrimSpace(b.String())
}

// Details is the decoded view of a calendar event: the patient metadata
// recovered from the description plus whatever optional event fields were
// present. Every field is independently absent-safe.
type Details struct {
	EventID       string
	Summary       string
	PatientName   string
	PatientPhone  string
	ServiceType   string
	Dentist       string
	Referral      string
	InsuranceName string
	Location      string

	StartTime       string
	EndTime         string
	Start           time.Time
	End             time.Time
	DurationMinutes int

	CreatedAt   string
	LastUpdated string
	Status      string
	Creator     string
	Organizer   string

	ConferenceLink string
	ConferenceType string
	Attachments    []calendar.Attachment
	Reminders      []calendar.Reminder
	RecurrenceRule []string
	ColorID        string
}

// DecodeDetails extracts appointment details from a calendar event.
//
// Description labels are matched by lowercase substring containment, not
// exact equality, so any label merely containing "patient", "phone",
// "service", "dentist", "referral" or "insurance" assigns that field.
// Note the ordering: "patient" is tested before "phone", so a line like
// "patient phone: x" lands in the name field. This loose matching is the
// established record format and is kept as-is.
func DecodeDetails(ev calendar.Event, loc *time.Location) Details {
	d := Details{
		EventID:        ev.ID,
		Summary:        ev.Summary,
		Location:       ev.Location,
		CreatedAt:      ev.Created,
		LastUpdated:    ev.Updated,
		Status:         ev.Status,
		Creator:        ev.Creator,
		Organizer:      ev.Organizer,
		ConferenceLink: ev.ConferenceLink,
		ConferenceType: ev.ConferenceType,
		Attachments:    ev.Attachments,
		Reminders:      ev.Reminders,
		RecurrenceRule: ev.Recurrence,
		ColorID:        ev.ColorID,
	}

	for _, line := range strings.Split(ev.Description, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])

		switch {
		case strings.Contains(key, "patient"):
			d.PatientName = value
		case strings.Contains(key, "phone"):
			d.PatientPhone = value
		case strings.Contains(key, "service"):
			d.ServiceType = value
		case strings.Contains(key, "dentist"):
			d.Dentist = value
		case strings.Contains(key, "referral"):
			d.Referral = value
		case strings.Contains(key, "insurance"):
			d.InsuranceName = value
		}
	}

	if !ev.Start.IsZero() {
		d.Start = ev.Start.In(loc)
		d.StartTime = d.Start.Format(detailTimeFormat)
	}
	if !ev.End.IsZero() {
		d.End = ev.End.In(loc)
		d.EndTime = d.End.Format(detailTimeFormat)
	}
	if !ev.Start.IsZero() && !ev.End.IsZero() {
		d.DurationMinutes = int(ev.End.Sub(ev.Start).Minutes())
	}

	return d
}
