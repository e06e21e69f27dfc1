package appointment

import (
	"time"
)

// Params is a booking/reschedule request as received from the webhook
// front-end. AppointmentID optionally carries the external event id for
// exact lookup; the legacy name+phone substring match is the fallback.
type Params struct {
	PatientName     string `json:"patient_name"`
	PatientPhone    string `json:"patient_phone"`
	ServiceType     string `json:"service_type"`
	Dentist         string `json:"dentist"`
	AppointmentDate string `json:"appointment_date"`
	Referral        string `json:"referral,omitempty"`
	InsuranceName   string `json:"insurance_name,omitempty"`
	AppointmentID   string `json:"appointment_id,omitempty"`
}

// isoLayouts are the accepted appointment_date shapes. Layouts without a
// zone are interpreted in the clinic timezone; zoned inputs are converted.
var isoLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339, true},
	{"2006-01-02T15:04Z07:00", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02", false},
}

// ParseClinicTime parses an ISO-8601-ish timestamp and normalizes it to
// the clinic timezone.
func ParseClinicTime(value string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, l := range isoLayouts {
		if l.zoned {
			if t, err := time.Parse(l.layout, value); err == nil {
				return t.In(loc), nil
			} else {
				lastErr = err
			}
		} else {
			if t, err := time.ParseInLocation(l.layout, value, loc); err == nil {
				return t, nil
			} else {
				lastErr = err
			}
		}
	}
	return time.Time{}, lastErr
}

// ValidateTime parses appointment_date and requires it to be strictly in
// the future relative to now (clinic time).
func ValidateTime(appointmentDate string, loc *time.Location, now time.Time) (time.Time, error) {
	t, err := ParseClinicTime(appointmentDate, loc)
	if err != nil {
		return time.Time{}, &ValidationError{
			Kind:    KindInvalidDate,
			Message: "Invalid date format. Please use ISO 8601 format.",
		}
	}
	if !t.After(now.In(loc)) {
		return time.Time{}, &ValidationError{
			Kind:    KindPastAppointment,
			Message: "Appointment time must be in the future",
		}
	}
	return t, nil
}

// ValidateParams runs the booking checks in order with first-failure-wins
// semantics: required fields, phone shape, date parse, future date. It
// returns the parsed, timezone-normalized appointment instant on success.
func ValidateParams(p Params, loc *time.Location, now time.Time) (time.Time, error) {
	if p.PatientName == "" || p.PatientPhone == "" || p.ServiceType == "" ||
		p.Dentist == "" || p.AppointmentDate == "" {
		return time.Time{}, &ValidationError{
			Kind:    KindMissingFields,
			Message: "Missing required fields",
		}
	}
	if !isE164(p.PatientPhone) {
		return time.Time{}, &ValidationError{
			Kind:    KindInvalidPhone,
			Message: "Phone number must be in E.164 format (e.g., +12345678900)",
		}
	}
	return ValidateTime(p.AppointmentDate, loc, now)
}

// isE164 checks the basic E.164 shape: a leading '+' followed only by digits.
func isE164(phone string) bool {
	if len(phone) < 2 || phone[0] != '+' {
		return false
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
