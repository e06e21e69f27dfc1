package appointment

import (
	"errors"
	"fmt"
)

// ValidationKind identifies which check a booking request failed.
type ValidationKind string

const (
	KindMissingFields   ValidationKind = "missing_fields"
	KindInvalidPhone    ValidationKind = "invalid_phone_format"
	KindInvalidDate     ValidationKind = "invalid_date_format"
	KindPastAppointment ValidationKind = "past_appointment"
)

// ValidationError is a malformed or incomplete request. Handlers surface
// it as HTTP 400 with the message in the operation's status key.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrNotFound signals that no future appointment matched the lookup.
var ErrNotFound = errors.New("no matching appointment found")

// ErrSlotContended signals that another request holds the booking lock
// for the same dentist and time. Only possible when the optional Redis
// lock is configured.
var ErrSlotContended = errors.New("slot is currently being booked by another request")

// ExternalError wraps a failure from an external collaborator. Only
// calendar failures become the operation's failure; sheet and SMS errors
// are swallowed after the calendar commit.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// NotFoundError carries the patient identity of a failed lookup while
// still matching errors.Is(err, ErrNotFound).
type NotFoundError struct {
	Name  string
	Phone string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No active appointment found for %s with phone %s", e.Name, e.Phone)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
