package calendar

import (
	"context"
	"time"
)

// Event is the provider-neutral view of a calendar event. Appointment
// truth lives entirely in the external calendar; this type is re-derived
// on every operation and never persisted locally.
type Event struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time

	Status    string
	Created   string
	Updated   string
	Creator   string
	Organizer string

	ConferenceLink string
	ConferenceType string
	Attachments    []Attachment
	Reminders      []Reminder
	Recurrence     []string
	ColorID        string
}

// Attachment is a file attached to an event.
type Attachment struct {
	Title   string
	FileURL string
}

// Reminder is a single reminder override on an event.
type Reminder struct {
	Method  string
	Minutes int64
}

// Repository is the calendar capability the appointment core consumes.
// List returns events in the provider's chronological order; a zero
// timeMax means unbounded.
type Repository interface {
	List(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error)
	Insert(ctx context.Context, ev Event) (*Event, error)
	Update(ctx context.Context, id string, ev Event) (*Event, error)
	Delete(ctx context.Context, id string) error
}
