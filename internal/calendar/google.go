package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleRepository implements Repository against the Google Calendar API
// using a service account.
type GoogleRepository struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
}

// NewGoogleRepository builds a calendar client from a service-account
// credentials file. calendarID is the target calendar (typically the
// clinic's Gmail address).
func NewGoogleRepository(ctx context.Context, credentialsFile, calendarID string, loc *time.Location) (*GoogleRepository, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar: create service: %w", err)
	}
	return &GoogleRepository{svc: svc, calendarID: calendarID, loc: loc}, nil
}

// List returns single events ordered by start time within the window.
func (r *GoogleRepository) List(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	call := r.svc.Events.List(r.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if !timeMax.IsZero() {
		call = call.TimeMax(timeMax.Format(time.RFC3339))
	}
	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}
	events := make([]Event, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, r.fromGoogle(item))
	}
	return events, nil
}

// Insert creates the event on the external calendar.
func (r *GoogleRepository) Insert(ctx context.Context, ev Event) (*Event, error) {
	created, err := r.svc.Events.Insert(r.calendarID, r.toGoogle(ev)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: insert event: %w", err)
	}
	out := r.fromGoogle(created)
	return &out, nil
}

// Update replaces the event with the given id.
func (r *GoogleRepository) Update(ctx context.Context, id string, ev Event) (*Event, error) {
	updated, err := r.svc.Events.Update(r.calendarID, id, r.toGoogle(ev)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: update event: %w", err)
	}
	out := r.fromGoogle(updated)
	return &out, nil
}

// Delete removes the event from the external calendar.
func (r *GoogleRepository) Delete(ctx context.Context, id string) error {
	if err := r.svc.Events.Delete(r.calendarID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar: delete event: %w", err)
	}
	return nil
}

func (r *GoogleRepository) toGoogle(ev Event) *gcal.Event {
	out := &gcal.Event{
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: r.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: r.loc.String(),
		},
		ColorId: ev.ColorID,
	}
	if len(ev.Reminders) > 0 {
		overrides := make([]*gcal.EventReminder, 0, len(ev.Reminders))
		for _, rem := range ev.Reminders {
			overrides = append(overrides, &gcal.EventReminder{
				Method:  rem.Method,
				Minutes: rem.Minutes,
			})
		}
		out.Reminders = &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		}
	}
	return out
}

func (r *GoogleRepository) fromGoogle(item *gcal.Event) Event {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Status:      item.Status,
		Created:     item.Created,
		Updated:     item.Updated,
		Recurrence:  item.Recurrence,
		ColorID:     item.ColorId,
	}
	if item.Creator != nil {
		ev.Creator = item.Creator.Email
	}
	if item.Organizer != nil {
		ev.Organizer = item.Organizer.Email
	}
	if item.Start != nil {
		ev.Start = parseEventTime(item.Start, r.loc)
	}
	if item.End != nil {
		ev.End = parseEventTime(item.End, r.loc)
	}
	if item.ConferenceData != nil {
		if len(item.ConferenceData.EntryPoints) > 0 {
			ev.ConferenceLink = item.ConferenceData.EntryPoints[0].Uri
		}
		if item.ConferenceData.ConferenceSolution != nil {
			ev.ConferenceType = item.ConferenceData.ConferenceSolution.Name
		}
	}
	for _, att := range item.Attachments {
		ev.Attachments = append(ev.Attachments, Attachment{
			Title:   att.Title,
			FileURL: att.FileUrl,
		})
	}
	if item.Reminders != nil {
		for _, rem := range item.Reminders.Overrides {
			ev.Reminders = append(ev.Reminders, Reminder{
				Method:  rem.Method,
				Minutes: rem.Minutes,
			})
		}
	}
	return ev
}

// parseEventTime handles both timed (dateTime) and all-day (date) events,
// normalized to the clinic timezone.
func parseEventTime(edt *gcal.EventDateTime, loc *time.Location) time.Time {
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t.In(loc)
		}
	}
	if edt.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", edt.Date, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
