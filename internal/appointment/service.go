package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mkbeefcake/clinic-scheduler/internal/calendar"
	"github.com/mkbeefcake/clinic-scheduler/internal/locking"
	"github.com/mkbeefcake/clinic-scheduler/internal/observability/metrics"
	"github.com/mkbeefcake/clinic-scheduler/internal/schedule"
	"github.com/mkbeefcake/clinic-scheduler/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.appointment")

const auditTimeFormat = "2006-01-02 15:04:05 MST"

// AuditLog records one append-only row per appointment transition.
type AuditLog interface {
	Append(ctx context.Context, row []string) error
}

// Notifier delivers post-commit confirmations. Implementations must be
// best-effort and never block the main response path on failure.
type Notifier interface {
	ConfirmBooking(ctx context.Context, name, phone, serviceType, dentist string, at time.Time)
	ConfirmCancellation(ctx context.Context, name, phone string)
	ConfirmReschedule(ctx context.Context, name, phone string, newTime time.Time)
}

// Config wires the service's collaborators. Repo and Engine are required;
// everything else degrades gracefully when absent.
type Config struct {
	Repo          calendar.Repository
	Engine        *schedule.Engine
	Location      *time.Location
	ClinicAddress string
	Audit         AuditLog
	Notifier      Notifier
	Locker        locking.Locker
	Metrics       *metrics.AppointmentMetrics
	Logger        *logging.Logger
}

// Service implements the appointment operations. The external calendar is
// the single source of truth: every operation re-derives the world by
// listing events, and the service keeps no state between requests.
//
// There is no double-booking protection beyond the optional, advisory
// slot lock: the availability check is read-time only and is not
// re-validated atomically at booking time.
type Service struct {
	repo          calendar.Repository
	engine        *schedule.Engine
	loc           *time.Location
	clinicAddress string
	audit         AuditLog
	notifier      Notifier
	locker        locking.Locker
	metrics       *metrics.AppointmentMetrics
	logger        *logging.Logger
	now           func() time.Time
}

// NewService constructs the appointment service.
func NewService(cfg Config) *Service {
	if cfg.Repo == nil {
		panic("appointment: calendar repository required")
	}
	if cfg.Engine == nil {
		panic("appointment: availability engine required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:          cfg.Repo,
		engine:        cfg.Engine,
		loc:           loc,
		clinicAddress: cfg.ClinicAddress,
		audit:         cfg.Audit,
		notifier:      cfg.Notifier,
		locker:        cfg.Locker,
		metrics:       cfg.Metrics,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock overrides the service's notion of "now". Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Book validates the request, inserts the calendar event, then fires the
// best-effort side effects (audit row, confirmations).
func (s *Service) Book(ctx context.Context, p Params) error {
	ctx, span := tracer.Start(ctx, "appointment.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.dentist", p.Dentist),
		attribute.String("clinic.service_type", p.ServiceType),
	)

	at, err := ValidateParams(p, s.loc, s.now())
	if err != nil {
		s.metrics.ObserveOperation("book", "validation_error")
		return err
	}

	if s.locker != nil {
		key := strings.ToLower(p.Dentist) + ":" + at.Format(time.RFC3339)
		release, ok, lockErr := s.locker.Acquire(ctx, key)
		switch {
		case lockErr != nil:
			// The lock is an advisory mitigation; an unreachable lock
			// store must not block bookings.
			s.logger.Warn("booking lock unavailable, proceeding without it", "error", lockErr)
		case !ok:
			s.metrics.ObserveOperation("book", "contended")
			return ErrSlotContended
		default:
			defer release()
		}
	}

	duration := s.engine.Policy().SlotDuration()
	event := calendar.Event{
		Summary:     p.ServiceType + " - " + p.PatientName,
		Location:    s.clinicAddress,
		Description: EncodeDescription(p),
		Start:       at,
		End:         at.Add(duration),
		Reminders: []calendar.Reminder{
			{Method: "email", Minutes: 24 * 60},
			{Method: "popup", Minutes: 60},
		},
	}

	started := time.Now()
	created, err := s.repo.Insert(ctx, event)
	s.metrics.ObserveExternal("calendar", time.Since(started).Seconds())
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOperation("book", "calendar_error")
		return &ExternalError{Op: "calendar insert", Err: err}
	}

	s.appendAudit(ctx, []string{
		"@Book", p.ServiceType, p.PatientName, p.PatientPhone,
		p.Referral, p.Dentist, p.InsuranceName,
		at.Format(time.RFC3339), "", s.auditTimestamp(),
	})
	if s.notifier != nil {
		s.notifier.ConfirmBooking(ctx, p.PatientName, p.PatientPhone, p.ServiceType, p.Dentist, at)
	}

	s.metrics.ObserveOperation("book", "success")
	s.logger.Info("appointment booked",
		"event_id", created.ID,
		"dentist", p.Dentist,
		"start", at.Format(time.RFC3339),
	)
	return nil
}

// Cancel removes the patient's next matching appointment from the
// calendar. The whole event is deleted; there is no soft-delete.
func (s *Service) Cancel(ctx context.Context, name, phone, appointmentID string) (*Details, error) {
	ctx, span := tracer.Start(ctx, "appointment.cancel")
	defer span.End()

	if name == "" || phone == "" {
		s.metrics.ObserveOperation("cancel", "validation_error")
		return nil, &ValidationError{
			Kind:    KindMissingFields,
			Message: "patient name or phone number is not indicated",
		}
	}

	match, err := s.findMatch(ctx, name, phone, appointmentID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOperation("cancel", statusForError(err))
		return nil, err
	}
	detail := DecodeDetails(*match, s.loc)

	started := time.Now()
	err = s.repo.Delete(ctx, match.ID)
	s.metrics.ObserveExternal("calendar", time.Since(started).Seconds())
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOperation("cancel", "calendar_error")
		return nil, &ExternalError{Op: "calendar delete", Err: err}
	}

	s.appendAudit(ctx, []string{
		"@Cancel", detail.ServiceType, name, phone,
		"", "", "", "", detail.StartTime, s.auditTimestamp(),
	})
	if s.notifier != nil {
		s.notifier.ConfirmCancellation(ctx, name, phone)
	}

	s.metrics.ObserveOperation("cancel", "success")
	s.logger.Info("appointment cancelled", "event_id", match.ID, "patient", name)
	return &detail, nil
}

// Reschedule moves the patient's next matching appointment to a new time,
// keeping the original duration and description.
func (s *Service) Reschedule(ctx context.Context, name, phone, appointmentDate, appointmentID string) (*Details, error) {
	ctx, span := tracer.Start(ctx, "appointment.reschedule")
	defer span.End()

	if name == "" || phone == "" || appointmentDate == "" {
		s.metrics.ObserveOperation("reschedule", "validation_error")
		return nil, &ValidationError{
			Kind:    KindMissingFields,
			Message: "patient name or phone number or appointment_date is not indicated",
		}
	}
	newAt, err := ValidateTime(appointmentDate, s.loc, s.now())
	if err != nil {
		s.metrics.ObserveOperation("reschedule", "validation_error")
		return nil, err
	}

	match, err := s.findMatch(ctx, name, phone, appointmentID)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOperation("reschedule", statusForError(err))
		return nil, err
	}
	previous := DecodeDetails(*match, s.loc)

	duration := match.End.Sub(match.Start)
	if duration <= 0 {
		duration = s.engine.Policy().SlotDuration()
	}
	updated := *match
	updated.Start = newAt
	updated.End = newAt.Add(duration)

	started := time.Now()
	result, err := s.repo.Update(ctx, match.ID, updated)
	s.metrics.ObserveExternal("calendar", time.Since(started).Seconds())
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOperation("reschedule", "calendar_error")
		return nil, &ExternalError{Op: "calendar update", Err: err}
	}

	s.appendAudit(ctx, []string{
		"@Reschedule", previous.ServiceType, name, phone,
		"", "", "", newAt.Format(time.RFC3339), previous.StartTime, s.auditTimestamp(),
	})
	if s.notifier != nil {
		s.notifier.ConfirmReschedule(ctx, name, phone, newAt)
	}

	s.metrics.ObserveOperation("reschedule", "success")
	s.logger.Info("appointment rescheduled",
		"event_id", match.ID,
		"new_start", newAt.Format(time.RFC3339),
	)
	detail := DecodeDetails(*result, s.loc)
	return &detail, nil
}

// FindExisting reports whether the patient has any future appointment.
func (s *Service) FindExisting(ctx context.Context, name, phone string) (bool, error) {
	ctx, span := tracer.Start(ctx, "appointment.find_existing")
	defer span.End()

	if name == "" || phone == "" {
		s.metrics.ObserveOperation("find_existing", "validation_error")
		return false, &ValidationError{
			Kind:    KindMissingFields,
			Message: "patient_name or patient_phone is not indicated",
		}
	}

	_, err := s.findMatch(ctx, name, phone, "")
	if err != nil {
		if isNotFound(err) {
			s.metrics.ObserveOperation("find_existing", "success")
			return false, nil
		}
		span.RecordError(err)
		s.metrics.ObserveOperation("find_existing", "calendar_error")
		return false, err
	}
	s.metrics.ObserveOperation("find_existing", "success")
	return true, nil
}

// Availability computes the free slots for a dentist over the engine's
// window, plus the condensed human-readable summary.
func (s *Service) Availability(ctx context.Context, dentist string) (schedule.Availability, string, error) {
	ctx, span := tracer.Start(ctx, "appointment.availability")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.dentist", dentist))

	timeMin, timeMax := s.engine.Window()

	started := time.Now()
	events, err := s.repo.List(ctx, timeMin, timeMax)
	s.metrics.ObserveExternal("calendar", time.Since(started).Seconds())
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOperation("get_available", "calendar_error")
		return schedule.Availability{}, "", &ExternalError{Op: "calendar list", Err: err}
	}

	busy := schedule.BusyIntervals(events, dentist)
	avail := s.engine.Available(busy)
	summary := schedule.FormatSummary(avail, s.engine.Policy())

	s.metrics.ObserveOperation("get_available", "success")
	return avail, summary, nil
}

// findMatch selects the patient's next appointment. When an event id is
// supplied it is matched exactly; otherwise the legacy rule applies: the
// first future event (provider order) whose lowercased description
// contains both the lowercased patient name and the phone substring. The
// fallback is collision-prone by design and kept for compatibility.
func (s *Service) findMatch(ctx context.Context, name, phone, eventID string) (*calendar.Event, error) {
	started := time.Now()
	events, err := s.repo.List(ctx, s.now().UTC(), time.Time{})
	s.metrics.ObserveExternal("calendar", time.Since(started).Seconds())
	if err != nil {
		return nil, &ExternalError{Op: "calendar list", Err: err}
	}

	if eventID != "" {
		for i := range events {
			if events[i].ID == eventID {
				return &events[i], nil
			}
		}
		return nil, &NotFoundError{Name: name, Phone: phone}
	}

	loweredName := strings.ToLower(name)
	for i := range events {
		description := strings.ToLower(events[i].Description)
		if strings.Contains(description, loweredName) && strings.Contains(description, phone) {
			return &events[i], nil
		}
	}
	return nil, &NotFoundError{Name: name, Phone: phone}
}

// appendAudit writes the spreadsheet row, swallowing failures: the audit
// trail is best-effort and must never fail a committed operation.
func (s *Service) appendAudit(ctx context.Context, row []string) {
	if s.audit == nil {
		return
	}
	started := time.Now()
	err := s.audit.Append(ctx, row)
	s.metrics.ObserveExternal("sheets", time.Since(started).Seconds())
	if err != nil {
		s.logger.Error("failed to append audit row", "tag", row[0], "error", err)
	}
}

func (s *Service) auditTimestamp() string {
	return s.now().In(s.loc).Format(auditTimeFormat)
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func statusForError(err error) string {
	if isNotFound(err) {
		return "not_found"
	}
	return "calendar_error"
}
