package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkbeefcake/clinic-scheduler/internal/calendar"
	"github.com/mkbeefcake/clinic-scheduler/internal/observability/metrics"
	"github.com/mkbeefcake/clinic-scheduler/internal/schedule"
)

type recordingAudit struct {
	rows [][]string
}

func (a *recordingAudit) Append(_ context.Context, row []string) error {
	a.rows = append(a.rows, row)
	return nil
}

type recordingNotifier struct {
	bookings      int
	cancellations int
	reschedules   int
	lastTime      time.Time
}

func (n *recordingNotifier) ConfirmBooking(_ context.Context, _, _, _, _ string, at time.Time) {
	n.bookings++
	n.lastTime = at
}

func (n *recordingNotifier) ConfirmCancellation(_ context.Context, _, _ string) {
	n.cancellations++
}

func (n *recordingNotifier) ConfirmReschedule(_ context.Context, _, _ string, newTime time.Time) {
	n.reschedules++
	n.lastTime = newTime
}

type stubLocker struct {
	held     bool
	err      error
	acquired []string
	released int
}

func (l *stubLocker) Acquire(_ context.Context, key string) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	l.acquired = append(l.acquired, key)
	return func() { l.released++ }, true, nil
}

type testHarness struct {
	svc      *Service
	repo     *calendar.InMemoryRepository
	audit    *recordingAudit
	notifier *recordingNotifier
	locker   *stubLocker
}

func newHarness(t *testing.T, configure func(*Config)) *testHarness {
	t.Helper()

	policy := schedule.Policy{
		OpenHour: 9, CloseHour: 17,
		LunchStart: 12, LunchEnd: 13,
		SlotDurationMinutes: 60,
	}
	engine := schedule.NewEngine(policy, clinicZone, 3).WithClock(testNow)

	h := &testHarness{
		repo:     calendar.NewInMemoryRepository(),
		audit:    &recordingAudit{},
		notifier: &recordingNotifier{},
		locker:   &stubLocker{},
	}
	cfg := Config{
		Repo:          h.repo,
		Engine:        engine,
		Location:      clinicZone,
		ClinicAddress: "123 Main St",
		Audit:         h.audit,
		Notifier:      h.notifier,
		Locker:        h.locker,
		Metrics:       metrics.NewAppointmentMetrics(prometheus.NewRegistry()),
	}
	if configure != nil {
		configure(&cfg)
	}
	h.svc = NewService(cfg).WithClock(testNow)
	return h
}

func mustBook(t *testing.T, h *testHarness, p Params) calendar.Event {
	t.Helper()
	require.NoError(t, h.svc.Book(context.Background(), p))
	events, err := h.repo.List(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	return events[len(events)-1]
}

func TestBookCreatesCalendarEvent(t *testing.T) {
	h := newHarness(t, nil)

	ev := mustBook(t, h, validParams())

	assert.Equal(t, "Cleaning - Jane Doe", ev.Summary)
	assert.Equal(t, "123 Main St", ev.Location)
	assert.Contains(t, ev.Description, "Patient: Jane Doe")
	assert.Contains(t, ev.Description, "Phone: +15551234567")
	assert.Contains(t, ev.Description, "Dentist: Smith")

	wantStart := time.Date(2025, time.October, 2, 9, 0, 0, 0, clinicZone)
	assert.True(t, ev.Start.Equal(wantStart))
	assert.True(t, ev.End.Equal(wantStart.Add(time.Hour)))

	require.Len(t, ev.Reminders, 2)
	assert.Equal(t, calendar.Reminder{Method: "email", Minutes: 1440}, ev.Reminders[0])
	assert.Equal(t, calendar.Reminder{Method: "popup", Minutes: 60}, ev.Reminders[1])
}

func TestBookAppendsAuditRowAndNotifies(t *testing.T) {
	h := newHarness(t, nil)

	mustBook(t, h, validParams())

	require.Len(t, h.audit.rows, 1)
	row := h.audit.rows[0]
	assert.Equal(t, "@Book", row[0])
	assert.Equal(t, "Cleaning", row[1])
	assert.Equal(t, "Jane Doe", row[2])
	assert.Equal(t, "+15551234567", row[3])

	assert.Equal(t, 1, h.notifier.bookings)
}

func TestBookValidationErrorSkipsSideEffects(t *testing.T) {
	h := newHarness(t, nil)

	p := validParams()
	p.PatientPhone = "bad"
	err := h.svc.Book(context.Background(), p)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, h.repo.Len())
	assert.Empty(t, h.audit.rows)
	assert.Equal(t, 0, h.notifier.bookings)
}

func TestBookContendedSlot(t *testing.T) {
	h := newHarness(t, nil)
	h.locker.held = true

	err := h.svc.Book(context.Background(), validParams())

	assert.ErrorIs(t, err, ErrSlotContended)
	assert.Equal(t, 0, h.repo.Len())
}

func TestBookLockKeyAndRelease(t *testing.T) {
	h := newHarness(t, nil)

	mustBook(t, h, validParams())

	require.Len(t, h.locker.acquired, 1)
	assert.Equal(t, "smith:2025-10-02T09:00:00-05:00", h.locker.acquired[0])
	assert.Equal(t, 1, h.locker.released)
}

func TestBookProceedsWhenLockStoreUnavailable(t *testing.T) {
	h := newHarness(t, nil)
	h.locker.err = errors.New("connection refused")

	require.NoError(t, h.svc.Book(context.Background(), validParams()))
	assert.Equal(t, 1, h.repo.Len())
}

func TestCancelDeletesMatchingEvent(t *testing.T) {
	h := newHarness(t, nil)
	mustBook(t, h, validParams())

	detail, err := h.svc.Cancel(context.Background(), "Jane Doe", "+15551234567", "")

	require.NoError(t, err)
	assert.Equal(t, 0, h.repo.Len())
	assert.Equal(t, "Jane Doe", detail.PatientName)
	assert.Equal(t, "Cleaning", detail.ServiceType)
	assert.Equal(t, 1, h.notifier.cancellations)

	require.Len(t, h.audit.rows, 2)
	assert.Equal(t, "@Cancel", h.audit.rows[1][0])
}

func TestCancelMatchesCaseInsensitively(t *testing.T) {
	h := newHarness(t, nil)
	mustBook(t, h, validParams())

	_, err := h.svc.Cancel(context.Background(), "JANE DOE", "+15551234567", "")

	require.NoError(t, err)
	assert.Equal(t, 0, h.repo.Len())
}

func TestCancelNotFound(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.Cancel(context.Background(), "Nobody", "+15550000000", "")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "No active appointment found for Nobody with phone +15550000000")
}

func TestCancelMissingFields(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.Cancel(context.Background(), "Jane Doe", "", "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "patient name or phone number is not indicated", verr.Message)
}

func TestCancelByEventID(t *testing.T) {
	h := newHarness(t, nil)
	first := mustBook(t, h, validParams())

	other := validParams()
	other.PatientName = "Jane Doe"
	other.AppointmentDate = "2025-10-03T10:00:00"
	mustBook(t, h, other)

	_, err := h.svc.Cancel(context.Background(), "Jane Doe", "+15551234567", first.ID)

	require.NoError(t, err)
	events, listErr := h.repo.List(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, listErr)
	require.Len(t, events, 1)
	assert.NotEqual(t, first.ID, events[0].ID)
}

func TestRescheduleMovesEventKeepingDescription(t *testing.T) {
	h := newHarness(t, nil)
	original := mustBook(t, h, validParams())

	detail, err := h.svc.Reschedule(context.Background(), "Jane Doe", "+15551234567", "2025-10-06T14:00:00", "")

	require.NoError(t, err)
	wantStart := time.Date(2025, time.October, 6, 14, 0, 0, 0, clinicZone)
	assert.True(t, detail.Start.Equal(wantStart))
	assert.Equal(t, 60, detail.DurationMinutes)
	assert.Equal(t, "Jane Doe", detail.PatientName)

	events, listErr := h.repo.List(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, listErr)
	require.Len(t, events, 1)
	assert.Equal(t, original.Description, events[0].Description)
	assert.True(t, events[0].Start.Equal(wantStart))

	assert.Equal(t, 1, h.notifier.reschedules)
	require.Len(t, h.audit.rows, 2)
	assert.Equal(t, "@Reschedule", h.audit.rows[1][0])
}

func TestReschedulePreservesNonStandardDuration(t *testing.T) {
	h := newHarness(t, nil)

	start := time.Date(2025, time.October, 2, 9, 0, 0, 0, clinicZone)
	_, err := h.repo.Insert(context.Background(), calendar.Event{
		Description: EncodeDescription(validParams()),
		Start:       start,
		End:         start.Add(90 * time.Minute),
	})
	require.NoError(t, err)

	detail, err := h.svc.Reschedule(context.Background(), "Jane Doe", "+15551234567", "2025-10-06T14:00:00", "")

	require.NoError(t, err)
	assert.Equal(t, 90, detail.DurationMinutes)
}

func TestRescheduleRejectsPastDate(t *testing.T) {
	h := newHarness(t, nil)
	mustBook(t, h, validParams())

	_, err := h.svc.Reschedule(context.Background(), "Jane Doe", "+15551234567", "2025-09-01T10:00:00", "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindPastAppointment, verr.Kind)
}

func TestRescheduleMissingFields(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.Reschedule(context.Background(), "Jane Doe", "+15551234567", "", "")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "patient name or phone number or appointment_date is not indicated", verr.Message)
}

func TestFindExisting(t *testing.T) {
	h := newHarness(t, nil)
	mustBook(t, h, validParams())

	found, err := h.svc.FindExisting(context.Background(), "Jane Doe", "+15551234567")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = h.svc.FindExisting(context.Background(), "Nobody", "+15550000000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindExistingMissingFields(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.FindExisting(context.Background(), "", "+15551234567")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "patient_name or patient_phone is not indicated", verr.Message)
}

func TestAvailabilityExcludesBookedSlots(t *testing.T) {
	h := newHarness(t, nil)

	// Thursday 9:00 is taken by Dr. Smith; Dr. Lee's calendar is clear.
	p := validParams()
	p.AppointmentDate = "2025-09-25T09:00:00"
	mustBook(t, h, p)

	avail, _, err := h.svc.Availability(context.Background(), "Smith")
	require.NoError(t, err)
	require.NotEmpty(t, avail.Days)
	thursday := avail.Days[1]
	require.Equal(t, time.Thursday, thursday.Date.Weekday())
	for _, slot := range thursday.Slots {
		assert.NotEqual(t, 9, slot.Hour())
	}

	availLee, _, err := h.svc.Availability(context.Background(), "Lee")
	require.NoError(t, err)
	assert.Len(t, availLee.Days[1].Slots, 7)
}

func TestAvailabilitySummaryWhenFree(t *testing.T) {
	h := newHarness(t, nil)

	avail, summary, err := h.svc.Availability(context.Background(), "Smith")

	require.NoError(t, err)
	assert.Len(t, avail.Days, 3)
	assert.Contains(t, summary, "Wednesday")
	assert.Contains(t, summary, "~")
}

func TestServiceDegradesWithoutOptionalCollaborators(t *testing.T) {
	h := newHarness(t, func(cfg *Config) {
		cfg.Audit = nil
		cfg.Notifier = nil
		cfg.Locker = nil
		cfg.Metrics = nil
	})

	require.NoError(t, h.svc.Book(context.Background(), validParams()))
	assert.Equal(t, 1, h.repo.Len())
}
