package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkbeefcake/clinic-scheduler/internal/appointment"
	"github.com/mkbeefcake/clinic-scheduler/internal/calendar"
	"github.com/mkbeefcake/clinic-scheduler/internal/schedule"
)

var testZone = time.FixedZone("EST", -5*3600)

// Wednesday, noon.
func frozenNow() time.Time {
	return time.Date(2025, time.September, 24, 12, 0, 0, 0, testZone)
}

func newTestHandler(t *testing.T) (*AppointmentHandler, *calendar.InMemoryRepository) {
	t.Helper()

	policy := schedule.Policy{
		OpenHour: 9, CloseHour: 17,
		LunchStart: 12, LunchEnd: 13,
		SlotDurationMinutes: 60,
	}
	engine := schedule.NewEngine(policy, testZone, 3).WithClock(frozenNow)
	repo := calendar.NewInMemoryRepository()
	svc := appointment.NewService(appointment.Config{
		Repo:     repo,
		Engine:   engine,
		Location: testZone,
	}).WithClock(frozenNow)
	return NewAppointmentHandler(svc, nil), repo
}

func seedAppointment(t *testing.T, h *AppointmentHandler) {
	t.Helper()
	body := `{"patient_name":"Jane Doe","patient_phone":"+15551234567","service_type":"Cleaning","dentist":"Smith","appointment_date":"2025-10-02T09:00:00"}`
	rec := doRequest(h.Book, http.MethodPost, "/book", body)
	require.Equal(t, http.StatusOK, rec.Code)
}

func doRequest(fn http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func TestBookSuccess(t *testing.T) {
	h, repo := newTestHandler(t)

	seedAppointment(t, h)

	assert.Equal(t, 1, repo.Len())
}

func TestBookReturnsJSONContentType(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(h.Book, http.MethodPost, "/book", `{}`)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestBookValidationError(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"patient_name":"Jane Doe","patient_phone":"5551234567","service_type":"Cleaning","dentist":"Smith","appointment_date":"2025-10-02T09:00:00"}`
	rec := doRequest(h.Book, http.MethodPost, "/book", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "error: Phone number must be in E.164 format (e.g., +12345678900)", got["booking_status"])
}

func TestBookMalformedJSON(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(h.Book, http.MethodPost, "/book", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "error: invalid request body", got["booking_status"])
}

func TestCancelSuccess(t *testing.T) {
	h, repo := newTestHandler(t)
	seedAppointment(t, h)

	body := `{"patient_name":"Jane Doe","patient_phone":"+15551234567"}`
	rec := doRequest(h.Cancel, http.MethodPost, "/cancel", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "success", got["cancel_appointment_statusmessage"])
	assert.Equal(t, 0, repo.Len())
}

func TestCancelNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"patient_name":"Nobody","patient_phone":"+15550000000"}`
	rec := doRequest(h.Cancel, http.MethodPost, "/cancel", body)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "error: No active appointment found for Nobody with phone +15550000000", got["cancel_appointment_statusmessage"])
}

func TestCancelMissingFields(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(h.Cancel, http.MethodPost, "/cancel", `{"patient_name":"Jane Doe"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "error: patient name or phone number is not indicated", got["cancel_appointment_statusmessage"])
}

func TestRescheduleSuccess(t *testing.T) {
	h, repo := newTestHandler(t)
	seedAppointment(t, h)

	body := `{"patient_name":"Jane Doe","patient_phone":"+15551234567","appointment_date":"2025-10-06T14:00:00"}`
	rec := doRequest(h.Reschedule, http.MethodPost, "/reschedule", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "success", got["rescheduling_appointment_status"])

	events, err := repo.List(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 14, events[0].Start.Hour())
}

func TestRescheduleInvalidDate(t *testing.T) {
	h, _ := newTestHandler(t)
	seedAppointment(t, h)

	body := `{"patient_name":"Jane Doe","patient_phone":"+15551234567","appointment_date":"tomorrow"}`
	rec := doRequest(h.Reschedule, http.MethodPost, "/reschedule", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "error: Invalid date format. Please use ISO 8601 format.", got["rescheduling_appointment_status"])
}

func TestFindExistingTrueAndFalse(t *testing.T) {
	h, _ := newTestHandler(t)
	seedAppointment(t, h)

	rec := doRequest(h.FindExisting, http.MethodGet, "/find_existing?patient_name=Jane+Doe&patient_phone=%2B15551234567", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "True", decodeBody(t, rec)["existing_appointment_status"])

	rec = doRequest(h.FindExisting, http.MethodGet, "/find_existing?patient_name=Nobody&patient_phone=%2B15550000000", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "False", decodeBody(t, rec)["existing_appointment_status"])
}

func TestFindExistingMissingParams(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(h.FindExisting, http.MethodGet, "/find_existing?patient_name=Jane+Doe", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error: patient_name or patient_phone is not indicated", decodeBody(t, rec)["existing_appointment_status"])
}

func TestGetAvailableShape(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(h.GetAvailable, http.MethodGet, "/get_available?dentist=Smith", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		AvailableDates string              `json:"available_dates"`
		Details        map[string][]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	// Frozen at Wednesday noon: Wednesday keeps the afternoon slots,
	// Thursday and Friday carry the full grid.
	require.Len(t, got.Details, 3)
	thursday, ok := got.Details["Thursday, September 25, 2025"]
	require.True(t, ok)
	assert.Equal(t, []string{"09:00 AM", "10:00 AM", "11:00 AM", "01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM"}, thursday)
	assert.Contains(t, got.AvailableDates, "Thursday 9:00 am ~ 17:00 pm")
}

func TestGetAvailableReflectsBookings(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"patient_name":"Jane Doe","patient_phone":"+15551234567","service_type":"Cleaning","dentist":"Smith","appointment_date":"2025-09-25T09:00:00"}`
	rec := doRequest(h.Book, http.MethodPost, "/book", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(h.GetAvailable, http.MethodGet, "/get_available?dentist=Smith", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Details map[string][]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotContains(t, got.Details["Thursday, September 25, 2025"], "09:00 AM")
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(h.HealthCheck, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
