package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkbeefcake/clinic-scheduler/internal/appointment"
	"github.com/mkbeefcake/clinic-scheduler/pkg/logging"
)

// AppointmentHandler exposes the five webhook endpoints the voice/SMS
// front-end calls. Response body keys mirror the legacy contract; status
// codes follow the standardized table (400 validation, 404 not found,
// 409 contended slot, 500 external failure).
type AppointmentHandler struct {
	svc    *appointment.Service
	logger *logging.Logger
}

// NewAppointmentHandler creates the webhook handler.
func NewAppointmentHandler(svc *appointment.Service, logger *logging.Logger) *AppointmentHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentHandler{svc: svc, logger: logger}
}

type cancelRequest struct {
	PatientName   string `json:"patient_name"`
	PatientPhone  string `json:"patient_phone"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

type rescheduleRequest struct {
	PatientName     string `json:"patient_name"`
	PatientPhone    string `json:"patient_phone"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentID   string `json:"appointment_id,omitempty"`
}

// Book handles POST /book.
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req appointment.Params
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode book request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"booking_status": "error: invalid request body",
		})
		return
	}

	if err := h.svc.Book(r.Context(), req); err != nil {
		h.logger.Error("booking failed", "patient", req.PatientName, "error", err)
		writeJSON(w, statusForError(err), map[string]string{
			"booking_status": "error: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"booking_status": "success"})
}

// Cancel handles POST /cancel.
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode cancel request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"cancel_appointment_statusmessage": "error: invalid request body",
		})
		return
	}

	if _, err := h.svc.Cancel(r.Context(), req.PatientName, req.PatientPhone, req.AppointmentID); err != nil {
		h.logger.Error("cancellation failed", "patient", req.PatientName, "error", err)
		writeJSON(w, statusForError(err), map[string]string{
			"cancel_appointment_statusmessage": "error: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"cancel_appointment_statusmessage": "success"})
}

// Reschedule handles POST /reschedule.
func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode reschedule request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"rescheduling_appointment_status": "error: invalid request body",
		})
		return
	}

	_, err := h.svc.Reschedule(r.Context(), req.PatientName, req.PatientPhone, req.AppointmentDate, req.AppointmentID)
	if err != nil {
		h.logger.Error("reschedule failed", "patient", req.PatientName, "error", err)
		writeJSON(w, statusForError(err), map[string]string{
			"rescheduling_appointment_status": "error: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rescheduling_appointment_status": "success"})
}

// FindExisting handles GET /find_existing.
func (h *AppointmentHandler) FindExisting(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("patient_name")
	phone := r.URL.Query().Get("patient_phone")

	exists, err := h.svc.FindExisting(r.Context(), name, phone)
	if err != nil {
		h.logger.Error("find existing failed", "patient", name, "error", err)
		writeJSON(w, statusForError(err), map[string]string{
			"existing_appointment_status": "error: " + err.Error(),
		})
		return
	}
	status := "False"
	if exists {
		status = "True"
	}
	writeJSON(w, http.StatusOK, map[string]string{"existing_appointment_status": status})
}

// GetAvailable handles GET /get_available.
func (h *AppointmentHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	dentist := r.URL.Query().Get("dentist")

	avail, summary, err := h.svc.Availability(r.Context(), dentist)
	if err != nil {
		h.logger.Error("availability lookup failed", "dentist", dentist, "error", err)
		writeJSON(w, statusForError(err), map[string]string{
			"status":  "error",
			"message": "Error accessing calendar: " + err.Error(),
		})
		return
	}

	details := make(map[string][]string, len(avail.Days))
	for _, day := range avail.Days {
		times := make([]string, 0, len(day.Slots))
		for _, slot := range day.Slots {
			times = append(times, slot.Format("03:04 PM"))
		}
		details[day.Label] = times
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"available_dates": summary,
		"details":         details,
	})
}

// HealthCheck handles GET /health.
func (h *AppointmentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusForError(err error) int {
	var validation *appointment.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, appointment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, appointment.ErrSlotContended):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
