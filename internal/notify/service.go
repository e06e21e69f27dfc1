package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mkbeefcake/clinic-scheduler/pkg/logging"
)

// smsTimeFormat renders appointment instants like "September 25, 2025 at 09:00 AM".
const smsTimeFormat = "January 02, 2006 at 03:04 PM"

// SMSSender sends SMS messages to patients.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Service sends patient confirmations and operator notifications after an
// appointment transition has been committed to the calendar. Every method
// is best-effort: failures are logged and never propagate into the main
// response path.
type Service struct {
	sms           SMSSender
	email         EmailSender
	operatorEmail string
	clinicName    string
	logger        *logging.Logger
}

// NewService creates a notification service. Both senders are optional;
// a nil sender disables that channel.
func NewService(sms SMSSender, email EmailSender, operatorEmail, clinicName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		sms:           sms,
		email:         email,
		operatorEmail: operatorEmail,
		clinicName:    clinicName,
		logger:        logger,
	}
}

// ConfirmBooking messages the patient after a successful booking.
func (s *Service) ConfirmBooking(ctx context.Context, name, phone, serviceType, dentist string, at time.Time) {
	body := fmt.Sprintf(
		"Hello %s, Your %s appointment has been scheduled for %s with Dr. %s. "+
			"Please arrive 10 minutes early. If you need to reschedule, please contact our office.",
		name, serviceType, at.Format(smsTimeFormat), dentist,
	)
	s.sendSMS(ctx, phone, body)
	s.sendOperatorEmail(ctx,
		fmt.Sprintf("New booking: %s", name),
		fmt.Sprintf("%s booked a %s appointment with Dr. %s for %s.\nPhone: %s",
			name, serviceType, dentist, at.Format(smsTimeFormat), phone),
	)
}

// ConfirmCancellation messages the patient after a cancellation.
func (s *Service) ConfirmCancellation(ctx context.Context, name, phone string) {
	body := fmt.Sprintf(
		"Hello %s, Your appointment has been cancelled successfully. "+
			"Thank you for letting us know. For any questions, please contact our office.",
		name,
	)
	s.sendSMS(ctx, phone, body)
	s.sendOperatorEmail(ctx,
		fmt.Sprintf("Cancellation: %s", name),
		fmt.Sprintf("%s (phone %s) cancelled their appointment.", name, phone),
	)
}

// ConfirmReschedule messages the patient after a reschedule.
func (s *Service) ConfirmReschedule(ctx context.Context, name, phone string, newTime time.Time) {
	body := fmt.Sprintf(
		"Hello %s, Your appointment has been rescheduled to %s Toronto time. "+
			"If you need to make any changes, please contact our office.",
		name, newTime.Format(smsTimeFormat),
	)
	s.sendSMS(ctx, phone, body)
	s.sendOperatorEmail(ctx,
		fmt.Sprintf("Reschedule: %s", name),
		fmt.Sprintf("%s (phone %s) moved their appointment to %s.",
			name, phone, newTime.Format(smsTimeFormat)),
	)
}

func (s *Service) sendSMS(ctx context.Context, phone, body string) {
	if s.sms == nil {
		s.logger.Debug("sms sender not configured, skipping confirmation", "to", phone)
		return
	}
	if err := s.sms.SendSMS(ctx, phone, body); err != nil {
		s.logger.Error("failed to send confirmation sms", "to", phone, "error", err)
	}
}

func (s *Service) sendOperatorEmail(ctx context.Context, subject, body string) {
	if s.email == nil || s.operatorEmail == "" {
		return
	}
	err := s.email.Send(ctx, EmailMessage{
		To:      s.operatorEmail,
		ToName:  s.clinicName,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		s.logger.Error("failed to send operator email", "subject", subject, "error", err)
	}
}
