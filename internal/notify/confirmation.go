package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/harborhealth/appointment-agent/internal/store"
	"github.com/harborhealth/appointment-agent/pkg/logging"
)

// ConfirmationMailer sends the post-booking confirmation email with the
// intake-forms note. Conversations without an email address on file are
// skipped, not failed; the in-conversation confirmation already covered them.
type ConfirmationMailer struct {
	sender EmailSender
	logger *logging.Logger
}

// NewConfirmationMailer wires the mailer over any EmailSender.
func NewConfirmationMailer(sender EmailSender, logger *logging.Logger) *ConfirmationMailer {
	if sender == nil {
		panic("notify: email sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ConfirmationMailer{sender: sender, logger: logger}
}

// SendBookingConfirmation emails the appointment summary to the patient.
func (m *ConfirmationMailer) SendBookingConfirmation(ctx context.Context, patientName, patientEmail string, appt *store.Appointment) error {
	if appt == nil {
		return fmt.Errorf("notify: appointment required")
	}
	if patientEmail == "" {
		m.logger.Info("no email on file, skipping confirmation email", "appointment_id", appt.AppointmentID)
		return nil
	}

	msg := EmailMessage{
		To:      patientEmail,
		ToName:  patientName,
		Subject: fmt.Sprintf("Appointment confirmed for %s at %s", appt.Date, appt.StartTime),
		Body:    confirmationBody(patientName, appt),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: confirmation email: %w", err)
	}
	return nil
}

func confirmationBody(patientName string, appt *store.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", patientName)
	b.WriteString("Your appointment is confirmed.\n\n")
	fmt.Fprintf(&b, "Doctor: %s\n", appt.DoctorName)
	fmt.Fprintf(&b, "Date: %s\n", appt.Date)
	fmt.Fprintf(&b, "Time: %s - %s\n", appt.StartTime, appt.EndTime)
	fmt.Fprintf(&b, "Duration: %d minutes\n", appt.Duration)
	fmt.Fprintf(&b, "Appointment ID: %s\n\n", appt.AppointmentID)
	b.WriteString("Please complete the attached intake forms before your visit. ")
	b.WriteString("You'll receive reminders 24 hours, 2 hours, and 1 hour before your appointment.\n")
	return b.String()
}
