// Package scheduling classifies appointment durations and commits bookings
// against the store.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/harborhealth/appointment-agent/internal/store"
	"github.com/harborhealth/appointment-agent/pkg/logging"
)

// Config carries the duration constants. They come from configuration, not
// code, so clinics can tune them.
type Config struct {
	NewPatientDuration       time.Duration
	ReturningPatientDuration time.Duration
	DefaultReason            string
}

// Service computes durations, fetches candidate slots, and books appointments.
type Service struct {
	store  store.Store
	cfg    Config
	logger *logging.Logger
}

// New builds a scheduling service over the supplied store.
func New(st store.Store, cfg Config, logger *logging.Logger) *Service {
	if st == nil {
		panic("scheduling: store required")
	}
	if cfg.NewPatientDuration <= 0 {
		cfg.NewPatientDuration = 60 * time.Minute
	}
	if cfg.ReturningPatientDuration <= 0 {
		cfg.ReturningPatientDuration = 30 * time.Minute
	}
	if cfg.DefaultReason == "" {
		cfg.DefaultReason = "Routine appointment"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: st, cfg: cfg, logger: logger}
}

// Duration returns the visit length for the patient classification.
func (s *Service) Duration(isNewPatient bool) time.Duration {
	if isNewPatient {
		return s.cfg.NewPatientDuration
	}
	return s.cfg.ReturningPatientDuration
}

// CandidateSlots fetches open slots, optionally narrowed to a preferred
// doctor, capped at limit.
func (s *Service) CandidateSlots(ctx context.Context, preferredDoctor string, limit int) ([]store.Slot, error) {
	slots, err := s.store.AvailableSlots(ctx, preferredDoctor, "")
	if err != nil {
		return nil, fmt.Errorf("scheduling: fetch slots: %w", err)
	}
	if limit > 0 && len(slots) > limit {
		slots = slots[:limit]
	}
	return slots, nil
}

// Book commits the selected slot for the patient. The store guarantees the
// appointment insert and the slot flip are one atomic step.
func (s *Service) Book(ctx context.Context, patientID string, slot store.Slot, isNewPatient bool) (*store.Appointment, error) {
	appt, err := s.store.BookAppointment(ctx, store.BookingRequest{
		PatientID:  patientID,
		DoctorName: slot.DoctorName,
		Date:       slot.Date,
		StartTime:  slot.StartTime,
		Duration:   s.Duration(isNewPatient),
		Reason:     s.cfg.DefaultReason,
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling: book slot: %w", err)
	}
	s.logger.Info("booking committed",
		"appointment_id", appt.AppointmentID,
		"patient_id", patientID,
		"new_patient", isNewPatient,
		"duration_minutes", appt.Duration,
	)
	return appt, nil
}
