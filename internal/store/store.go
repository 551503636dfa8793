// Package store defines the persistence surface the booking assistant talks
// to: patient lookup, the doctor schedule, appointments, and reminder rows.
// Implementations must make booking atomic — the appointment insert and the
// slot availability flip succeed or fail together.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrSlotTaken indicates the slot was booked by someone else first.
var ErrSlotTaken = errors.New("store: slot no longer available")

// PatientRecord is a row in the patient registry. Identity for lookup is
// (first name, last name, date of birth).
type PatientRecord struct {
	PatientID        string `json:"patient_id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	DateOfBirth      string `json:"date_of_birth"` // YYYY-MM-DD
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
	PreferredDoctor  string `json:"preferred_doctor,omitempty"`
	InsuranceCarrier string `json:"insurance_carrier,omitempty"`
	MemberID         string `json:"member_id,omitempty"`
	GroupNumber      string `json:"group_number,omitempty"`
}

// Slot is a bookable unit of a doctor's schedule.
type Slot struct {
	DoctorName string `json:"doctor_name"`
	Specialty  string `json:"specialty"`
	Date       string `json:"date"`       // YYYY-MM-DD
	StartTime  string `json:"start_time"` // HH:MM
	EndTime    string `json:"end_time"`   // HH:MM
	Available  bool   `json:"available"`
}

// Appointment is a committed booking.
type Appointment struct {
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	DoctorName    string    `json:"doctor_name"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Duration      int       `json:"duration_minutes"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Start returns the appointment's start as a time.Time in the local zone.
func (a Appointment) Start() (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.StartTime, time.Local)
}

// ReminderKind identifies the fixed lead time of a reminder.
type ReminderKind string

const (
	ReminderH24 ReminderKind = "H24"
	ReminderH2  ReminderKind = "H2"
	ReminderH1  ReminderKind = "H1"
)

// Reminder is a pending notification tied to an appointment. Delivery is
// handled elsewhere; the core only creates these rows.
type Reminder struct {
	ReminderID    string       `json:"reminder_id"`
	AppointmentID string       `json:"appointment_id"`
	Kind          ReminderKind `json:"kind"`
	ScheduledTime time.Time    `json:"scheduled_time"`
	Status        string       `json:"status"`
}

// BookingRequest carries everything needed to commit a booking.
type BookingRequest struct {
	PatientID  string
	DoctorName string
	Date       string // YYYY-MM-DD
	StartTime  string // HH:MM
	Duration   time.Duration
	Reason     string
}

// Store is the narrow persistence interface consumed by the dialogue engine
// and its delegates.
type Store interface {
	// FindPatient looks up a patient by exact identity. dob may be empty,
	// in which case the match is on name alone. Returns ErrNotFound on miss.
	FindPatient(ctx context.Context, firstName, lastName, dob string) (*PatientRecord, error)

	// CreatePatient registers a new patient and returns the minted ID.
	CreatePatient(ctx context.Context, rec PatientRecord) (string, error)

	// AvailableSlots returns open slots ordered by date then start time.
	// doctorName and date filters are optional (empty string = no filter).
	AvailableSlots(ctx context.Context, doctorName, date string) ([]Slot, error)

	// BookAppointment creates the appointment and flips the slot to
	// unavailable in one atomic step. Returns ErrSlotTaken when another
	// booking won the slot.
	BookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error)

	// ScheduleReminder persists a pending reminder and returns its ID.
	ScheduleReminder(ctx context.Context, rem Reminder) (string, error)
}
