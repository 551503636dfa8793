package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by the terminal client, the seeder,
// and tests. Safe for concurrent use; the slot flip and appointment insert
// happen under one lock so bookings stay atomic.
type MemoryStore struct {
	mu           sync.Mutex
	patients     map[string]PatientRecord // keyed by patient ID
	slots        []Slot
	appointments map[string]Appointment
	reminders    map[string]Reminder
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients:     make(map[string]PatientRecord),
		appointments: make(map[string]Appointment),
		reminders:    make(map[string]Reminder),
	}
}

// AddPatient inserts a patient row as-is. Intended for seeding and tests.
func (s *MemoryStore) AddPatient(rec PatientRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[rec.PatientID] = rec
}

// AddSlot appends a schedule slot. Intended for seeding and tests.
func (s *MemoryStore) AddSlot(slot Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = append(s.slots, slot)
}

// FindPatient matches on first/last name (case-insensitive) and, when given,
// date of birth.
func (s *MemoryStore) FindPatient(ctx context.Context, firstName, lastName, dob string) (*PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.patients {
		if !strings.EqualFold(rec.FirstName, firstName) || !strings.EqualFold(rec.LastName, lastName) {
			continue
		}
		if dob != "" && rec.DateOfBirth != dob {
			continue
		}
		found := rec
		return &found, nil
	}
	return nil, ErrNotFound
}

// CreatePatient mints an ID and stores the record.
func (s *MemoryStore) CreatePatient(ctx context.Context, rec PatientRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.PatientID == "" {
		rec.PatientID = "PAT-" + uuid.NewString()
	}
	s.patients[rec.PatientID] = rec
	return rec.PatientID, nil
}

// AvailableSlots returns open slots ordered by date then start time.
func (s *MemoryStore) AvailableSlots(ctx context.Context, doctorName, date string) ([]Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Slot
	for _, slot := range s.slots {
		if !slot.Available {
			continue
		}
		if doctorName != "" && !strings.EqualFold(slot.DoctorName, doctorName) {
			continue
		}
		if date != "" && slot.Date != date {
			continue
		}
		out = append(out, slot)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// BookAppointment flips the matching slot and inserts the appointment under
// one lock. Exactly one caller can win a given (doctor, date, start) triple.
func (s *MemoryStore) BookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, slot := range s.slots {
		if slot.Available &&
			strings.EqualFold(slot.DoctorName, req.DoctorName) &&
			slot.Date == req.Date &&
			slot.StartTime == req.StartTime {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrSlotTaken
	}

	endTime, err := addMinutes(req.Date, req.StartTime, int(req.Duration.Minutes()))
	if err != nil {
		return nil, fmt.Errorf("store: compute end time: %w", err)
	}

	appt := Appointment{
		AppointmentID: "APT-" + uuid.NewString(),
		PatientID:     req.PatientID,
		DoctorName:    s.slots[idx].DoctorName,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       endTime,
		Duration:      int(req.Duration.Minutes()),
		Status:        "scheduled",
		Reason:        req.Reason,
		CreatedAt:     time.Now().UTC(),
	}

	s.slots[idx].Available = false
	s.appointments[appt.AppointmentID] = appt

	out := appt
	return &out, nil
}

// ScheduleReminder stores a pending reminder row.
func (s *MemoryStore) ScheduleReminder(ctx context.Context, rem Reminder) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rem.ReminderID == "" {
		rem.ReminderID = "REM-" + uuid.NewString()
	}
	if rem.Status == "" {
		rem.Status = "pending"
	}
	s.reminders[rem.ReminderID] = rem
	return rem.ReminderID, nil
}

// Appointment returns a booked appointment by ID. Used by tests and the
// terminal client's summary output.
func (s *MemoryStore) Appointment(id string) (*Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appointments[id]
	if !ok {
		return nil, false
	}
	return &appt, true
}

// Reminders returns all reminders recorded for the appointment.
func (s *MemoryStore) Reminders(appointmentID string) []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Reminder
	for _, rem := range s.reminders {
		if rem.AppointmentID == appointmentID {
			out = append(out, rem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	return out
}

func addMinutes(date, start string, minutes int) (string, error) {
	t, err := time.Parse("2006-01-02 15:04", date+" "+start)
	if err != nil {
		return "", err
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04"), nil
}
