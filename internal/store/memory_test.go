package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func seededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.AddPatient(PatientRecord{
		PatientID:   "PAT-100",
		FirstName:   "Alice",
		LastName:    "Johnson",
		DateOfBirth: "1990-03-15",
		Phone:       "555-123-4567",
	})
	s.AddSlot(Slot{DoctorName: "Dr. Chen", Specialty: "Family Medicine", Date: "2024-01-15", StartTime: "10:00", EndTime: "11:00", Available: true})
	s.AddSlot(Slot{DoctorName: "Dr. Chen", Specialty: "Family Medicine", Date: "2024-01-15", StartTime: "09:00", EndTime: "10:00", Available: true})
	s.AddSlot(Slot{DoctorName: "Dr. Patel", Specialty: "Cardiology", Date: "2024-01-14", StartTime: "14:00", EndTime: "15:00", Available: true})
	s.AddSlot(Slot{DoctorName: "Dr. Patel", Specialty: "Cardiology", Date: "2024-01-14", StartTime: "15:00", EndTime: "16:00", Available: false})
	return s
}

func TestFindPatientCaseInsensitive(t *testing.T) {
	s := seededMemoryStore()

	rec, err := s.FindPatient(context.Background(), "alice", "JOHNSON", "1990-03-15")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec.PatientID != "PAT-100" {
		t.Fatalf("unexpected patient: %+v", rec)
	}

	if _, err := s.FindPatient(context.Background(), "Alice", "Johnson", "1991-01-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on DOB mismatch, got %v", err)
	}
}

func TestAvailableSlotsOrdering(t *testing.T) {
	s := seededMemoryStore()

	slots, err := s.AvailableSlots(context.Background(), "", "")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 open slots, got %d", len(slots))
	}
	// Ordered by date then start time; the unavailable 15:00 slot is excluded.
	if slots[0].Date != "2024-01-14" || slots[1].StartTime != "09:00" || slots[2].StartTime != "10:00" {
		t.Fatalf("unexpected ordering: %+v", slots)
	}

	filtered, err := s.AvailableSlots(context.Background(), "Dr. Patel", "")
	if err != nil {
		t.Fatalf("filtered slots: %v", err)
	}
	if len(filtered) != 1 || filtered[0].DoctorName != "Dr. Patel" {
		t.Fatalf("unexpected doctor filter result: %+v", filtered)
	}
}

func TestBookAppointmentFlipsSlot(t *testing.T) {
	s := seededMemoryStore()

	appt, err := s.BookAppointment(context.Background(), BookingRequest{
		PatientID:  "PAT-100",
		DoctorName: "Dr. Chen",
		Date:       "2024-01-15",
		StartTime:  "10:00",
		Duration:   30 * time.Minute,
		Reason:     "Routine appointment",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if appt.EndTime != "10:30" {
		t.Fatalf("expected end 10:30, got %s", appt.EndTime)
	}

	slots, _ := s.AvailableSlots(context.Background(), "Dr. Chen", "2024-01-15")
	for _, slot := range slots {
		if slot.StartTime == "10:00" {
			t.Fatal("booked slot still listed as available")
		}
	}

	// Same slot again: the flag already flipped, so the second booking loses.
	if _, err := s.BookAppointment(context.Background(), BookingRequest{
		PatientID:  "PAT-100",
		DoctorName: "Dr. Chen",
		Date:       "2024-01-15",
		StartTime:  "10:00",
		Duration:   30 * time.Minute,
	}); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestConcurrentBookingExactlyOneWins(t *testing.T) {
	s := seededMemoryStore()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.BookAppointment(context.Background(), BookingRequest{
				PatientID:  "PAT-100",
				DoctorName: "Dr. Patel",
				Date:       "2024-01-14",
				StartTime:  "14:00",
				Duration:   30 * time.Minute,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrSlotTaken) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning booking, got %d", wins)
	}
}

func TestScheduleReminderDefaultsPending(t *testing.T) {
	s := seededMemoryStore()

	id, err := s.ScheduleReminder(context.Background(), Reminder{
		AppointmentID: "APT-1",
		Kind:          ReminderH2,
		ScheduledTime: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	rems := s.Reminders("APT-1")
	if len(rems) != 1 || rems[0].ReminderID != id || rems[0].Status != "pending" {
		t.Fatalf("unexpected reminders: %+v", rems)
	}
}
