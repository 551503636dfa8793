package store

import (
	"fmt"
	"time"
)

// demoDoctors is the synthetic roster used for local development.
var demoDoctors = []struct {
	Name      string
	Specialty string
}{
	{"Dr. Chen", "Family Medicine"},
	{"Dr. Patel", "Cardiology"},
	{"Dr. Okafor", "Dermatology"},
}

// DemoPatients returns a small synthetic patient registry.
func DemoPatients() []PatientRecord {
	return []PatientRecord{
		{
			PatientID:        "PAT-0001",
			FirstName:        "Alice",
			LastName:         "Johnson",
			DateOfBirth:      "1990-03-15",
			Phone:            "555-123-4567",
			Email:            "alice.johnson@example.com",
			InsuranceCarrier: "Aetna",
			MemberID:         "AET44821",
		},
		{
			PatientID:   "PAT-0002",
			FirstName:   "Marcus",
			LastName:    "Webb",
			DateOfBirth: "1978-11-02",
			Phone:       "555-987-1234",
			Email:       "marcus.webb@example.com",
		},
		{
			PatientID:        "PAT-0003",
			FirstName:        "Priya",
			LastName:         "Raman",
			DateOfBirth:      "1985-07-22",
			Email:            "priya.raman@example.com",
			PreferredDoctor:  "Dr. Patel",
			InsuranceCarrier: "Cigna",
			MemberID:         "CIG90210",
		},
	}
}

// DemoSlots generates weekday slots for every demo doctor: hourly from 09:00
// to 16:00, starting the day after from, for the given number of weeks.
func DemoSlots(from time.Time, weeks int) []Slot {
	var out []Slot
	day := from.AddDate(0, 0, 1)
	for i := 0; i < weeks*7; i++ {
		d := day.AddDate(0, 0, i)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for _, doc := range demoDoctors {
			for hour := 9; hour < 16; hour++ {
				out = append(out, Slot{
					DoctorName: doc.Name,
					Specialty:  doc.Specialty,
					Date:       d.Format("2006-01-02"),
					StartTime:  fmt.Sprintf("%02d:00", hour),
					EndTime:    fmt.Sprintf("%02d:00", hour+1),
					Available:  true,
				})
			}
		}
	}
	return out
}
