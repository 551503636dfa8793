// Seeds a Postgres database with demo patients and two weeks of schedule
// slots. Safe to re-run: existing rows are left alone.
package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/harborhealth/appointment-agent/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	patients := store.DemoPatients()
	for _, p := range patients {
		_, err := pool.Exec(ctx, `
			INSERT INTO patients (patient_id, first_name, last_name, date_of_birth,
			                      phone, email, preferred_doctor, insurance_carrier,
			                      member_id, group_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (patient_id) DO NOTHING
		`, p.PatientID, p.FirstName, p.LastName, p.DateOfBirth, p.Phone, p.Email,
			p.PreferredDoctor, p.InsuranceCarrier, p.MemberID, p.GroupNumber)
		if err != nil {
			log.Fatalf("insert patient %s: %v", p.PatientID, err)
		}
	}

	slots := store.DemoSlots(time.Now(), 2)
	for _, s := range slots {
		_, err := pool.Exec(ctx, `
			INSERT INTO schedule_slots (doctor_name, specialty, date, start_time, end_time, is_available)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (doctor_name, date, start_time) DO NOTHING
		`, s.DoctorName, s.Specialty, s.Date, s.StartTime, s.EndTime, s.Available)
		if err != nil {
			log.Fatalf("insert slot %s %s %s: %v", s.DoctorName, s.Date, s.StartTime, err)
		}
	}

	log.Printf("seeded %d patients and %d slots", len(patients), len(slots))
}
