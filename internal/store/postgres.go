package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborhealth/appointment-agent/pkg/logging"
)

// PostgresStore persists patients, schedule slots, appointments, and
// reminders in PostgreSQL.
type PostgresStore struct {
	db     querier
	logger *logging.Logger
}

// querier is the subset of pgxpool.Pool the store executes against.
// pgxmock satisfies it in tests.
type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool, logger *logging.Logger) *PostgresStore {
	if pool == nil {
		panic("store: pgx pool required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresStore{db: pool, logger: logger}
}

// NewPostgresStoreWithQuerier allows injecting pgxmock in tests.
func NewPostgresStoreWithQuerier(db querier, logger *logging.Logger) *PostgresStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresStore{db: db, logger: logger}
}

// FindPatient looks a patient up by identity. dob narrows the match when set.
func (s *PostgresStore) FindPatient(ctx context.Context, firstName, lastName, dob string) (*PatientRecord, error) {
	query := `
		SELECT patient_id, first_name, last_name, date_of_birth, phone, email,
		       preferred_doctor, insurance_carrier, member_id, group_number
		FROM patients
		WHERE lower(first_name) = lower($1) AND lower(last_name) = lower($2)
	`
	args := []any{firstName, lastName}
	if dob != "" {
		query += ` AND date_of_birth = $3`
		args = append(args, dob)
	}
	query += ` LIMIT 1`

	var rec PatientRecord
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&rec.PatientID,
		&rec.FirstName,
		&rec.LastName,
		&rec.DateOfBirth,
		&rec.Phone,
		&rec.Email,
		&rec.PreferredDoctor,
		&rec.InsuranceCarrier,
		&rec.MemberID,
		&rec.GroupNumber,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find patient: %w", err)
	}
	return &rec, nil
}

// CreatePatient inserts a new patient row with a minted ID.
func (s *PostgresStore) CreatePatient(ctx context.Context, rec PatientRecord) (string, error) {
	if rec.PatientID == "" {
		rec.PatientID = "PAT-" + uuid.NewString()
	}
	query := `
		INSERT INTO patients (patient_id, first_name, last_name, date_of_birth,
		                      phone, email, preferred_doctor, insurance_carrier,
		                      member_id, group_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	row := s.db.QueryRow(ctx, query+` RETURNING patient_id`,
		rec.PatientID,
		rec.FirstName,
		rec.LastName,
		rec.DateOfBirth,
		rec.Phone,
		rec.Email,
		rec.PreferredDoctor,
		rec.InsuranceCarrier,
		rec.MemberID,
		rec.GroupNumber,
	)
	var id string
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("store: create patient: %w", err)
	}
	return id, nil
}

// AvailableSlots returns open slots ordered by date then start time.
func (s *PostgresStore) AvailableSlots(ctx context.Context, doctorName, date string) ([]Slot, error) {
	query := `
		SELECT doctor_name, specialty, date, start_time, end_time, is_available
		FROM schedule_slots
		WHERE is_available = TRUE
	`
	args := []any{}
	if doctorName != "" {
		args = append(args, doctorName)
		query += fmt.Sprintf(` AND lower(doctor_name) = lower($%d)`, len(args))
	}
	if date != "" {
		args = append(args, date)
		query += fmt.Sprintf(` AND date = $%d`, len(args))
	}
	query += ` ORDER BY date, start_time`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var slot Slot
		if err := rows.Scan(
			&slot.DoctorName,
			&slot.Specialty,
			&slot.Date,
			&slot.StartTime,
			&slot.EndTime,
			&slot.Available,
		); err != nil {
			return nil, fmt.Errorf("store: scan slot: %w", err)
		}
		out = append(out, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate slots: %w", err)
	}
	return out, nil
}

// BookAppointment commits the booking in a transaction. The slot flip uses a
// guarded UPDATE so two concurrent bookings of the same slot can't both win:
// the loser sees zero rows updated and the transaction rolls back.
func (s *PostgresStore) BookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE schedule_slots
		SET is_available = FALSE
		WHERE doctor_name = $1 AND date = $2 AND start_time = $3 AND is_available = TRUE
	`, req.DoctorName, req.Date, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("store: claim slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrSlotTaken
	}

	endTime, err := addMinutes(req.Date, req.StartTime, int(req.Duration.Minutes()))
	if err != nil {
		return nil, fmt.Errorf("store: compute end time: %w", err)
	}

	appt := Appointment{
		AppointmentID: "APT-" + uuid.NewString(),
		PatientID:     req.PatientID,
		DoctorName:    req.DoctorName,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       endTime,
		Duration:      int(req.Duration.Minutes()),
		Status:        "scheduled",
		Reason:        req.Reason,
		CreatedAt:     time.Now().UTC(),
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO appointments (appointment_id, patient_id, doctor_name, date,
		                          start_time, end_time, duration_minutes, status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		appt.AppointmentID,
		appt.PatientID,
		appt.DoctorName,
		appt.Date,
		appt.StartTime,
		appt.EndTime,
		appt.Duration,
		appt.Status,
		appt.Reason,
		appt.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("store: insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("store: commit booking: %w", err)
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.AppointmentID,
		"doctor", appt.DoctorName,
		"date", appt.Date,
		"start_time", appt.StartTime,
	)
	return &appt, nil
}

// ScheduleReminder inserts a pending reminder row.
func (s *PostgresStore) ScheduleReminder(ctx context.Context, rem Reminder) (string, error) {
	if rem.ReminderID == "" {
		rem.ReminderID = "REM-" + uuid.NewString()
	}
	if rem.Status == "" {
		rem.Status = "pending"
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO reminders (reminder_id, appointment_id, kind, scheduled_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING reminder_id
	`,
		rem.ReminderID,
		rem.AppointmentID,
		string(rem.Kind),
		rem.ScheduledTime,
		rem.Status,
	)
	var id string
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("store: schedule reminder: %w", err)
	}
	return id, nil
}
