// Package reminders derives the fixed reminder batch for a booked
// appointment. Derivation is pure: offsets in the past are still recorded,
// delivery-time filtering belongs to the sender.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/harborhealth/appointment-agent/internal/store"
	"github.com/harborhealth/appointment-agent/pkg/logging"
)

// DefaultOffsets is the stock lead-time set: 24 hours, 2 hours, 1 hour.
var DefaultOffsets = []time.Duration{24 * time.Hour, 2 * time.Hour, time.Hour}

// Deriver computes reminder rows from an appointment and persists them.
type Deriver struct {
	store   store.Store
	offsets []time.Duration
	logger  *logging.Logger
}

// NewDeriver builds a deriver with the given offsets; nil or empty offsets
// fall back to DefaultOffsets.
func NewDeriver(st store.Store, offsets []time.Duration, logger *logging.Logger) *Deriver {
	if st == nil {
		panic("reminders: store required")
	}
	if len(offsets) == 0 {
		offsets = DefaultOffsets
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Deriver{store: st, offsets: offsets, logger: logger}
}

// Derive computes the reminder batch for the appointment without persisting.
func (d *Deriver) Derive(appt *store.Appointment) ([]store.Reminder, error) {
	start, err := appt.Start()
	if err != nil {
		return nil, fmt.Errorf("reminders: parse appointment start: %w", err)
	}

	out := make([]store.Reminder, 0, len(d.offsets))
	for _, offset := range d.offsets {
		out = append(out, store.Reminder{
			AppointmentID: appt.AppointmentID,
			Kind:          kindForOffset(offset),
			ScheduledTime: start.Add(-offset),
			Status:        "pending",
		})
	}
	return out, nil
}

// Schedule derives and persists the full batch. Any store failure aborts the
// turn; already inserted rows stay (re-delivery is idempotent downstream).
func (d *Deriver) Schedule(ctx context.Context, appt *store.Appointment) ([]store.Reminder, error) {
	batch, err := d.Derive(appt)
	if err != nil {
		return nil, err
	}
	for i := range batch {
		id, err := d.store.ScheduleReminder(ctx, batch[i])
		if err != nil {
			return nil, fmt.Errorf("reminders: persist %s reminder: %w", batch[i].Kind, err)
		}
		batch[i].ReminderID = id
	}
	d.logger.Info("reminders scheduled",
		"appointment_id", appt.AppointmentID,
		"count", len(batch),
	)
	return batch, nil
}

// kindForOffset maps a lead time to its reminder kind. Offsets outside the
// stock set get an hour-based kind so custom configurations still label rows.
func kindForOffset(offset time.Duration) store.ReminderKind {
	switch offset {
	case 24 * time.Hour:
		return store.ReminderH24
	case 2 * time.Hour:
		return store.ReminderH2
	case time.Hour:
		return store.ReminderH1
	default:
		return store.ReminderKind(fmt.Sprintf("H%d", int(offset.Hours())))
	}
}
