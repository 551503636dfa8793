package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborhealth/appointment-agent/internal/store"
)

func testAppointment() *store.Appointment {
	return &store.Appointment{
		AppointmentID: "APT-1",
		Date:          "2024-01-15",
		StartTime:     "10:00",
		Duration:      30,
	}
}

func TestDeriveStockOffsets(t *testing.T) {
	d := NewDeriver(store.NewMemoryStore(), nil, nil)

	batch, err := d.Derive(testAppointment())
	require.NoError(t, err)
	require.Len(t, batch, 3)

	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.Local)
	want := []struct {
		kind store.ReminderKind
		when time.Time
	}{
		{store.ReminderH24, start.Add(-24 * time.Hour)}, // 2024-01-14 10:00
		{store.ReminderH2, start.Add(-2 * time.Hour)},   // 2024-01-15 08:00
		{store.ReminderH1, start.Add(-time.Hour)},       // 2024-01-15 09:00
	}
	for i, w := range want {
		assert.Equal(t, w.kind, batch[i].Kind)
		assert.True(t, batch[i].ScheduledTime.Equal(w.when), "reminder %d time = %s, want %s", i, batch[i].ScheduledTime, w.when)
		assert.Equal(t, "pending", batch[i].Status)
	}
}

func TestDerivePastOffsetsStillRecorded(t *testing.T) {
	// An appointment under 24h out yields an H24 time already in the past.
	// That is accepted data; filtering is the sender's job.
	d := NewDeriver(store.NewMemoryStore(), nil, nil)
	soon := time.Now().Add(3 * time.Hour)
	appt := &store.Appointment{
		AppointmentID: "APT-2",
		Date:          soon.Format("2006-01-02"),
		StartTime:     soon.Format("15:04"),
	}

	batch, err := d.Derive(appt)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.True(t, batch[0].ScheduledTime.Before(time.Now()), "expected H24 reminder in the past for a near-term booking")
}

func TestSchedulePersistsBatch(t *testing.T) {
	st := store.NewMemoryStore()
	d := NewDeriver(st, nil, nil)

	batch, err := d.Schedule(context.Background(), testAppointment())
	require.NoError(t, err)
	for _, rem := range batch {
		assert.NotEmpty(t, rem.ReminderID, "reminder %s not assigned an ID", rem.Kind)
	}

	assert.Len(t, st.Reminders("APT-1"), 3)
}

func TestCustomOffsetKinds(t *testing.T) {
	d := NewDeriver(store.NewMemoryStore(), []time.Duration{48 * time.Hour}, nil)
	batch, err := d.Derive(testAppointment())
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, store.ReminderKind("H48"), batch[0].Kind)
}

func TestDeriveBadStart(t *testing.T) {
	d := NewDeriver(store.NewMemoryStore(), nil, nil)
	_, err := d.Derive(&store.Appointment{AppointmentID: "APT-3", Date: "not-a-date", StartTime: "10:00"})
	require.Error(t, err)
}
