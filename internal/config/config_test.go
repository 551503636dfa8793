package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("NEW_PATIENT_DURATION_MINS", "")
	t.Setenv("REMINDER_OFFSETS", "")
	t.Setenv("INSURANCE_CARRIERS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.NewPatientDuration != 60*time.Minute {
		t.Fatalf("expected 60m new patient duration, got %s", cfg.NewPatientDuration)
	}
	if cfg.ReturningPatientDuration != 30*time.Minute {
		t.Fatalf("expected 30m returning patient duration, got %s", cfg.ReturningPatientDuration)
	}
	if len(cfg.ReminderOffsets) != 3 || cfg.ReminderOffsets[0] != 24*time.Hour {
		t.Fatalf("expected default reminder offsets 24h,2h,1h, got %v", cfg.ReminderOffsets)
	}
	if len(cfg.InsuranceCarriers) == 0 || cfg.InsuranceCarriers[0] != "Blue Cross" {
		t.Fatalf("expected stock carrier list, got %v", cfg.InsuranceCarriers)
	}
	if cfg.NameFallbackExtraction {
		t.Fatal("expected bare-name fallback disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("NEW_PATIENT_DURATION_MINS", "45")
	t.Setenv("RETURNING_PATIENT_DURATION_MINS", "20")
	t.Setenv("REMINDER_OFFSETS", "48h,1h")
	t.Setenv("INSURANCE_CARRIERS", "Oscar, Molina")
	t.Setenv("NAME_FALLBACK_EXTRACTION", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.NewPatientDuration != 45*time.Minute {
		t.Fatalf("expected 45m override, got %s", cfg.NewPatientDuration)
	}
	if cfg.ReturningPatientDuration != 20*time.Minute {
		t.Fatalf("expected 20m override, got %s", cfg.ReturningPatientDuration)
	}
	if len(cfg.ReminderOffsets) != 2 || cfg.ReminderOffsets[1] != time.Hour {
		t.Fatalf("expected offsets 48h,1h, got %v", cfg.ReminderOffsets)
	}
	if len(cfg.InsuranceCarriers) != 2 || cfg.InsuranceCarriers[1] != "Molina" {
		t.Fatalf("expected carrier override, got %v", cfg.InsuranceCarriers)
	}
	if !cfg.NameFallbackExtraction {
		t.Fatal("expected bare-name fallback enabled")
	}
}

func TestBadReminderOffsetsFallBack(t *testing.T) {
	t.Setenv("REMINDER_OFFSETS", "24h,nope")
	cfg := Load()
	if len(cfg.ReminderOffsets) != 3 {
		t.Fatalf("expected defaults on unparsable list, got %v", cfg.ReminderOffsets)
	}
}
