package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	StoreBackend  string // "postgres" or "memory"
	SessionStore  string // "redis" or "dynamodb"
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	SessionsTable       string

	// Booking durations by patient classification.
	NewPatientDuration       time.Duration
	ReturningPatientDuration time.Duration

	// Reminder lead times before the appointment start.
	ReminderOffsets []time.Duration

	// Insurance carriers recognized by the extractor, in match-priority order.
	InsuranceCarriers []string

	// NameFallbackExtraction enables the permissive bare-two-words name
	// matcher. Off by default: it misfires on phrases like "yes please".
	NameFallbackExtraction bool

	DefaultVisitReason string

	EmailProvider     string // "sendgrid", "ses", or "" for stub
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
}

// defaultCarriers is the stock carrier list used when INSURANCE_CARRIERS is unset.
var defaultCarriers = []string{
	"Blue Cross",
	"Aetna",
	"Cigna",
	"UnitedHealth",
	"Humana",
	"Kaiser",
	"Anthem",
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", "postgres")),
		SessionStore:  strings.ToLower(getEnv("SESSION_STORE", "redis")),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		SessionsTable:       getEnv("SESSIONS_TABLE", "conversation_sessions"),

		NewPatientDuration:       time.Duration(getEnvAsInt("NEW_PATIENT_DURATION_MINS", 60)) * time.Minute,
		ReturningPatientDuration: time.Duration(getEnvAsInt("RETURNING_PATIENT_DURATION_MINS", 30)) * time.Minute,

		ReminderOffsets: getEnvAsDurationList("REMINDER_OFFSETS", []time.Duration{
			24 * time.Hour,
			2 * time.Hour,
			time.Hour,
		}),

		InsuranceCarriers:      getEnvAsList("INSURANCE_CARRIERS", defaultCarriers),
		NameFallbackExtraction: getEnvAsBool("NAME_FALLBACK_EXTRACTION", false),
		DefaultVisitReason:     getEnv("DEFAULT_VISIT_REASON", "Routine appointment"),

		EmailProvider:     strings.ToLower(getEnv("EMAIL_PROVIDER", "")),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Harbor Health"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Harbor Health"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, trimming whitespace.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsDurationList parses a comma-separated list of durations, e.g. "24h,2h,1h".
// Any unparsable entry invalidates the whole list and the default is used.
func getEnvAsDurationList(key string, defaultValue []time.Duration) []time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		d, err := time.ParseDuration(strings.TrimSpace(p))
		if err != nil {
			return defaultValue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
