package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/harborhealth/appointment-agent/cmd/mainconfig"
	"github.com/harborhealth/appointment-agent/internal/api"
	"github.com/harborhealth/appointment-agent/internal/api/router"
	appconfig "github.com/harborhealth/appointment-agent/internal/config"
	"github.com/harborhealth/appointment-agent/internal/dialogue"
	"github.com/harborhealth/appointment-agent/internal/extract"
	"github.com/harborhealth/appointment-agent/internal/notify"
	"github.com/harborhealth/appointment-agent/internal/observability/metrics"
	"github.com/harborhealth/appointment-agent/internal/reminders"
	"github.com/harborhealth/appointment-agent/internal/scheduling"
	"github.com/harborhealth/appointment-agent/internal/session"
	"github.com/harborhealth/appointment-agent/internal/store"
	"github.com/harborhealth/appointment-agent/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting appointment-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Persistence backend
	dataStore, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Session backend
	sessions, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}

	// Email
	sender, err := buildEmailSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize email sender", "error", err)
		os.Exit(1)
	}
	mailer := notify.NewConfirmationMailer(sender, logger)

	// Core engine
	var extractOpts []extract.Option
	if cfg.NameFallbackExtraction {
		extractOpts = append(extractOpts, extract.WithBareNameFallback())
	}
	engine := dialogue.NewEngine(
		dataStore,
		extract.New(cfg.InsuranceCarriers, extractOpts...),
		scheduling.New(dataStore, scheduling.Config{
			NewPatientDuration:       cfg.NewPatientDuration,
			ReturningPatientDuration: cfg.ReturningPatientDuration,
			DefaultReason:            cfg.DefaultVisitReason,
		}, logger),
		reminders.NewDeriver(dataStore, cfg.ReminderOffsets, logger),
		logger,
	)

	m := metrics.NewConversationMetrics(nil)
	conversations := api.NewHandler(engine, sessions, mailer, m, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		Conversations:  conversations,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func buildStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return store.NewPostgresStore(pool, logger), pool.Close, nil
	case "memory":
		logger.Warn("using in-memory store with demo data; bookings are lost on restart")
		ms := store.NewMemoryStore()
		for _, p := range store.DemoPatients() {
			ms.AddPatient(p)
		}
		for _, s := range store.DemoSlots(time.Now(), 2) {
			ms.AddSlot(s)
		}
		return ms, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func buildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (session.Store, error) {
	switch cfg.SessionStore {
	case "redis":
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return session.NewRedisStore(client, cfg.SessionTTL, nil), nil
	case "dynamodb":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		return session.NewDynamoStore(client, cfg.SessionsTable, cfg.SessionTTL, logger), nil
	case "memory":
		logger.Warn("using in-memory session store; conversations are lost on restart")
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}

func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return sender, nil
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("SES client not configured")
		}
		return sender, nil
	default:
		return notify.NewStubEmailSender(logger), nil
	}
}
