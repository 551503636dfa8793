package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborhealth/appointment-agent/internal/api"
	"github.com/harborhealth/appointment-agent/internal/dialogue"
	"github.com/harborhealth/appointment-agent/internal/extract"
	"github.com/harborhealth/appointment-agent/internal/reminders"
	"github.com/harborhealth/appointment-agent/internal/scheduling"
	"github.com/harborhealth/appointment-agent/internal/session"
	"github.com/harborhealth/appointment-agent/internal/store"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	st := store.NewMemoryStore()
	engine := dialogue.NewEngine(
		st,
		extract.New([]string{"Aetna"}),
		scheduling.New(st, scheduling.Config{}, nil),
		reminders.NewDeriver(st, nil, nil),
		nil,
	)
	h := api.NewHandler(engine, session.NewMemoryStore(), nil, nil, nil)

	reg := prometheus.NewRegistry()
	return New(&Config{
		Conversations:  h,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func TestHealthRoute(t *testing.T) {
	r := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsRoute(t *testing.T) {
	r := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := newRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
