// Package api exposes the conversation engine over HTTP. Each conversation
// is identified by the ID minted on creation; state lives in the session
// store between turns so any replica can serve the next message.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborhealth/appointment-agent/internal/dialogue"
	"github.com/harborhealth/appointment-agent/internal/notify"
	"github.com/harborhealth/appointment-agent/internal/observability/metrics"
	"github.com/harborhealth/appointment-agent/internal/session"
	"github.com/harborhealth/appointment-agent/pkg/logging"
)

// Handler wires HTTP requests to the dialogue engine.
type Handler struct {
	engine   *dialogue.Engine
	sessions session.Store
	mailer   *notify.ConfirmationMailer
	metrics  *metrics.ConversationMetrics
	logger   *logging.Logger
}

// NewHandler creates a conversation handler. mailer and m may be nil; email
// and metrics are then skipped.
func NewHandler(engine *dialogue.Engine, sessions session.Store, mailer *notify.ConfirmationMailer, m *metrics.ConversationMetrics, logger *logging.Logger) *Handler {
	if engine == nil {
		panic("api: engine required")
	}
	if sessions == nil {
		panic("api: session store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:   engine,
		sessions: sessions,
		mailer:   mailer,
		metrics:  m,
		logger:   logger,
	}
}

type startRequest struct {
	Message string `json:"message"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	DialogueState  string `json:"dialogue_state"`
	Completed      bool   `json:"completed"`
	AppointmentID  string `json:"appointment_id,omitempty"`
}

// Start handles POST /conversations. The first message is optional; without
// one the patient just gets the opening prompt.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.metrics.ObserveConversationStarted("http")

	state := dialogue.NewState()
	res, err := h.processTurn(w, r, req.Message, state)
	if err != nil {
		return
	}
	h.writeJSON(w, http.StatusCreated, h.toResponse(res))
}

// Message handles POST /conversations/{conversationID}/messages.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	state, err := h.sessions.Load(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load conversation", "error", err, "conversation_id", conversationID)
		http.Error(w, "Failed to load conversation", http.StatusInternalServerError)
		return
	}

	res, err := h.processTurn(w, r, req.Message, state)
	if err != nil {
		return
	}
	h.writeJSON(w, http.StatusOK, h.toResponse(res))
}

// Get handles GET /conversations/{conversationID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	state, err := h.sessions.Load(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load conversation", "error", err, "conversation_id", conversationID)
		http.Error(w, "Failed to load conversation", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, state)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// processTurn runs one engine turn, persists the resulting state, and
// handles the error responses. A non-nil error means the response has
// already been written.
func (h *Handler) processTurn(w http.ResponseWriter, r *http.Request, message string, state *dialogue.State) (*dialogue.Result, error) {
	started := time.Now()
	res, err := h.engine.Process(r.Context(), message, state)
	if err != nil {
		if errors.Is(err, dialogue.ErrConversationClosed) {
			h.metrics.ObserveTurn(string(state.Dialogue), "closed")
			http.Error(w, "Conversation already completed", http.StatusConflict)
			return nil, err
		}
		h.metrics.ObserveTurn(string(state.Dialogue), "error")
		h.logger.Error("turn failed", "error", err, "conversation_id", state.ConversationID)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return nil, err
	}

	h.metrics.ObserveTurn(string(res.State.Dialogue), "ok")
	h.metrics.ObserveTurnLatency(string(res.State.Dialogue), time.Since(started).Seconds())

	if err := h.sessions.Save(r.Context(), res.State); err != nil {
		h.logger.Error("failed to persist conversation", "error", err, "conversation_id", res.State.ConversationID)
		http.Error(w, "Failed to persist conversation", http.StatusInternalServerError)
		return nil, err
	}

	if res.Completed {
		h.metrics.ObserveBooking("booked")
		h.sendConfirmation(r, res.State)
	}
	return res, nil
}

// sendConfirmation is best effort: the booking already committed, so a
// failed email only gets logged.
func (h *Handler) sendConfirmation(r *http.Request, state *dialogue.State) {
	if h.mailer == nil || state.Appointment == nil {
		return
	}
	name := state.Patient.FirstName + " " + state.Patient.LastName
	if err := h.mailer.SendBookingConfirmation(r.Context(), name, state.Patient.Email, state.Appointment); err != nil {
		h.logger.Error("confirmation email failed", "error", err, "appointment_id", state.Appointment.AppointmentID)
	}
}

func (h *Handler) toResponse(res *dialogue.Result) turnResponse {
	out := turnResponse{
		ConversationID: res.State.ConversationID,
		Reply:          res.Message,
		DialogueState:  string(res.State.Dialogue),
		Completed:      res.Completed,
	}
	if res.State.Appointment != nil {
		out.AppointmentID = res.State.Appointment.AppointmentID
	}
	return out
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
