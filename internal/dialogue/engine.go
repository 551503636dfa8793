package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/harborhealth/appointment-agent/internal/extract"
	"github.com/harborhealth/appointment-agent/internal/reminders"
	"github.com/harborhealth/appointment-agent/internal/scheduling"
	"github.com/harborhealth/appointment-agent/internal/store"
	"github.com/harborhealth/appointment-agent/pkg/logging"
)

// maxOfferedSlots caps how many candidate slots one turn presents.
const maxOfferedSlots = 5

// ErrConversationClosed is returned when a turn arrives after completion.
// Callers must stop routing input to a completed conversation.
var ErrConversationClosed = errors.New("dialogue: conversation already completed")

// Result is what one processed turn hands back to the caller.
type Result struct {
	Message   string
	State     *State
	Completed bool
}

// Engine drives the conversation protocol. One Process call consumes exactly
// one utterance; the engine itself holds no per-conversation state.
type Engine struct {
	store     store.Store
	extractor *extract.Extractor
	scheduler *scheduling.Service
	deriver   *reminders.Deriver
	logger    *logging.Logger
}

// NewEngine wires the state machine over its delegates.
func NewEngine(st store.Store, ex *extract.Extractor, sched *scheduling.Service, der *reminders.Deriver, logger *logging.Logger) *Engine {
	if st == nil {
		panic("dialogue: store required")
	}
	if ex == nil {
		panic("dialogue: extractor required")
	}
	if sched == nil {
		panic("dialogue: scheduler required")
	}
	if der == nil {
		panic("dialogue: reminder deriver required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{store: st, extractor: ex, scheduler: sched, deriver: der, logger: logger}
}

// Process advances the conversation by one turn. A nil state opens a fresh
// Greeting conversation. Store failures propagate without advancing the
// dialogue state; every recoverable condition instead produces a
// plain-language message and keeps the conversation alive.
func (e *Engine) Process(ctx context.Context, utterance string, st *State) (*Result, error) {
	if st == nil {
		st = NewState()
	}
	if st.Dialogue == StateCompleted {
		return nil, ErrConversationClosed
	}

	st.appendUser(utterance)

	var (
		msg string
		err error
	)
	switch st.Dialogue {
	case StateGreeting:
		msg, err = e.handleGreeting(ctx, utterance, st)
	case StateScheduling:
		msg, err = e.handleScheduling(ctx, utterance, st)
	case StateInsuranceCollection:
		msg, err = e.handleInsurance(ctx, utterance, st)
	default:
		err = fmt.Errorf("dialogue: conversation %s in unexpected state %q", st.ConversationID, st.Dialogue)
	}
	if err != nil {
		return nil, err
	}

	st.appendAssistant(msg)
	e.logger.Debug("turn processed",
		"conversation_id", st.ConversationID,
		"state", string(st.Dialogue),
		"completed", st.Completed,
	)
	return &Result{Message: msg, State: st, Completed: st.Completed}, nil
}

// handleGreeting collects identity fields. Once the lookup subset is
// complete the patient lookup runs inline, without consuming another turn.
func (e *Engine) handleGreeting(ctx context.Context, utterance string, st *State) (string, error) {
	st.Patient.mergeIdentity(e.extractor.Extract(utterance))

	if !st.Patient.hasLookupIdentity() {
		return greetingPrompt(&st.Patient), nil
	}

	st.Dialogue = StatePatientLookup
	return e.lookupPatient(ctx, st)
}

// lookupPatient resolves the patient against the store and decides the
// new-vs-returning classification. The decision is final for the
// conversation. New patients are registered immediately so a patient ID
// exists before booking.
func (e *Engine) lookupPatient(ctx context.Context, st *State) (string, error) {
	p := &st.Patient

	rec, err := e.store.FindPatient(ctx, p.FirstName, p.LastName, p.DateOfBirth)
	switch {
	case err == nil:
		p.mergeRecord(rec)
		p.IsNewPatient = false
		st.Dialogue = StateScheduling
		return lookupFoundMessage(p.FirstName), nil
	case errors.Is(err, store.ErrNotFound):
		p.IsNewPatient = true
		id, createErr := e.store.CreatePatient(ctx, store.PatientRecord{
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			DateOfBirth: p.DateOfBirth,
			Phone:       p.Phone,
			Email:       p.Email,
		})
		if createErr != nil {
			st.Dialogue = StateGreeting
			return "", fmt.Errorf("dialogue: register new patient: %w", createErr)
		}
		p.PatientID = id
		st.Dialogue = StateScheduling
		return lookupNewPatientMessage(p.FirstName), nil
	default:
		// Leave the conversation retriable: the next turn runs the
		// greeting path again and re-attempts the lookup.
		st.Dialogue = StateGreeting
		return "", fmt.Errorf("dialogue: patient lookup: %w", err)
	}
}

// handleScheduling either resolves a slot selection or (re)offers slots.
// The state loops on itself until a valid selection commits a booking.
func (e *Engine) handleScheduling(ctx context.Context, utterance string, st *State) (string, error) {
	if n, ok := parseSelection(utterance); ok && len(st.OfferedSlots) > 0 {
		if n < 1 || n > len(st.OfferedSlots) {
			return invalidSelectionMessage(len(st.OfferedSlots)), nil
		}
		return e.bookSelection(ctx, st, st.OfferedSlots[n-1])
	}
	return e.offerSlots(ctx, st)
}

func (e *Engine) offerSlots(ctx context.Context, st *State) (string, error) {
	slots, err := e.scheduler.CandidateSlots(ctx, st.Patient.PreferredDoctor, maxOfferedSlots)
	if err != nil {
		return "", err
	}
	if len(slots) == 0 {
		st.OfferedSlots = nil
		return noSlotsMessage(), nil
	}

	st.OfferedSlots = slots
	duration := e.scheduler.Duration(st.Patient.IsNewPatient)
	return slotListMessage(int(duration.Minutes()), slots), nil
}

func (e *Engine) bookSelection(ctx context.Context, st *State, slot store.Slot) (string, error) {
	if st.Patient.PatientID == "" {
		return "", fmt.Errorf("dialogue: conversation %s reached booking without a patient ID", st.ConversationID)
	}

	appt, err := e.scheduler.Book(ctx, st.Patient.PatientID, slot, st.Patient.IsNewPatient)
	if err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			// Lost the race to another conversation. Offer a fresh set.
			st.OfferedSlots = nil
			msg, offerErr := e.offerSlots(ctx, st)
			if offerErr != nil {
				return "", offerErr
			}
			return "I'm sorry, that slot was just taken. " + msg, nil
		}
		return "", err
	}

	st.Appointment = appt
	st.OfferedSlots = nil
	st.Dialogue = StateInsuranceCollection

	if st.Patient.InsuranceCarrier != "" {
		st.InsuranceReviewOffered = true
		return bookedMessage(appt) + "\n\n" + insuranceReviewMessage(st.Patient.InsuranceCarrier), nil
	}
	return bookedMessage(appt), nil
}

// keepWords are replies that accept the on-file insurance as current.
var keepWords = []string{"current", "keep", "yes", "still", "same", "correct"}

// handleInsurance collects or reconfirms insurance, then closes the
// conversation with the confirmation once carrier and member ID are present.
func (e *Engine) handleInsurance(ctx context.Context, utterance string, st *State) (string, error) {
	p := &st.Patient

	if p.InsuranceCarrier != "" && !st.InsuranceReviewOffered {
		st.InsuranceReviewOffered = true
		return insuranceReviewMessage(p.InsuranceCarrier), nil
	}

	fields := e.extractor.Insurance(utterance)

	if st.InsuranceReviewOffered && !st.InsuranceReviewResolved {
		st.InsuranceReviewResolved = true
		if fields.InsuranceCarrier == "" && fields.MemberID == "" && !affirmsKeep(utterance) {
			// Patient wants different details but gave none yet: drop the
			// on-file values and collect from scratch.
			p.InsuranceCarrier = ""
			p.MemberID = ""
			return insurancePrompt(p), nil
		}
		if fields.InsuranceCarrier != "" && fields.InsuranceCarrier != p.InsuranceCarrier {
			// Switching carriers invalidates the on-file member ID.
			p.MemberID = ""
		}
	}

	p.mergeInsurance(fields)

	if !p.hasInsurance() {
		return insurancePrompt(p), nil
	}
	return e.finishConfirmation(ctx, st)
}

// finishConfirmation builds the confirmation, persists the reminder batch,
// and closes the conversation. Reaching here without an appointment or
// patient ID is a programming error, not user-recoverable.
func (e *Engine) finishConfirmation(ctx context.Context, st *State) (string, error) {
	if st.Appointment == nil {
		return "", fmt.Errorf("dialogue: conversation %s reached confirmation without an appointment", st.ConversationID)
	}
	if st.Patient.PatientID == "" {
		return "", fmt.Errorf("dialogue: conversation %s reached confirmation without a patient ID", st.ConversationID)
	}

	st.Dialogue = StateConfirmation
	if _, err := e.deriver.Schedule(ctx, st.Appointment); err != nil {
		// The reminder batch did not persist: roll the state back so the
		// caller can retry the turn, and never mark completed.
		st.Dialogue = StateInsuranceCollection
		return "", err
	}

	st.Dialogue = StateCompleted
	st.Completed = true
	e.logger.Info("conversation completed",
		"conversation_id", st.ConversationID,
		"appointment_id", st.Appointment.AppointmentID,
	)
	return confirmationMessage(&st.Patient, st.Appointment), nil
}

// parseSelection accepts a bare positive integer, 1-based as shown to the
// user. Anything else is "not a selection".
func parseSelection(utterance string) (int, bool) {
	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return 0, false
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func affirmsKeep(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, w := range keepWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
