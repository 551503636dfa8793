// Package dialogue implements the appointment-booking conversation protocol:
// a finite state machine that accumulates patient fields, offers schedule
// slots, commits a booking, collects insurance, and confirms.
package dialogue

import (
	"github.com/google/uuid"

	"github.com/harborhealth/appointment-agent/internal/extract"
	"github.com/harborhealth/appointment-agent/internal/store"
)

// DialogueState is the discrete phase of the conversation protocol. It only
// moves forward; Scheduling is the single state that loops on itself while
// slots are being offered and selected.
type DialogueState string

const (
	StateGreeting            DialogueState = "greeting"
	StatePatientLookup       DialogueState = "patient_lookup"
	StateScheduling          DialogueState = "scheduling"
	StateInsuranceCollection DialogueState = "insurance_collection"
	StateConfirmation        DialogueState = "confirmation"
	StateCompleted           DialogueState = "completed"
)

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TranscriptEntry is one (role, text) pair in the ordered transcript.
type TranscriptEntry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Patient accumulates the fields collected across turns.
type Patient struct {
	PatientID        string `json:"patient_id,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
	PreferredDoctor  string `json:"preferred_doctor,omitempty"`
	IsNewPatient     bool   `json:"is_new_patient"`
	InsuranceCarrier string `json:"insurance_carrier,omitempty"`
	MemberID         string `json:"member_id,omitempty"`
	GroupNumber      string `json:"group_number,omitempty"`
}

// mergeIdentity fills identity fields that are still empty. Already captured
// values win; multi-turn correction is out of scope.
func (p *Patient) mergeIdentity(f extract.Fields) {
	if p.FirstName == "" && f.FirstName != "" {
		p.FirstName = f.FirstName
		p.LastName = f.LastName
	}
	if p.DateOfBirth == "" && f.DateOfBirth != "" {
		p.DateOfBirth = f.DateOfBirth
	}
	if p.Phone == "" && f.Phone != "" {
		p.Phone = f.Phone
	}
	if p.Email == "" && f.Email != "" {
		p.Email = f.Email
	}
}

// mergeInsurance overwrites insurance fields when new values arrive; the
// insurance state explicitly supports updating what is on file.
func (p *Patient) mergeInsurance(f extract.Fields) {
	if f.InsuranceCarrier != "" {
		p.InsuranceCarrier = f.InsuranceCarrier
	}
	if f.MemberID != "" {
		p.MemberID = f.MemberID
	}
}

// mergeRecord copies a stored patient record into the conversation, keeping
// anything already captured this conversation.
func (p *Patient) mergeRecord(rec *store.PatientRecord) {
	p.PatientID = rec.PatientID
	if p.Phone == "" {
		p.Phone = rec.Phone
	}
	if p.Email == "" {
		p.Email = rec.Email
	}
	if p.PreferredDoctor == "" {
		p.PreferredDoctor = rec.PreferredDoctor
	}
	if p.InsuranceCarrier == "" {
		p.InsuranceCarrier = rec.InsuranceCarrier
	}
	if p.MemberID == "" {
		p.MemberID = rec.MemberID
	}
	if p.GroupNumber == "" {
		p.GroupNumber = rec.GroupNumber
	}
}

// hasLookupIdentity reports whether the required-for-lookup subset is present.
func (p *Patient) hasLookupIdentity() bool {
	return p.FirstName != "" && p.LastName != "" && p.DateOfBirth != ""
}

// hasInsurance reports whether the required-for-insurance subset is present.
func (p *Patient) hasInsurance() bool {
	return p.InsuranceCarrier != "" && p.MemberID != ""
}

// State is the full conversation record carried across turns. It is owned by
// exactly one conversation and mutated only by the engine.
type State struct {
	ConversationID string             `json:"conversation_id"`
	Dialogue       DialogueState      `json:"dialogue_state"`
	Patient        Patient            `json:"patient"`
	Appointment    *store.Appointment `json:"appointment,omitempty"`
	OfferedSlots   []store.Slot       `json:"offered_slots,omitempty"`
	Transcript     []TranscriptEntry  `json:"transcript"`
	Completed      bool               `json:"completed"`

	// InsuranceReviewOffered records that the keep-or-update prompt for
	// on-file insurance already went out, so it is not repeated.
	// InsuranceReviewResolved flips once the patient has answered it.
	InsuranceReviewOffered  bool `json:"insurance_review_offered,omitempty"`
	InsuranceReviewResolved bool `json:"insurance_review_resolved,omitempty"`
}

// NewState opens a fresh conversation in the Greeting state.
func NewState() *State {
	return &State{
		ConversationID: "CONV-" + uuid.NewString(),
		Dialogue:       StateGreeting,
	}
}

func (s *State) appendUser(text string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Role: RoleUser, Text: text})
}

func (s *State) appendAssistant(text string) {
	s.Transcript = append(s.Transcript, TranscriptEntry{Role: RoleAssistant, Text: text})
}
