package dialogue

import (
	"fmt"
	"strings"

	"github.com/harborhealth/appointment-agent/internal/store"
)

// One field-acquisition prompt goes out per turn, in fixed priority order.
func greetingPrompt(p *Patient) string {
	switch {
	case p.FirstName == "":
		return "Hello! I'd be happy to help you schedule an appointment. Could you please provide your first and last name?"
	case p.LastName == "":
		return "Thank you! Could you also provide your last name?"
	default:
		return "Perfect! Could you also provide your date of birth (MM/DD/YYYY format)?"
	}
}

func lookupFoundMessage(firstName string) string {
	return fmt.Sprintf("Welcome back, %s! I found your records. You're a returning patient. Just say the word and I'll show you our open appointment slots.", firstName)
}

func lookupNewPatientMessage(firstName string) string {
	if firstName == "" {
		firstName = "there"
	}
	return fmt.Sprintf("Hello %s! I don't see you in our system, so you'll be a new patient. Let me know when you're ready and I'll show you the available slots.", firstName)
}

func slotListMessage(durationMinutes int, slots []store.Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I can schedule you for a %d-minute appointment. Here are the available slots:\n", durationMinutes)
	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s at %s with %s (%s)\n", i+1, slot.Date, slot.StartTime, slot.DoctorName, slot.Specialty)
	}
	b.WriteString("\nPlease select a number from the options above.")
	return b.String()
}

func noSlotsMessage() string {
	return "I'm sorry, but there are no available appointments at the moment. Please try again later or contact our office directly."
}

func invalidSelectionMessage(max int) string {
	return fmt.Sprintf("That's not a valid selection. Please choose a number between 1 and %d.", max)
}

func bookedMessage(appt *store.Appointment) string {
	return fmt.Sprintf("Perfect! I've scheduled your appointment for %s at %s with %s. Your appointment ID is %s. Now I need to collect your insurance information. What insurance carrier do you have?",
		appt.Date, appt.StartTime, appt.DoctorName, appt.AppointmentID)
}

func insuranceReviewMessage(carrier string) string {
	return fmt.Sprintf("I see you already have %s insurance on file. Is this information still current, or would you like to update it?", carrier)
}

func insurancePrompt(p *Patient) string {
	if p.InsuranceCarrier == "" {
		return "I need to collect your insurance information. What insurance carrier do you have?"
	}
	return "Thank you. What's your member ID?"
}

func confirmationMessage(p *Patient, appt *store.Appointment) string {
	var b strings.Builder
	b.WriteString("Your appointment is confirmed!\n\n")
	fmt.Fprintf(&b, "Patient: %s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(&b, "Doctor: %s\n", appt.DoctorName)
	fmt.Fprintf(&b, "Date: %s\n", appt.Date)
	fmt.Fprintf(&b, "Time: %s\n", appt.StartTime)
	fmt.Fprintf(&b, "Duration: %d minutes\n", appt.Duration)
	fmt.Fprintf(&b, "Appointment ID: %s\n\n", appt.AppointmentID)
	b.WriteString("I'll send you intake forms via email shortly. You'll also receive reminder notifications before your appointment.")
	return b.String()
}
