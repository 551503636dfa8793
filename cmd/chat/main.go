// Terminal client for exercising the booking conversation locally. Runs the
// engine over an in-memory store seeded with demo patients and two weeks of
// slots.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	appconfig "github.com/harborhealth/appointment-agent/internal/config"
	"github.com/harborhealth/appointment-agent/internal/dialogue"
	"github.com/harborhealth/appointment-agent/internal/extract"
	"github.com/harborhealth/appointment-agent/internal/reminders"
	"github.com/harborhealth/appointment-agent/internal/scheduling"
	"github.com/harborhealth/appointment-agent/internal/store"
	"github.com/harborhealth/appointment-agent/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New("error")

	ms := store.NewMemoryStore()
	for _, p := range store.DemoPatients() {
		ms.AddPatient(p)
	}
	for _, s := range store.DemoSlots(time.Now(), 2) {
		ms.AddSlot(s)
	}

	var extractOpts []extract.Option
	if cfg.NameFallbackExtraction {
		extractOpts = append(extractOpts, extract.WithBareNameFallback())
	}
	engine := dialogue.NewEngine(
		ms,
		extract.New(cfg.InsuranceCarriers, extractOpts...),
		scheduling.New(ms, scheduling.Config{
			NewPatientDuration:       cfg.NewPatientDuration,
			ReturningPatientDuration: cfg.ReturningPatientDuration,
			DefaultReason:            cfg.DefaultVisitReason,
		}, logger),
		reminders.NewDeriver(ms, cfg.ReminderOffsets, logger),
		logger,
	)

	fmt.Println("Appointment assistant. Type 'quit' to exit.")
	fmt.Println()

	ctx := context.Background()
	state := dialogue.NewState()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		res, err := engine.Process(ctx, line, state)
		if err != nil {
			if errors.Is(err, dialogue.ErrConversationClosed) {
				fmt.Println("This conversation is finished. Restart to book another appointment.")
				break
			}
			fmt.Printf("error: %v\n", err)
			continue
		}
		state = res.State

		fmt.Printf("assistant> %s\n\n", res.Message)
		if res.Completed {
			printReminders(ms, state)
			break
		}
	}
}

func printReminders(ms *store.MemoryStore, state *dialogue.State) {
	if state.Appointment == nil {
		return
	}
	rems := ms.Reminders(state.Appointment.AppointmentID)
	if len(rems) == 0 {
		return
	}
	fmt.Println("Scheduled reminders:")
	for _, r := range rems {
		fmt.Printf("  %-4s %s\n", r.Kind, r.ScheduledTime.Format("2006-01-02 15:04"))
	}
}
