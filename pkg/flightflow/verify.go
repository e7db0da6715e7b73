package flightflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/flightflow/pkg/flightflow/llm"
	"github.com/randalmurphal/flightflow/pkg/flightflow/records"
)

// verifierSystemPrompt phrases lookup outcomes for the user.
const verifierSystemPrompt = `You are an airline assistant. Rephrase the given
booking lookup outcome as one short, friendly reply to the passenger. State
the facts exactly as given; do not invent details.`

// handleVerification cross-checks the identity triple against the record
// store.
//
// If any identity field is missing, verification short-circuits back to
// collection without touching the store. A found record is merged into the
// collected fields and the flow moves on to alternatives. A failed lookup
// fails closed: everything collected is discarded and the identity fields are
// requested again, so stale ticket data is never reused.
func (e *Engine) handleVerification(ctx Context, state ConversationState) (ConversationState, error) {
	var absent []FieldName
	for _, f := range IdentityFields {
		if !state.IsCollected(f) {
			absent = append(absent, f)
		}
	}
	if len(absent) > 0 {
		for _, f := range absent {
			state.AddMissing(f)
		}
		next, _ := state.NextMissing()
		state.AppendSystem("I need a few more details before I can look up the booking. " + next.Prompt())
		return state, nil
	}

	// Exactly one read against the record store.
	rec, err := e.records.FindTicket(ctx,
		state.Value(FieldTicketNumber),
		state.Value(FieldPassengerBirthday),
		state.Value(FieldPassengerName),
	)
	if err != nil && !errors.Is(err, records.ErrNotFound) {
		return state, &LookupFailure{Op: "find_ticket", Err: err}
	}

	if rec == nil {
		e.metrics.RecordTicketLookup(ctx, false)
		state.ClearCollected()
		state.ResetMissing(IdentityFields...)
		state.ActiveIntent = IntentFlightChange
		state.Append(Message{
			Content:   e.phraseVerification(ctx, rejectionFacts, rejectionMessage),
			Sender:    SenderSystem,
			IntentTag: IntentFlightChange,
		})
		return state, nil
	}

	e.metrics.RecordTicketLookup(ctx, true)
	mergeTicketRecord(&state, rec)
	state.ActiveIntent = IntentSearchAlternative

	summary := summarizeTicket(rec)
	fallback := "I found your booking. " + summary + " What would you like to change about this flight?"
	state.Append(Message{
		Content:   e.phraseVerification(ctx, "Booking found: "+summary+" Ask what the passenger wants to change.", fallback),
		Sender:    SenderSystem,
		IntentTag: IntentSearchAlternative,
	})
	return state, nil
}

const (
	rejectionFacts   = "No booking matched the given ticket number, name and date of birth. Ask the passenger to re-enter all three."
	rejectionMessage = "I could not find a booking matching those details. Let's try again - please enter your ticket number (format: ABC1234567890)."
)

// phraseVerification asks the LLM to word the outcome, falling back to the
// deterministic message so verification itself never fails a turn.
func (e *Engine) phraseVerification(ctx Context, facts, fallback string) string {
	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: verifierSystemPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: facts}},
		Temperature:  0.4,
	})
	if err != nil || strings.TrimSpace(resp.Content) == "" {
		return fallback
	}
	return strings.TrimSpace(resp.Content)
}

// mergeTicketRecord copies the record into the collected fields so later
// stages can filter on the booked flight without another lookup.
func mergeTicketRecord(state *ConversationState, rec *records.TicketRecord) {
	state.SetCollected(FieldTicketNumber, rec.TicketNumber)
	state.SetCollected(FieldPassengerName, rec.PassengerName)
	state.SetCollected(FieldPassengerBirthday, rec.PassengerBirthday)
	state.SetCollected(FieldDepartureAirport, rec.DepartureAirport)
	state.SetCollected(FieldArrivalAirport, rec.ArrivalAirport)
	state.SetCollected(FieldDepartureDate, rec.DepartureDate)

	set := func(key, value string) {
		if value != "" {
			state.Collected[key] = value
		}
	}
	set("airline_code", rec.AirlineCode)
	set("departure_time", rec.DepartureTime)
	set("arrival_date", rec.ArrivalDate)
	set("arrival_time", rec.ArrivalTime)
	set("price_usd", fmt.Sprintf("%.2f", rec.PriceUSD))

	if rec.ReturnDate != "" {
		state.SetCollected(FieldReturnDate, rec.ReturnDate)
		set("return_departure_airport", rec.ReturnDepAirport)
		set("return_arrival_airport", rec.ReturnArrAirport)
		set("return_departure_time", rec.ReturnDepTime)
		set("return_arrival_date", rec.ReturnArrDate)
		set("return_arrival_time", rec.ReturnArrTime)
	}
}

// summarizeTicket renders a one-line booking summary.
func summarizeTicket(rec *records.TicketRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s to %s on %s at %s",
		rec.AirlineCode, rec.DepartureAirport, rec.ArrivalAirport,
		rec.DepartureDate, rec.DepartureTime)
	if rec.ReturnDate != "" {
		fmt.Fprintf(&b, ", returning %s", rec.ReturnDate)
	}
	fmt.Fprintf(&b, ", %.2f USD.", rec.PriceUSD)
	return b.String()
}
