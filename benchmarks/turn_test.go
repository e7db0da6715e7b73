package benchmarks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/randalmurphal/flightflow/pkg/flightflow"
	"github.com/randalmurphal/flightflow/pkg/flightflow/llm"
	"github.com/randalmurphal/flightflow/pkg/flightflow/records"
)

func mustEngine(b *testing.B, client llm.Client, store records.Store) *flightflow.Engine {
	b.Helper()
	engine, err := flightflow.New(client, store)
	if err != nil {
		b.Fatal(err)
	}
	return engine
}

func benchCtx() flightflow.Context {
	return flightflow.NewContext(context.Background(),
		flightflow.WithSessionID("bench"))
}

func seededStore() *records.MemoryStore {
	store := records.NewMemoryStore()
	store.AddTicket(records.TicketRecord{
		TicketNumber:      "ABC1234567890",
		PassengerName:     "John Doe",
		PassengerBirthday: "19.10.1991",
		AirlineCode:       "BA",
		DepartureAirport:  "LHR",
		ArrivalAirport:    "JFK",
		DepartureDate:     "05.03.2026",
		DepartureTime:     "10:30",
		PriceUSD:          540,
	})
	return store
}

func collectingState() flightflow.ConversationState {
	state := flightflow.NewConversationState()
	state.ActiveIntent = flightflow.IntentFlightChange
	for _, f := range flightflow.AllFields {
		state.AddMissing(f)
	}
	return state
}

func verifiableState() flightflow.ConversationState {
	state := flightflow.NewConversationState()
	state.ActiveIntent = flightflow.IntentFlightChange
	state.SetCollected(flightflow.FieldTicketNumber, "ABC1234567890")
	state.SetCollected(flightflow.FieldPassengerName, "John Doe")
	state.SetCollected(flightflow.FieldPassengerBirthday, "19.10.1991")
	state.SetCollected(flightflow.FieldDepartureAirport, "LHR")
	state.SetCollected(flightflow.FieldArrivalAirport, "JFK")
	state.SetCollected(flightflow.FieldDepartureDate, "05.03.2026")
	state.SetCollected(flightflow.FieldReturnDate, "12.03.2026")
	state.SetCollected(flightflow.FieldAdultPassengers, "2")
	return state
}

// BenchmarkTurn_Collection measures one field-collection turn (no LLM call,
// no store read).
func BenchmarkTurn_Collection(b *testing.B) {
	engine := mustEngine(b, llm.NewMockClient("{}"), records.NewMemoryStore())
	ctx := benchCtx()
	state := collectingState()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = engine.Turn(ctx, state, "ABC1234567890")
	}
}

// BenchmarkTurn_Verification measures a turn that runs the ticket lookup and
// the scripted phrasing call.
func BenchmarkTurn_Verification(b *testing.B) {
	engine := mustEngine(b, llm.NewMockClient("I found your booking."), seededStore())
	ctx := benchCtx()
	state := verifiableState()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = engine.Turn(ctx, state, "that's everything")
	}
}

// BenchmarkStateClone measures the per-turn deep copy of a mid-conversation
// state.
func BenchmarkStateClone(b *testing.B) {
	state := verifiableState()
	for i := 0; i < 20; i++ {
		state.AppendSystem("message")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = state.Clone()
	}
}

// BenchmarkStateMarshal measures the session-persistence serialization cost.
func BenchmarkStateMarshal(b *testing.B) {
	state := verifiableState()
	for i := 0; i < 20; i++ {
		state.AppendSystem("message")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(state)
	}
}
