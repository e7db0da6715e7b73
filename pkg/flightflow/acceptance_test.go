package flightflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flightflow/pkg/flightflow/llm"
	"github.com/randalmurphal/flightflow/pkg/flightflow/records"
)

// TestAcceptance_FlightChangeConversation walks the full flight-change flow
// turn by turn: intent detection, collection of all eight fields, ticket
// verification, a refined search for cheaper alternatives and the final
// confirmation. The LLM is scripted with exactly the three completions the
// flow needs (classifier, verification phrasing, filter derivation); every
// later decision is deterministic.
func TestAcceptance_FlightChangeConversation(t *testing.T) {
	classifierJSON := `{"intent":"flight_change",` +
		`"missing_info":["ticket_number","passenger_name","passenger_birthday",` +
		`"departure_airport","arrival_airport","departure_date","return_date","adult_passengers"],` +
		`"content":"Sure, I can help you change your booking."}`
	verificationReply := "Good news - I found your booking: BA from LHR to JFK on 05.03.2026 at 10:30, 540.00 USD. What would you like to change?"

	client := llm.NewMockClient("").WithResponses(
		classifierJSON,
		verificationReply,
		"no filters from me", // forces the keyword heuristics
	)

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
	store.AddAlternative(records.AlternativeOption{
		AirlineCode: "VS", DepartureAirport: "LHR", ArrivalAirport: "JFK",
		DepartureDate: "05.03.2026", DepartureTime: "08:05", PriceUSD: 480,
	})
	store.AddAlternative(records.AlternativeOption{
		AirlineCode: "BA", DepartureAirport: "LHR", ArrivalAirport: "JFK",
		DepartureDate: "05.03.2026", DepartureTime: "14:40", PriceUSD: 425,
	})
	store.AddAlternative(records.AlternativeOption{
		AirlineCode: "AA", DepartureAirport: "LHR", ArrivalAirport: "JFK",
		DepartureDate: "05.03.2026", DepartureTime: "11:15", PriceUSD: 560,
	})

	engine := newTestEngine(t, client, store)

	state := NewConversationState()
	turn := func(input string) TurnResult {
		t.Helper()
		var (
			result TurnResult
			err    error
		)
		state, result, err = engine.Turn(testCtx(), state, input)
		require.NoError(t, err, "turn %q", input)
		return result
	}

	// Opening message: classified, collection queue seeded, first question asked.
	result := turn("I want to change my flight")
	assert.Equal(t, StageAwait, result.Stage)
	assert.Contains(t, result.Response, "Sure, I can help you change your booking.")
	assert.Contains(t, result.Response, "ticket number")
	assert.Equal(t, IntentFlightChange, state.ActiveIntent)
	assert.Len(t, state.Missing, len(AllFields))

	// One field per turn, each answered reply asking for the next.
	result = turn("ABC1234567890")
	assert.Contains(t, result.Response, "full name")

	result = turn("John Doe")
	assert.Contains(t, result.Response, "date of birth")

	result = turn("19.10.1991")
	assert.Contains(t, result.Response, "departure airport")

	result = turn("LHR")
	assert.Contains(t, result.Response, "destination airport")

	result = turn("JFK")
	assert.Contains(t, result.Response, "departure date")

	result = turn("05.03.2026")
	assert.Contains(t, result.Response, "return date")

	result = turn("12.03.2026")
	assert.Contains(t, result.Response, "adult passengers")

	// The last answer drains the queue and flows straight into verification.
	result = turn("2")
	assert.Equal(t, StageAwait, result.Stage)
	assert.Equal(t, verificationReply, result.Response)
	assert.Equal(t, IntentSearchAlternative, state.ActiveIntent)
	assert.Empty(t, state.Missing)
	assert.Equal(t, "540.00", state.Collected["price_usd"])
	assert.Equal(t, "10:30", state.Collected["departure_time"])

	// Refinement: unusable LLM filters fall back to keyword heuristics, so the
	// search is booked-route, same-date, strictly cheaper than 540 USD.
	result = turn("I'd like a cheaper flight on the same dates")
	assert.Equal(t, StageAwait, result.Stage)
	assert.Contains(t, result.Response, "1) BA LHR to JFK on 05.03.2026 at 14:40, 425.00 USD")
	assert.Contains(t, result.Response, "2) VS LHR to JFK on 05.03.2026 at 08:05, 480.00 USD")
	assert.NotContains(t, result.Response, "AA")
	assert.NotContains(t, result.Response, "560.00")

	// Accepting the best match ends the session.
	result = turn("confirm")
	assert.True(t, result.Done)
	assert.Equal(t, StageTerminal, result.Stage)
	assert.Equal(t, confirmationMessage, result.Response)
	assert.Empty(t, state.ActiveIntent)

	// Exactly three completions: classify, phrase the verification outcome,
	// derive filters. Collection and confirmation never call the model.
	assert.Equal(t, 3, client.CallCount())
}

// TestAcceptance_SearchFlightConversation walks the one-off search flow:
// intent detection seeds only the trip fields, and the final answer yields a
// booking deep link and ends the session.
func TestAcceptance_SearchFlightConversation(t *testing.T) {
	classifierJSON := `{"intent":"search_flight",` +
		`"missing_info":["departure_airport","arrival_airport","departure_date","return_date","adult_passengers"],` +
		`"content":"Happy to find you a flight."}`
	client := llm.NewMockClient(classifierJSON)

	engine := newTestEngine(t, client, nil)

	state := NewConversationState()
	turn := func(input string) TurnResult {
		t.Helper()
		var (
			result TurnResult
			err    error
		)
		state, result, err = engine.Turn(testCtx(), state, input)
		require.NoError(t, err, "turn %q", input)
		return result
	}

	result := turn("I need a flight to New York")
	assert.Equal(t, StageAwait, result.Stage)
	assert.Contains(t, result.Response, "departure airport")
	assert.Equal(t, IntentSearchFlight, state.ActiveIntent)
	assert.Len(t, state.Missing, 5)

	// An ambiguous city suspends collection behind a clarification question.
	result = turn("London")
	assert.Contains(t, result.Response, "matches several airports")
	require.NotNil(t, state.Clarification)

	result = turn("1")
	assert.Contains(t, result.Response, "destination airport")
	assert.Equal(t, "LHR", state.Value(FieldDepartureAirport))
	assert.Nil(t, state.Clarification)

	result = turn("JFK")
	assert.Contains(t, result.Response, "departure date")

	result = turn("05.03.2026")
	assert.Contains(t, result.Response, "return date")

	result = turn("no return, one way")
	assert.Contains(t, result.Response, "adult passengers")
	assert.True(t, state.ReturnDeclined)

	result = turn("just me")
	assert.True(t, result.Done)
	assert.Equal(t, StageTerminal, result.Stage)
	assert.Equal(t, "https://www.skyscanner.net/transport/flights/lhr/jfk/260305/?adults=1", result.FlightURL)
	assert.Contains(t, result.Response, result.FlightURL)

	// Only the opening classification needed the model.
	assert.Equal(t, 1, client.CallCount())
}

// TestAcceptance_FailedVerificationRecovers verifies the fail-closed path is
// survivable: after a rejected lookup the identity fields are re-collected and
// a corrected name verifies on the second attempt.
func TestAcceptance_FailedVerificationRecovers(t *testing.T) {
	client := llm.NewMockClient("") // phrasing falls back to canned messages

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

	engine := newTestEngine(t, client, store)

	state := verifiedState()
	state.SetCollected(FieldPassengerName, "Jane Doe")

	state, result, err := engine.Turn(testCtx(), state, "that is everything")
	require.NoError(t, err)

	// Rejected: everything collected is discarded, identity is re-queued.
	assert.Equal(t, StageAwait, result.Stage)
	assert.Contains(t, result.Response, "could not find a booking")
	assert.Empty(t, state.Collected)
	assert.Equal(t, []FieldName{FieldTicketNumber, FieldPassengerBirthday, FieldPassengerName}, state.Missing)
	assert.Equal(t, IntentFlightChange, state.ActiveIntent)

	turn := func(input string) TurnResult {
		t.Helper()
		var r TurnResult
		state, r, err = engine.Turn(testCtx(), state, input)
		require.NoError(t, err, "turn %q", input)
		return r
	}

	result = turn("ABC1234567890")
	assert.Contains(t, result.Response, "date of birth")

	result = turn("19.10.1991")
	assert.Contains(t, result.Response, "full name")

	// The corrected name completes identity; verification runs in the same
	// turn and succeeds this time.
	result = turn("John Doe")
	assert.Equal(t, StageAwait, result.Stage)
	assert.Contains(t, result.Response, "I found your booking")
	assert.Equal(t, IntentSearchAlternative, state.ActiveIntent)
	assert.Equal(t, "540.00", state.Collected["price_usd"])
}
