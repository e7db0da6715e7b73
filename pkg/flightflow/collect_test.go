package flightflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flightflow/pkg/flightflow/llm"
	"github.com/randalmurphal/flightflow/pkg/flightflow/records"
)

// newTestEngine builds an engine with a scripted LLM and empty record store.
func newTestEngine(t *testing.T, client *llm.MockClient, store *records.MemoryStore, opts ...Option) *Engine {
	t.Helper()
	if client == nil {
		client = llm.NewMockClient("{}")
	}
	if store == nil {
		store = records.NewMemoryStore()
	}
	engine, err := New(client, store, opts...)
	require.NoError(t, err)
	return engine
}

// TestCollect_AllFields submits every field and checks the queue drains to
// exactly the submitted values.
func TestCollect_AllFields(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	for _, f := range AllFields {
		state.AddMissing(f)
	}

	inputs := map[FieldName]string{
		FieldTicketNumber:      "ABC1234567890",
		FieldPassengerName:     "John Doe",
		FieldPassengerBirthday: "19.10.1991",
		FieldDepartureAirport:  "LHR",
		FieldArrivalAirport:    "JFK",
		FieldDepartureDate:     "05.03.2026",
		FieldReturnDate:        "12.03.2026",
		FieldAdultPassengers:   "2",
	}

	var err error
	for _, f := range AllFields {
		state, err = engine.Collect(state, f, inputs[f])
		require.NoError(t, err, "field %s", f)
	}

	assert.Empty(t, state.Missing)
	assert.Len(t, state.Collected, len(AllFields))
	for f, want := range inputs {
		assert.Equal(t, want, state.Value(f))
	}
}

// TestCollect_Idempotent verifies resubmitting the same value changes nothing.
func TestCollect_Idempotent(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldTicketNumber)

	state, err := engine.Collect(state, FieldTicketNumber, "ABC1234567890")
	require.NoError(t, err)
	before := state.Clone()

	state, err = engine.Collect(state, FieldTicketNumber, "ABC1234567890")
	require.NoError(t, err)

	assert.Equal(t, before, state.Clone())
}

// TestCollect_ValidationFailure verifies no partial writes on bad input.
func TestCollect_ValidationFailure(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldTicketNumber)
	state.AddMissing(FieldPassengerName)

	updated, err := engine.Collect(state, FieldTicketNumber, "abc123")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldTicketNumber, verr.Field)
	assert.Equal(t, state, updated)
	assert.Equal(t, []FieldName{FieldTicketNumber, FieldPassengerName}, updated.Missing)
}

// TestCollect_BirthdayNormalization covers the year-first phrasing.
func TestCollect_BirthdayNormalization(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldPassengerBirthday)

	state, err := engine.Collect(state, FieldPassengerBirthday, "my birthday is 1991.10.19")
	require.NoError(t, err)

	assert.Equal(t, "19.10.1991", state.Value(FieldPassengerBirthday))
}

// TestCollect_DepartureDateRequeuesReturn verifies collecting a departure
// date re-inserts the return date when not collected and not declined.
func TestCollect_DepartureDateRequeuesReturn(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldDepartureDate)

	state, err := engine.Collect(state, FieldDepartureDate, "05.03.2026")
	require.NoError(t, err)

	assert.Contains(t, state.Missing, FieldReturnDate)
}

// TestCollect_DeclinedReturn verifies "no return" removes the field without
// collecting it, and departure dates stop re-queueing it.
func TestCollect_DeclinedReturn(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldReturnDate)
	state.AddMissing(FieldDepartureDate)

	state, err := engine.Collect(state, FieldReturnDate, "no return, one way")
	require.NoError(t, err)
	assert.True(t, state.ReturnDeclined)
	assert.False(t, state.IsCollected(FieldReturnDate))
	assert.NotContains(t, state.Missing, FieldReturnDate)

	state, err = engine.Collect(state, FieldDepartureDate, "05.03.2026")
	require.NoError(t, err)
	assert.NotContains(t, state.Missing, FieldReturnDate)
}

// TestCollect_AirportIATA accepts bare codes in any case.
func TestCollect_AirportIATA(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldDepartureAirport)

	state, err := engine.Collect(state, FieldDepartureAirport, "lhr")
	require.NoError(t, err)
	assert.Equal(t, "LHR", state.Value(FieldDepartureAirport))
}

// TestCollect_AirportCitySingleCandidate resolves an unambiguous city
// directly.
func TestCollect_AirportCitySingleCandidate(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldArrivalAirport)

	state, err := engine.Collect(state, FieldArrivalAirport, "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "BER", state.Value(FieldArrivalAirport))
	assert.Nil(t, state.Clarification)
}

// TestCollect_AirportCityAmbiguous suspends collection behind a
// clarification question.
func TestCollect_AirportCityAmbiguous(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldDepartureAirport)

	state, err := engine.Collect(state, FieldDepartureAirport, "London")
	require.NoError(t, err)

	require.NotNil(t, state.Clarification)
	assert.Equal(t, FieldDepartureAirport, state.Clarification.Field)
	assert.Equal(t, []string{"LHR", "LGW", "STN", "LTN"}, state.Clarification.Options)
	assert.False(t, state.IsCollected(FieldDepartureAirport))
	assert.Contains(t, state.Missing, FieldDepartureAirport)

	// Picking by number completes the collection.
	state, err = engine.applyClarification(state, "2")
	require.NoError(t, err)
	assert.Nil(t, state.Clarification)
	assert.Equal(t, "LGW", state.Value(FieldDepartureAirport))
	assert.NotContains(t, state.Missing, FieldDepartureAirport)
}

// TestCollect_AirportUnknownCity fails validation.
func TestCollect_AirportUnknownCity(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldDepartureAirport)

	_, err := engine.Collect(state, FieldDepartureAirport, "Atlantis")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldDepartureAirport, verr.Field)
}

// TestApplyClarification_BadPick re-prompts without collecting.
func TestApplyClarification_BadPick(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	state := NewConversationState()
	state.AddMissing(FieldDepartureAirport)
	state.Clarification = &Clarification{
		Field:   FieldDepartureAirport,
		Options: []string{"LHR", "LGW"},
	}

	updated, err := engine.applyClarification(state, "7")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotNil(t, updated.Clarification)
	assert.False(t, updated.IsCollected(FieldDepartureAirport))
}
