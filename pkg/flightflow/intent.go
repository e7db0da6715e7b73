package flightflow

import (
	"strings"

	"github.com/randalmurphal/flightflow/pkg/flightflow/llm"
)

// apologyMessage is the canonical fallback reply when the classifier cannot
// produce a usable result or the request is out of scope.
const apologyMessage = "I'm sorry, I can only help with searching for flights or changing an existing booking. Could you rephrase your request?"

// classifierSystemPrompt instructs the model to emit a single JSON object.
// The decode step tolerates code fences and surrounding prose.
const classifierSystemPrompt = `You are an intent classifier for an airline assistant.
Classify the user's latest message into exactly one intent:
- "search_flight": the user wants to find and book a new flight.
- "flight_change": the user wants to change an existing booking.
- "other": anything else.

Respond with a single JSON object:
{"intent": "...", "missing_info": [...], "content": "..."}

"missing_info" lists the fields still needed, chosen only from:
ticket_number, passenger_name, passenger_birthday, departure_airport,
arrival_airport, departure_date, return_date, adult_passengers.
For "flight_change" all eight are needed; for "search_flight" only the
trip fields (no ticket or passenger identity). Omit fields the user
already provided.

"content" is a short friendly reply acknowledging the request.`

// classification is the schema of the classifier's JSON output.
type classification struct {
	Intent      string   `json:"intent"`
	MissingInfo []string `json:"missing_info"`
	Content     string   `json:"content"`
}

// handleIntentDetection classifies the latest user message and seeds the
// collection queue.
//
// Classification is a pure function of message content: intent tags on prior
// messages are never fed to the model and never read here. Any LLM or decode
// failure degrades to the "other" intent with the canonical apology.
func (e *Engine) handleIntentDetection(ctx Context, state ConversationState) (ConversationState, error) {
	msg, ok := state.LastMessage()
	if !ok || msg.Sender != SenderUser {
		return state, nil
	}

	cls := e.classify(ctx, state)

	intent := Intent(cls.Intent)
	if !intent.IsFlightRequest() {
		state.ActiveIntent = ""
		content := strings.TrimSpace(cls.Content)
		if content == "" {
			content = apologyMessage
		}
		state.Append(Message{Content: content, Sender: SenderSystem, IntentTag: IntentOther})
		return state, nil
	}

	state.ActiveIntent = intent

	queued := 0
	for _, name := range cls.MissingInfo {
		f := FieldName(strings.TrimSpace(name))
		if !KnownField(string(f)) {
			continue
		}
		state.AddMissing(f)
		queued++
	}
	if queued == 0 && len(state.Missing) == 0 {
		// Classifier gave no usable list; fall back to the full
		// requirement set for the intent, minus what is collected.
		for _, f := range requiredFields(intent) {
			state.AddMissing(f)
		}
	}

	if content := strings.TrimSpace(cls.Content); content != "" {
		state.Append(Message{Content: content, Sender: SenderSystem, IntentTag: intent})
	}
	return state, nil
}

// classify runs the LLM classifier over the conversation content.
// Returns the fallback classification on any failure.
func (e *Engine) classify(ctx Context, state ConversationState) classification {
	fallback := classification{Intent: string(IntentOther), Content: apologyMessage}

	req := llm.CompletionRequest{
		SystemPrompt: classifierSystemPrompt,
		Messages:     conversationMessages(state),
		Temperature:  0,
	}

	resp, err := e.llm.Complete(ctx, req)
	if err != nil {
		ctx.Logger().Warn("intent classification failed, degrading to other",
			"error", err)
		return fallback
	}

	var cls classification
	if err := llm.DecodeJSON(resp.Content, &cls); err != nil {
		ctx.Logger().Warn("classifier output unparsable, degrading to other",
			"error", err)
		return fallback
	}
	return cls
}

// conversationMessages converts the log for an LLM request.
// Only content and sender cross the boundary; intent tags stay behind.
func conversationMessages(state ConversationState) []llm.Message {
	out := make([]llm.Message, 0, len(state.Messages))
	for _, m := range state.Messages {
		role := llm.RoleAssistant
		if m.Sender == SenderUser {
			role = llm.RoleUser
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}

// requiredFields is the full field requirement for an intent.
func requiredFields(i Intent) []FieldName {
	if i == IntentFlightChange {
		return AllFields
	}
	return []FieldName{
		FieldDepartureAirport,
		FieldArrivalAirport,
		FieldDepartureDate,
		FieldReturnDate,
		FieldAdultPassengers,
	}
}
