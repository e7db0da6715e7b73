package flightflow

import "strings"

// entryStage picks the stage at which a turn re-enters the flow.
//
// Routing reads only state-level data (ActiveIntent, missing fields, pending
// clarification) plus the literal text of the new user message. Intent tags on
// old messages are never consulted, so a stale tag cannot steer a resumed
// conversation.
func (e *Engine) entryStage(state ConversationState) Stage {
	if msg, ok := state.LastUserMessage(); ok && isHandoffRequest(msg.Content) {
		return StageTerminal
	}

	switch {
	case state.ActiveIntent.IsFlightRequest():
		if state.Clarification != nil || len(state.Missing) > 0 {
			return StageInfoCollection
		}
		if state.ActiveIntent == IntentSearchFlight {
			return StageAlternatives
		}
		return StageVerification

	case state.ActiveIntent == IntentSearchAlternative:
		// A verified change request in flight. The confirmation stage decides
		// whether the reply accepts an option or refines the search.
		return StageConfirmation

	default:
		return StageIntentDetection
	}
}

// isHandoffRequest reports whether the user asked for a human assistant.
func isHandoffRequest(content string) bool {
	c := strings.ToLower(strings.TrimSpace(content))
	return strings.Contains(c, "human assistant") ||
		strings.Contains(c, "human agent") ||
		strings.Contains(c, "real person") ||
		c == "human"
}

// handoffMessage closes a session on an explicit human-handoff request.
const handoffMessage = "Of course. I am transferring you to a human assistant now. Thank you for your patience."

// routeIntentDetection routes after a user message has been classified.
func routeIntentDetection(_ Context, state ConversationState) Stage {
	if !state.ActiveIntent.IsFlightRequest() {
		return StageAwait
	}
	if len(state.Missing) > 0 {
		return StageInfoCollection
	}
	if state.ActiveIntent == IntentSearchFlight {
		return StageAlternatives
	}
	return StageVerification
}

// routeInfoCollection routes after a collection step.
func routeInfoCollection(_ Context, state ConversationState) Stage {
	if state.Clarification != nil || len(state.Missing) > 0 {
		return StageAwait
	}
	switch state.ActiveIntent {
	case IntentSearchFlight:
		return StageAlternatives
	case IntentFlightChange:
		return StageVerification
	}
	return StageAwait
}

// routeVerification always suspends: both outcomes ask the user for the
// next input (a change request after success, fresh identity after failure).
func routeVerification(_ Context, _ ConversationState) Stage {
	return StageAwait
}

// routeAlternatives routes after a search. A one-off flight search completes
// the flow; a change request waits for the user to pick or refine.
func routeAlternatives(_ Context, state ConversationState) Stage {
	if state.ActiveIntent == IntentSearchFlight {
		return StageTerminal
	}
	return StageAwait
}

// routeConfirmation either ends the session on an accepted option or re-runs
// the alternatives search with the user's refined request.
func routeConfirmation(_ Context, state ConversationState) Stage {
	if msg, ok := state.LastUserMessage(); ok && isConfirmation(msg.Content) {
		return StageTerminal
	}
	return StageAlternatives
}
