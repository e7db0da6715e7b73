package flightflow

import "strings"

// confirmationMessage closes a successfully changed booking.
const confirmationMessage = "Your flight change is confirmed. The updated itinerary will arrive by email shortly. Thank you, and have a good flight!"

// handleConfirmation inspects the reply to a shown set of alternatives.
// A confirmation ends the session; anything else is treated as a refined
// change request and routed back into the alternatives search.
func (e *Engine) handleConfirmation(_ Context, state ConversationState) (ConversationState, error) {
	if msg, ok := state.LastUserMessage(); ok && isConfirmation(msg.Content) {
		state.AppendSystem(confirmationMessage)
	}
	return state, nil
}

// isConfirmation reports whether the message accepts an offered option.
func isConfirmation(content string) bool {
	lower := strings.ToLower(strings.TrimSpace(content))
	for _, phrase := range []string{
		"confirm", "book it", "take it", "i'll take", "i will take",
		"that works", "sounds good", "yes please", "go ahead",
	} {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return lower == "yes" || lower == "ok" || lower == "okay"
}
