package flightflow

// Stage is a named step in the conversation flow.
type Stage string

// The fixed stage set. StageAwait and StageTerminal are sentinels: reaching
// either ends the turn loop. StageAwait suspends the turn (the session
// continues with the next user message), StageTerminal ends the session.
const (
	StageIntentDetection Stage = "intent_detection"
	StageInfoCollection  Stage = "info_collection"
	StageVerification    Stage = "verification"
	StageAlternatives    Stage = "alternatives_search"
	StageConfirmation    Stage = "confirmation"
	StageAwait           Stage = "awaiting_user_input"
	StageTerminal        Stage = "terminal"
)

// terminal reports whether the stage ends the turn loop.
func (s Stage) terminal() bool {
	return s == StageAwait || s == StageTerminal
}

// Handler processes one stage. It receives the execution context and current
// state and returns the updated state.
//
// State is passed by value. Handlers modify and return a new state value; they
// must not rely on pointer mutation.
type Handler func(ctx Context, state ConversationState) (ConversationState, error)

// RouterFunc picks the next stage after a handler ran.
// Returning StageAwait suspends the turn; StageTerminal ends the session.
type RouterFunc func(ctx Context, state ConversationState) Stage
