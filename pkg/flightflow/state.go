package flightflow

// Sender identifies who produced a message.
type Sender string

// Message senders.
const (
	SenderUser   Sender = "user"
	SenderSystem Sender = "system"
)

// Intent is the coarse classification of the user's goal.
// It is recomputed from conversation content each time a user message is
// classified; values attached to old messages are never trusted for routing.
type Intent string

// Canonical intents.
const (
	IntentSearchFlight      Intent = "search_flight"
	IntentFlightChange      Intent = "flight_change"
	IntentSearchAlternative Intent = "search_alternative"
	IntentOther             Intent = "other"
)

// IsFlightRequest reports whether the intent starts a collection flow.
func (i Intent) IsFlightRequest() bool {
	return i == IntentSearchFlight || i == IntentFlightChange
}

// Message is a single entry in the conversation log.
// Messages are immutable once appended; the log is the source of truth for
// what happened in a session.
//
// IntentTag is informational output attached to system messages. Routing
// decisions read ConversationState.ActiveIntent instead, so a stale tag on an
// old message can never steer the flow.
type Message struct {
	Content   string `json:"content"`
	Sender    Sender `json:"sender"`
	IntentTag Intent `json:"intent_tag,omitempty"`
	FlightURL string `json:"flight_url,omitempty"`
}

// Clarification is a pending disambiguation sub-question for an airport field.
// It is set when a free-text city resolves to more than one IATA candidate and
// cleared once the user picks one.
type Clarification struct {
	Field    FieldName `json:"field"`
	Options  []string  `json:"options"`
	Question string    `json:"question"`
}

// ConversationState is the full state of one conversation.
//
// Invariant: a field name never appears in both Collected and Missing.
// SetCollected and AddMissing maintain this; code must not manipulate the two
// containers directly.
//
// State is serialized between turns, so every field must round-trip through
// JSON. Handlers receive a state value and return a new one; Clone() gives a
// deep copy so a turn's history stays inspectable and replayable.
type ConversationState struct {
	Messages  []Message         `json:"messages"`
	Collected map[string]string `json:"collected_fields"`
	Missing   []FieldName       `json:"missing_fields"`

	// ActiveIntent is the intent driving the current flow. Set by the
	// intent-detection and verification stages, cleared at terminal.
	ActiveIntent Intent `json:"active_intent,omitempty"`

	// Clarification holds an in-flight airport disambiguation, if any.
	Clarification *Clarification `json:"clarification,omitempty"`

	// ReturnDeclined records that the user said there is no return leg,
	// so departure_date collection must not re-add return_date.
	ReturnDeclined bool `json:"return_declined,omitempty"`
}

// NewConversationState creates an empty state for a fresh session.
func NewConversationState() ConversationState {
	return ConversationState{
		Collected: make(map[string]string),
	}
}

// Clone returns a deep copy of the state.
func (s ConversationState) Clone() ConversationState {
	out := s

	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)

	out.Collected = make(map[string]string, len(s.Collected))
	for k, v := range s.Collected {
		out.Collected[k] = v
	}

	out.Missing = make([]FieldName, len(s.Missing))
	copy(out.Missing, s.Missing)

	if s.Clarification != nil {
		c := *s.Clarification
		c.Options = make([]string, len(s.Clarification.Options))
		copy(c.Options, s.Clarification.Options)
		out.Clarification = &c
	}

	return out
}

// Append adds a message to the log.
func (s *ConversationState) Append(m Message) {
	s.Messages = append(s.Messages, m)
}

// AppendSystem adds a system message with the given content.
func (s *ConversationState) AppendSystem(content string) {
	s.Append(Message{Content: content, Sender: SenderSystem})
}

// LastMessage returns the most recent message, or false if the log is empty.
func (s ConversationState) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastUserMessage returns the most recent user message, or false if none.
func (s ConversationState) LastUserMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == SenderUser {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// IsCollected reports whether a value for the field has been collected.
func (s ConversationState) IsCollected(f FieldName) bool {
	_, ok := s.Collected[string(f)]
	return ok
}

// Value returns the collected value for a field, or "" if not collected.
func (s ConversationState) Value(f FieldName) string {
	return s.Collected[string(f)]
}

// SetCollected stores a field value and removes the field from Missing.
func (s *ConversationState) SetCollected(f FieldName, value string) {
	if s.Collected == nil {
		s.Collected = make(map[string]string)
	}
	s.Collected[string(f)] = value
	s.removeMissing(f)
}

// AddMissing queues a field for collection unless it is already queued or
// already collected. Order of insertion decides which field is asked for next.
func (s *ConversationState) AddMissing(f FieldName) {
	if s.IsCollected(f) {
		return
	}
	for _, m := range s.Missing {
		if m == f {
			return
		}
	}
	s.Missing = append(s.Missing, f)
}

// NextMissing returns the field to collect next, or false if nothing is missing.
func (s ConversationState) NextMissing() (FieldName, bool) {
	if len(s.Missing) == 0 {
		return "", false
	}
	return s.Missing[0], true
}

// ClearCollected wipes all collected values. Used by the fail-closed path
// after a rejected verification.
func (s *ConversationState) ClearCollected() {
	s.Collected = make(map[string]string)
}

// ResetMissing replaces the missing-field queue, dropping any field that is
// already collected.
func (s *ConversationState) ResetMissing(fields ...FieldName) {
	s.Missing = nil
	for _, f := range fields {
		s.AddMissing(f)
	}
}

func (s *ConversationState) removeMissing(f FieldName) {
	for i, m := range s.Missing {
		if m == f {
			s.Missing = append(s.Missing[:i], s.Missing[i+1:]...)
			return
		}
	}
}
