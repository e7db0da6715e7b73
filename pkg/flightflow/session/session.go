package session

import (
	"encoding/json"
	"time"
)

// Version is the current session record format version.
// Increment when making breaking changes to the record structure.
const Version = 1

// Session is the persisted envelope around a serialized ConversationState.
// It contains everything needed to resume the conversation after a restart.
type Session struct {
	Version   int       `json:"version"`
	SessionID string    `json:"session_id"`
	UpdatedAt time.Time `json:"updated_at"`

	// State is the serialized conversation state.
	State json.RawMessage `json:"state"`
}

// New creates a session record. State must already be JSON-serialized.
func New(sessionID string, state []byte) *Session {
	return &Session{
		Version:   Version,
		SessionID: sessionID,
		UpdatedAt: time.Now().UTC(),
		State:     state,
	}
}

// Marshal serializes a session record to JSON.
func (s *Session) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal deserializes a session record from JSON.
func Unmarshal(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
