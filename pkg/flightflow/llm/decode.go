package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeError reports unparsable model output.
// Callers decide the fallback; the raw output is preserved for logging.
type DecodeError struct {
	// Raw is the model output that failed to decode.
	Raw string
	// Err is the underlying JSON error.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode llm output: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeJSON parses a JSON object out of model output into v.
//
// This is the single decode step for every LLM boundary: it tolerates
// markdown code fences and prose around the object, but a missing or
// malformed object yields a DecodeError - never a panic, and callers must
// map it to their canonical fallback value instead of propagating it into
// routing logic.
func DecodeJSON(raw string, v any) error {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return &DecodeError{Raw: raw, Err: fmt.Errorf("no JSON object found")}
	}

	if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
		return &DecodeError{Raw: raw, Err: err}
	}
	return nil
}

// stripFences removes markdown code fences like ```json ... ```.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
