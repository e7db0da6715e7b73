package flightflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine construction.
var (
	// ErrNilLLM indicates New() was called without an LLM client.
	ErrNilLLM = errors.New("llm client cannot be nil")

	// ErrNilRecords indicates New() was called without a record store.
	ErrNilRecords = errors.New("record store cannot be nil")

	// ErrStageNotFound indicates a route references an unregistered stage.
	ErrStageNotFound = errors.New("stage not found")

	// ErrNoRoute indicates a stage has no outgoing route.
	ErrNoRoute = errors.New("no route from stage")
)

// Sentinel errors for turn execution.
var (
	// ErrNilContext indicates Turn() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrEmptyMessage indicates Turn() was called with an empty user message.
	ErrEmptyMessage = errors.New("user message cannot be empty")

	// ErrMaxSteps indicates a single turn exceeded the internal step limit.
	ErrMaxSteps = errors.New("exceeded maximum steps in turn")
)

// ValidationError reports a user-supplied field value that failed its format
// contract. It is recovered locally: the field stays missing and the user is
// re-prompted.
type ValidationError struct {
	// Field is the field being collected.
	Field FieldName
	// Input is the rejected raw input.
	Input string
	// Reason is a user-facing explanation of the failure.
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

// StageError wraps an error with the stage where it occurred.
type StageError struct {
	// Stage is the stage whose handler failed.
	Stage Stage
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic from a stage handler.
// Panics are recovered at the engine boundary and never crash a session.
type PanicError struct {
	// Stage is the stage whose handler panicked.
	Stage Stage
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.Stage, e.Value)
}

// LookupFailure indicates the record store was unreachable during a stage.
// It surfaces as a user-facing message; the session remains resumable.
type LookupFailure struct {
	// Op is the store operation that failed.
	Op string
	// Err is the underlying store error.
	Err error
}

// Error implements the error interface.
func (e *LookupFailure) Error() string {
	return fmt.Sprintf("record lookup %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LookupFailure) Unwrap() error {
	return e.Err
}
