package flightflow

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/randalmurphal/flightflow/pkg/flightflow/observability"
	"github.com/randalmurphal/flightflow/pkg/flightflow/records"
	"go.opentelemetry.io/otel/trace"
)

// TurnResult summarizes one processed turn.
type TurnResult struct {
	// Stage is the sentinel the turn ended on (StageAwait or StageTerminal).
	Stage Stage

	// Response is the assistant's reply for this turn. When a turn produced
	// several system messages they are joined with newlines.
	Response string

	// FlightURL is a booking deep link, if the turn produced one.
	FlightURL string

	// Done reports whether the session ended.
	Done bool
}

// Turn processes one user message against the given state.
//
// The input state is cloned, never mutated; the returned state is the new
// truth the caller should persist. Handler failures never fail the turn:
// the error becomes a system message, the turn suspends at StageAwait, and
// collected fields survive so the user can retry without re-entering data.
// An error is returned only for unusable arguments.
//
// Example:
//
//	ctx := flightflow.NewContext(context.Background(),
//	    flightflow.WithSessionID(sessionID))
//	state, result, err := engine.Turn(ctx, state, userMessage)
func (e *Engine) Turn(ctx Context, state ConversationState, input string) (ConversationState, TurnResult, error) {
	if ctx == nil {
		return state, TurnResult{}, ErrNilContext
	}
	if strings.TrimSpace(input) == "" {
		return state, TurnResult{}, ErrEmptyMessage
	}

	state = state.Clone()
	if state.Collected == nil {
		state.Collected = make(map[string]string)
	}
	state.Append(Message{Content: input, Sender: SenderUser})

	startTime := time.Now()
	observability.LogTurnStart(ctx.Logger(), ctx.SessionID())

	var execCtx context.Context = ctx
	var turnSpan trace.Span
	if e.tracing {
		execCtx, turnSpan = e.spans.StartTurnSpan(ctx, ctx.SessionID())
	}

	// System messages appended from here on form this turn's reply.
	replyFrom := len(state.Messages)

	var (
		end     Stage
		turnErr error
		steps   int
	)
	if entry := e.entryStage(state); entry == StageTerminal {
		state.AppendSystem(handoffMessage)
		end = StageTerminal
	} else {
		state, end, steps, turnErr = e.runStages(execCtx, ctx, state, entry)
	}

	if turnErr != nil {
		// Collected and missing fields survive so the user can retry
		// without re-entering validated data.
		state.AppendSystem(failureMessage(turnErr))
		end = StageAwait
	}
	if end == StageTerminal {
		state.ActiveIntent = ""
		state.Clarification = nil
	}

	duration := time.Since(startTime)
	e.metrics.RecordTurn(ctx, turnErr == nil, duration)
	if e.tracing {
		e.spans.EndSpanWithError(turnSpan, turnErr)
	}

	result := TurnResult{Stage: end, Done: end == StageTerminal}
	var parts []string
	for _, m := range state.Messages[replyFrom:] {
		if m.Sender != SenderSystem {
			continue
		}
		parts = append(parts, m.Content)
		if m.FlightURL != "" {
			result.FlightURL = m.FlightURL
		}
	}
	result.Response = strings.Join(parts, "\n")

	durationMs := float64(duration.Milliseconds())
	if turnErr != nil {
		observability.LogTurnError(ctx.Logger(), ctx.SessionID(), turnErr, durationMs, string(end))
	} else {
		observability.LogTurnComplete(ctx.Logger(), ctx.SessionID(), string(end), durationMs, steps)
	}

	return state, result, nil
}

// runStages walks the stage loop until a sentinel is reached.
// Returns the state, the sentinel, the number of stages executed, and the
// first stage error, if any.
func (e *Engine) runStages(tracingCtx context.Context, ctx Context, state ConversationState, current Stage) (ConversationState, Stage, int, error) {
	steps := 0
	for !current.terminal() {
		if steps >= e.maxSteps {
			return state, StageAwait, steps, fmt.Errorf("%w: stopped at %s after %d steps", ErrMaxSteps, current, steps)
		}

		// A cancelled or timed-out turn degrades to the generic error path
		// rather than leaving the session stage ambiguous.
		select {
		case <-ctx.Done():
			return state, StageAwait, steps, &StageError{Stage: current, Err: ctx.Err()}
		default:
		}

		sctx := stageContext(ctx, current)
		observability.LogStageStart(sctx.Logger(), string(current))

		stageTracingCtx := tracingCtx
		var stageSpan trace.Span
		if e.tracing {
			stageTracingCtx, stageSpan = e.spans.StartStageSpan(tracingCtx, string(current))
		}

		stageStart := time.Now()
		var stageErr error
		state, stageErr = e.executeStage(sctx, current, state)
		stageDuration := time.Since(stageStart)

		e.metrics.RecordStageExecution(stageTracingCtx, string(current), stageDuration, stageErr)
		if e.tracing {
			e.spans.EndSpanWithError(stageSpan, stageErr)
		}

		if stageErr != nil {
			observability.LogStageError(sctx.Logger(), string(current), stageErr)
			return state, StageAwait, steps, stageErr
		}
		observability.LogStageComplete(sctx.Logger(), string(current), float64(stageDuration.Milliseconds()))
		steps++

		next := e.routers[current](sctx, state)
		if !next.terminal() {
			if _, ok := e.handlers[next]; !ok {
				return state, StageAwait, steps, &StageError{Stage: next, Err: ErrStageNotFound}
			}
		}
		current = next
	}
	return state, current, steps, nil
}

// executeStage runs a single stage handler with panic recovery.
// A panicking handler never crashes the session; the panic is wrapped and
// the pre-stage state is returned.
func (e *Engine) executeStage(ctx Context, stage Stage, state ConversationState) (result ConversationState, err error) {
	h := e.handlers[stage]

	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				Stage: stage,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	result, err = h(ctx, state)
	if err != nil {
		return result, &StageError{Stage: stage, Err: err}
	}
	return result, nil
}

// failureMessage maps an internal error to the user-facing reply appended on
// the error path.
func failureMessage(err error) string {
	var lookup *LookupFailure
	switch {
	case errors.As(err, &lookup), errors.Is(err, records.ErrStoreClosed):
		return "I could not reach the booking system just now. Your details are saved - please try again in a moment."
	case errors.Is(err, ErrMaxSteps):
		return "I got stuck processing that request. Your details are saved - could you rephrase it?"
	default:
		return "Sorry, something went wrong on our side. Your details are saved - please try again."
	}
}
