/*
Package flightflow implements the conversation engine behind a flight-change
assistant.

# Overview

A conversation is a sequence of turns. Each turn takes one user message and
walks a fixed stage machine (intent detection, info collection, verification,
alternatives search, confirmation) until it suspends waiting for the next
user message or ends the session. All conversation state lives in a
serializable ConversationState value, so the process can restart between
turns and resume purely from persisted state.

The engine is built around:
  - Copy-in/copy-out state: Turn clones the input state and returns the new one
  - Validation of the stage wiring at construction time
  - Panic recovery and per-turn failure isolation (no error kills a session)
  - OpenTelemetry integration for observability

# Basic Usage

Construct an engine with its collaborators, then feed it turns:

	client, err := llm.NewOpenAI(apiKey, "gpt-4o-mini")
	if err != nil {
	    log.Fatal(err)
	}
	store := records.NewMemoryStore()
	defer store.Close()

	engine, err := flightflow.New(client, store)
	if err != nil {
	    log.Fatal(err)
	}

	state := flightflow.NewConversationState()
	ctx := flightflow.NewContext(context.Background(),
	    flightflow.WithSessionID("session-123"))

	state, result, err := engine.Turn(ctx, state, "I want to change my flight")
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(result.Response)
	// Persist state; pass it back in on the next user message.

# Turn Lifecycle

Turn appends the user message, picks the entry stage from the persisted
state, and runs stage handlers until one suspends (StageAwait) or ends the
session (StageTerminal). A turn may traverse several stages internally; the
reply is the concatenation of the system messages the turn produced.

Handler errors never surface to the caller: the turn appends an explanatory
system message and suspends with collected fields intact, so the user can
retry without re-entering data. Panics are recovered the same way.

# Resuming

Routing on re-entry reads only state-level data: the active intent, the
missing-field queue and any pending airport clarification. Intent tags on
old messages are informational and never drive routing, so a stale tag
cannot wedge a resumed conversation.

# Custom Stages

The stage set is extensible. A custom stage registers a handler and a
router and is reached by returning its name from another router:

	engine, err := flightflow.New(client, store,
	    flightflow.WithStage("loyalty_upsell", handleUpsell, routeUpsell))

# Observability

Enable metrics and tracing at construction:

	engine, err := flightflow.New(client, store,
	    flightflow.WithMetrics(observability.NewMetricsRecorder()),
	    flightflow.WithTracing(observability.NewSpanManager()))

Logs include structured fields: session_id, stage, duration_ms.
OpenTelemetry metrics: flightflow.turn.count, flightflow.stage.latency_ms, etc.
OpenTelemetry tracing: flightflow.turn > flightflow.stage.{name} spans.

# Thread Safety

  - Engine IS safe for concurrent use (stateless between calls)
  - ConversationState is a value; callers must serialize turns per session
  - Context IS safe for concurrent use
  - records.Store and session.Store implementations are safe for concurrent use

# Subpackages

  - llm: LLM client interface, OpenAI implementation, mock
  - records: ticket and alternative-flight lookups (memory, Postgres)
  - session: session persistence between turns (memory, SQLite)
  - server: HTTP chat surface
  - config: environment configuration and logger setup
  - observability: logging, metrics, and tracing helpers
*/
package flightflow
