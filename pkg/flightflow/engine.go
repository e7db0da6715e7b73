package flightflow

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/flightflow/pkg/flightflow/llm"
	"github.com/randalmurphal/flightflow/pkg/flightflow/observability"
	"github.com/randalmurphal/flightflow/pkg/flightflow/records"
)

// AirportResolver maps a free-text city name to candidate IATA codes.
// Zero candidates means the name is unknown; more than one triggers a
// disambiguation question before the field is considered collected.
type AirportResolver interface {
	Resolve(city string) []string
}

// Engine drives the conversation state machine.
//
// An Engine is stateless between calls: all conversation state lives in the
// ConversationState passed through Turn, so one Engine can serve many
// sessions concurrently. Construct with New, which validates the stage
// wiring up front.
type Engine struct {
	llm      llm.Client
	records  records.Store
	resolver AirportResolver

	handlers map[Stage]Handler
	routers  map[Stage]RouterFunc

	maxSteps int
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	tracing  bool
}

// New creates an Engine with the default stage set wired up.
// Returns an error if validation fails. Multiple errors are joined together.
//
// Validation checks:
//  1. LLM client must be non-nil
//  2. Record store must be non-nil
//  3. Every registered stage must have both a handler and a router
func New(client llm.Client, store records.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		llm:      client,
		records:  store,
		resolver: defaultResolver{},
		handlers: make(map[Stage]Handler),
		routers:  make(map[Stage]RouterFunc),
		maxSteps: defaultMaxSteps,
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}

	e.handlers[StageIntentDetection] = e.handleIntentDetection
	e.routers[StageIntentDetection] = routeIntentDetection

	e.handlers[StageInfoCollection] = e.handleInfoCollection
	e.routers[StageInfoCollection] = routeInfoCollection

	e.handlers[StageVerification] = e.handleVerification
	e.routers[StageVerification] = routeVerification

	e.handlers[StageAlternatives] = e.handleAlternatives
	e.routers[StageAlternatives] = routeAlternatives

	e.handlers[StageConfirmation] = e.handleConfirmation
	e.routers[StageConfirmation] = routeConfirmation

	for _, opt := range opts {
		opt(e)
	}

	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// validate checks the engine wiring. Multiple errors are joined together.
func (e *Engine) validate() error {
	var errs []error

	if e.llm == nil {
		errs = append(errs, ErrNilLLM)
	}
	if e.records == nil {
		errs = append(errs, ErrNilRecords)
	}
	if e.maxSteps < 1 {
		errs = append(errs, fmt.Errorf("max steps must be positive, got %d", e.maxSteps))
	}

	for stage, h := range e.handlers {
		if stage.terminal() {
			errs = append(errs, fmt.Errorf("stage %s is a sentinel and cannot have a handler", stage))
		}
		if h == nil {
			errs = append(errs, fmt.Errorf("%w: nil handler for %s", ErrStageNotFound, stage))
		}
		if e.routers[stage] == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoRoute, stage))
		}
	}
	for stage := range e.routers {
		if _, ok := e.handlers[stage]; !ok {
			errs = append(errs, fmt.Errorf("%w: router source %s has no handler", ErrStageNotFound, stage))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
