package flightflow

import "github.com/randalmurphal/flightflow/pkg/flightflow/observability"

// defaultMaxSteps bounds internal stage transitions within a single turn.
// A well-formed turn traverses at most a handful of stages; hitting the limit
// indicates a routing cycle.
const defaultMaxSteps = 20

// Option configures an Engine.
type Option func(*Engine)

// WithMaxSteps sets the maximum internal stage transitions per turn.
// Default: 20.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithMetrics enables metrics collection with the given recorder.
//
// Example:
//
//	engine, err := flightflow.New(client, store,
//	    flightflow.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithTracing enables distributed tracing with the given span manager.
// A turn span wraps the whole turn with one child span per stage.
func WithTracing(s observability.SpanManager) Option {
	return func(e *Engine) {
		if s != nil {
			e.spans = s
			e.tracing = true
		}
	}
}

// WithAirportResolver replaces the built-in city-to-IATA resolver.
func WithAirportResolver(r AirportResolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithStage registers a custom stage. New stages slot into the flow by
// returning their name from an existing router and routing onward themselves.
// Registering an existing stage name replaces its handler and router.
func WithStage(stage Stage, h Handler, r RouterFunc) Option {
	return func(e *Engine) {
		e.handlers[stage] = h
		e.routers[stage] = r
	}
}
