package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records flightflow metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordStageExecution records a stage execution with its duration and error status.
	RecordStageExecution(ctx context.Context, stage string, duration time.Duration, err error)

	// RecordTurn records a conversation turn completion.
	RecordTurn(ctx context.Context, success bool, duration time.Duration)

	// RecordTicketLookup records a ticket record lookup and whether it matched.
	RecordTicketLookup(ctx context.Context, found bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	stageExecutions metric.Int64Counter
	stageLatency    metric.Float64Histogram
	stageErrors     metric.Int64Counter
	turns           metric.Int64Counter
	turnLatency     metric.Float64Histogram
	ticketLookups   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("flightflow")

	stageExecutions, err := meter.Int64Counter("flightflow.stage.executions",
		metric.WithDescription("Number of stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageLatency, err := meter.Float64Histogram("flightflow.stage.latency_ms",
		metric.WithDescription("Stage execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter("flightflow.stage.errors",
		metric.WithDescription("Number of stage execution errors"),
	)
	if err != nil {
		return nil, err
	}

	turns, err := meter.Int64Counter("flightflow.turn.count",
		metric.WithDescription("Number of conversation turns"),
	)
	if err != nil {
		return nil, err
	}

	turnLatency, err := meter.Float64Histogram("flightflow.turn.latency_ms",
		metric.WithDescription("Conversation turn latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	ticketLookups, err := meter.Int64Counter("flightflow.ticket.lookups",
		metric.WithDescription("Number of ticket record lookups"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		stageExecutions: stageExecutions,
		stageLatency:    stageLatency,
		stageErrors:     stageErrors,
		turns:           turns,
		turnLatency:     turnLatency,
		ticketLookups:   ticketLookups,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordStageExecution records a stage execution.
func (m *otelMetrics) RecordStageExecution(ctx context.Context, stage string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("stage", stage),
	}

	m.stageExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.stageLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.stageErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordTurn records a conversation turn.
func (m *otelMetrics) RecordTurn(ctx context.Context, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.turns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.turnLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordTicketLookup records a ticket record lookup.
func (m *otelMetrics) RecordTicketLookup(ctx context.Context, found bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("found", found),
	}
	m.ticketLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}
