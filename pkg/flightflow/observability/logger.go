// Package observability provides structured logging, metrics, and tracing
// helpers for flightflow.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds conversation context to a logger.
// Returns a new logger with session_id and stage fields.
func EnrichLogger(logger *slog.Logger, sessionID, stage string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("session_id", sessionID),
		slog.String("stage", stage),
	)
}

// LogTurnStart logs the start of a conversation turn.
func LogTurnStart(logger *slog.Logger, sessionID string) {
	if logger == nil {
		return
	}
	logger.Info("turn starting",
		slog.String("session_id", sessionID),
	)
}

// LogTurnComplete logs successful turn completion.
func LogTurnComplete(logger *slog.Logger, sessionID, finalStage string, durationMs float64, stageCount int) {
	if logger == nil {
		return
	}
	logger.Info("turn completed",
		slog.String("session_id", sessionID),
		slog.String("final_stage", finalStage),
		slog.Float64("duration_ms", durationMs),
		slog.Int("stages_executed", stageCount),
	)
}

// LogTurnError logs a turn that ended on the error path.
func LogTurnError(logger *slog.Logger, sessionID string, err error, durationMs float64, lastStage string) {
	if logger == nil {
		return
	}
	logger.Error("turn failed",
		slog.String("session_id", sessionID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_stage", lastStage),
	)
}

// LogStageStart logs stage execution start.
func LogStageStart(logger *slog.Logger, stage string) {
	if logger == nil {
		return
	}
	logger.Debug("stage starting",
		slog.String("stage", stage),
	)
}

// LogStageComplete logs successful stage completion.
func LogStageComplete(logger *slog.Logger, stage string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("stage completed",
		slog.String("stage", stage),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStageError logs stage execution error.
func LogStageError(logger *slog.Logger, stage string, err error) {
	if logger == nil {
		return
	}
	logger.Error("stage failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
