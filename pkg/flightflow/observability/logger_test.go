package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}

// TestEnrichLogger adds session and stage fields.
func TestEnrichLogger(t *testing.T) {
	logger, buf := testLogger()

	EnrichLogger(logger, "s-1", "verification").Info("hello")

	out := buf.String()
	assert.Contains(t, out, "session_id=s-1")
	assert.Contains(t, out, "stage=verification")
}

// TestEnrichLogger_Nil passes a nil logger through.
func TestEnrichLogger_Nil(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "s-1", "verification"))
}

// TestTurnLogging covers the turn lifecycle log lines.
func TestTurnLogging(t *testing.T) {
	logger, buf := testLogger()

	LogTurnStart(logger, "s-1")
	assert.Contains(t, buf.String(), "turn starting")
	buf.Reset()

	LogTurnComplete(logger, "s-1", "awaiting_user_input", 12.5, 3)
	out := buf.String()
	assert.Contains(t, out, "turn completed")
	assert.Contains(t, out, "final_stage=awaiting_user_input")
	assert.Contains(t, out, "stages_executed=3")
	buf.Reset()

	LogTurnError(logger, "s-1", errors.New("boom"), 4, "verification")
	out = buf.String()
	assert.Contains(t, out, "turn failed")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "last_stage=verification")
}

// TestStageLogging covers the stage lifecycle log lines.
func TestStageLogging(t *testing.T) {
	logger, buf := testLogger()

	LogStageStart(logger, "info_collection")
	assert.Contains(t, buf.String(), "stage starting")
	buf.Reset()

	LogStageComplete(logger, "info_collection", 1.5)
	assert.Contains(t, buf.String(), "stage completed")
	buf.Reset()

	LogStageError(logger, "info_collection", errors.New("bad input"))
	out := buf.String()
	assert.Contains(t, out, "stage failed")
	assert.Contains(t, out, "bad input")
}

// TestNilLoggerSafe verifies every helper tolerates a nil logger.
func TestNilLoggerSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		LogTurnStart(nil, "s")
		LogTurnComplete(nil, "s", "x", 1, 1)
		LogTurnError(nil, "s", errors.New("e"), 1, "x")
		LogStageStart(nil, "x")
		LogStageComplete(nil, "x", 1)
		LogStageError(nil, "x", errors.New("e"))
	})
}

// TestTimedOperation returns a non-negative elapsed time.
func TestTimedOperation(t *testing.T) {
	elapsed := TimedOperation()
	assert.GreaterOrEqual(t, elapsed(), 0.0)
}
