package flightflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context provides execution context to stage handlers.
// It extends context.Context with flow-specific services and metadata.
//
// Context is immutable after creation. The engine derives a context per stage
// with the stage name set and the logger enriched.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with session and stage
	// context. Never returns nil - defaults to slog.Default() if not configured.
	Logger() *slog.Logger

	// SessionID returns the identifier of the conversation being processed.
	// Auto-generated if not configured.
	SessionID() string

	// StageID returns the stage currently executing.
	// Empty string before the turn loop starts.
	StageID() string
}

// turnContext is the internal implementation of Context.
type turnContext struct {
	context.Context

	logger    *slog.Logger
	sessionID string
	stageID   string
}

// Logger returns the configured logger.
func (c *turnContext) Logger() *slog.Logger {
	return c.logger
}

// SessionID returns the session identifier.
func (c *turnContext) SessionID() string {
	return c.sessionID
}

// StageID returns the current stage identifier.
func (c *turnContext) StageID() string {
	return c.stageID
}

// ContextOption configures a Context.
type ContextOption func(*turnContext)

// WithLogger sets the logger for the context.
// The logger is enriched with session_id and stage during execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *turnContext) {
		c.logger = logger
	}
}

// WithSessionID sets the session identifier for the context.
// If not set, a UUID is auto-generated.
func WithSessionID(id string) ContextOption {
	return func(c *turnContext) {
		c.sessionID = id
	}
}

// NewContext creates an execution context from a standard context.
//
// Example:
//
//	ctx := flightflow.NewContext(context.Background(),
//	    flightflow.WithLogger(logger),
//	    flightflow.WithSessionID(sessionID))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	tc := &turnContext{
		Context:   ctx,
		logger:    slog.Default(),
		sessionID: uuid.New().String(),
	}

	for _, opt := range opts {
		opt(tc)
	}

	return tc
}

// withStage returns a derived context with the stage set and logger enriched.
func (c *turnContext) withStage(stage Stage) *turnContext {
	return &turnContext{
		Context:   c.Context,
		logger:    c.logger.With("session_id", c.sessionID, "stage", string(stage)),
		sessionID: c.sessionID,
		stageID:   string(stage),
	}
}

// stageContext adapts any Context for a specific stage. Foreign
// implementations pass through unchanged apart from metadata.
func stageContext(ctx Context, stage Stage) Context {
	if tc, ok := ctx.(*turnContext); ok {
		return tc.withStage(stage)
	}
	return ctx
}
