package flightflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flightflow/pkg/flightflow/llm"
	"github.com/randalmurphal/flightflow/pkg/flightflow/records"
)

// TestNew verifies an engine with valid collaborators constructs.
func TestNew(t *testing.T) {
	engine, err := New(llm.NewMockClient("{}"), records.NewMemoryStore())
	require.NoError(t, err)
	assert.NotNil(t, engine)
}

// TestNew_NilLLM fails construction.
func TestNew_NilLLM(t *testing.T) {
	_, err := New(nil, records.NewMemoryStore())
	assert.ErrorIs(t, err, ErrNilLLM)
}

// TestNew_NilRecords fails construction.
func TestNew_NilRecords(t *testing.T) {
	_, err := New(llm.NewMockClient("{}"), nil)
	assert.ErrorIs(t, err, ErrNilRecords)
}

// TestNew_JoinsErrors reports all problems at once.
func TestNew_JoinsErrors(t *testing.T) {
	_, err := New(nil, nil, WithMaxSteps(0))
	assert.ErrorIs(t, err, ErrNilLLM)
	assert.ErrorIs(t, err, ErrNilRecords)
	assert.ErrorContains(t, err, "max steps")
}

// TestNew_CustomStageWithoutRouter fails validation.
func TestNew_CustomStageWithoutRouter(t *testing.T) {
	noop := func(_ Context, s ConversationState) (ConversationState, error) { return s, nil }
	_, err := New(llm.NewMockClient("{}"), records.NewMemoryStore(),
		WithStage("loyalty_upsell", noop, nil))
	assert.ErrorIs(t, err, ErrNoRoute)
}

// TestNew_SentinelStage rejects handlers on sentinels.
func TestNew_SentinelStage(t *testing.T) {
	noop := func(_ Context, s ConversationState) (ConversationState, error) { return s, nil }
	router := func(_ Context, _ ConversationState) Stage { return StageAwait }
	_, err := New(llm.NewMockClient("{}"), records.NewMemoryStore(),
		WithStage(StageAwait, noop, router))
	assert.ErrorContains(t, err, "sentinel")
}
