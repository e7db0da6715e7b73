package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMockClient_CyclesResponses returns scripted responses in order and
// wraps around.
func TestMockClient_CyclesResponses(t *testing.T) {
	m := NewMockClient("").WithResponses("a", "b")
	ctx := context.Background()

	for _, want := range []string{"a", "b", "a"} {
		resp, err := m.Complete(ctx, CompletionRequest{})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content)
	}
	assert.Equal(t, 3, m.CallCount())
}

// TestMockClient_RecordsCalls captures every request for inspection.
func TestMockClient_RecordsCalls(t *testing.T) {
	m := NewMockClient("ok")
	ctx := context.Background()

	_, err := m.Complete(ctx, CompletionRequest{SystemPrompt: "first"})
	require.NoError(t, err)
	_, err = m.Complete(ctx, CompletionRequest{SystemPrompt: "second"})
	require.NoError(t, err)

	require.NotNil(t, m.LastCall())
	assert.Equal(t, "second", m.LastCall().SystemPrompt)
	assert.Len(t, m.Calls, 2)
}

// TestMockClient_Error fails every call once configured.
func TestMockClient_Error(t *testing.T) {
	boom := errors.New("provider down")
	m := NewMockClient("ok").WithError(boom)

	_, err := m.Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.CallCount())
}
