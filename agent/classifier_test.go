package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fygarcia/AgentOS/graph"
	"github.com/fygarcia/AgentOS/llm"
)

func TestClassifierNodeParsesValidJSON(t *testing.T) {
	mock := llm.NewMockClient(`{"intent_type":"QUESTION","reasoning":"asks for a fact"}`)
	n := NewClassifierNode(mock, "parser-model")

	state := graph.NewState("a", "What is the capital of France?", "", nil)
	update, err := n.Run(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, update.IntentType)
	assert.Equal(t, graph.IntentQuestion, *update.IntentType)
}

func TestClassifierNodeDefaultsToTaskOnUnparseableResponse(t *testing.T) {
	mock := llm.NewMockClient("not json")
	n := NewClassifierNode(mock, "parser-model")

	state := graph.NewState("a", "do something", "", nil)
	update, err := n.Run(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, update.IntentType)
	assert.Equal(t, graph.IntentTask, *update.IntentType)
}

func TestClassifierNodeDefaultsToTaskOnLLMError(t *testing.T) {
	n := NewClassifierNode(failingClient{}, "parser-model")

	state := graph.NewState("a", "do something", "", nil)
	update, err := n.Run(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, update.IntentType)
	assert.Equal(t, graph.IntentTask, *update.IntentType)
}

func TestClassifierNodeDefaultsToTaskOnUnrecognizedIntentType(t *testing.T) {
	mock := llm.NewMockClient(`{"intent_type":"BOGUS","reasoning":"?"}`)
	n := NewClassifierNode(mock, "parser-model")

	state := graph.NewState("a", "do something", "", nil)
	update, err := n.Run(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, update.IntentType)
	assert.Equal(t, graph.IntentTask, *update.IntentType)
}
