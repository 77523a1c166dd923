package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fygarcia/AgentOS/graph"
	"github.com/fygarcia/AgentOS/llm"
	"github.com/fygarcia/AgentOS/planner"
	"github.com/fygarcia/AgentOS/skill"
)

func TestPlannerNodeWritesValidatedPlan(t *testing.T) {
	validJSON := `{"objective":"create a file","plan":[{"role":"Actor","instruction":"create a.txt"},{"role":"Auditor","instruction":"verify a.txt"}],"total_steps":2}`
	mock := llm.NewMockClient(validJSON)
	registry := skill.NewRegistry("core", skill.NewExecutors())

	node := NewPlannerNode(planner.New(mock), "reasoning-model", "parser-model", registry)
	state := graph.NewState("a", "create a file", "some memory context", nil)

	update, err := node.Run(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, update.PlanSet)
	assert.Len(t, update.Plan, 2)
	require.NotNil(t, update.Objective)
	assert.Equal(t, "create a file", *update.Objective)
	require.NotNil(t, update.CurrentStepIndex)
	assert.Equal(t, 0, *update.CurrentStepIndex)
}

func TestPlannerNodeWritesEmptyPlanOnInvalidJSON(t *testing.T) {
	mock := llm.NewMockClient("not json at all")
	registry := skill.NewRegistry("core", skill.NewExecutors())

	node := NewPlannerNode(planner.New(mock), "reasoning-model", "parser-model", registry)
	state := graph.NewState("a", "create a file", "", nil)

	update, err := node.Run(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, update.PlanSet)
	assert.Empty(t, update.Plan)
}

func TestPlannerNodePrefersAgentInstanceRegistryOverFallback(t *testing.T) {
	validJSON := `{"objective":"x","plan":[{"role":"Actor","instruction":"do it"}],"total_steps":1}`
	mock := llm.NewMockClient(validJSON)

	fallback := skill.NewRegistry("core", skill.NewExecutors())
	node := NewPlannerNode(planner.New(mock), "reasoning-model", "parser-model", fallback)

	preferred := &stubRegistryProvider{registry: skill.NewRegistry("preferred", skill.NewExecutors())}
	state := graph.NewState("a", "do it", "", preferred)

	update, err := node.Run(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, update.PlanSet)
	assert.Positive(t, preferred.calls)
}

type stubRegistryProvider struct {
	registry *skill.Registry
	calls    int
}

func (s *stubRegistryProvider) Registry() *skill.Registry {
	s.calls++
	return s.registry
}
