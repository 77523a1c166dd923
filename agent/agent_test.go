package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fygarcia/AgentOS/config"
	"github.com/fygarcia/AgentOS/skill"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Memory.AgentsRoot = t.TempDir()
	cfg.Skill.CoreSkillsRoot = t.TempDir()
	cfg.LLM.Provider = config.ProviderMock
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestAgentInitializeWiresRegistryAndMemory(t *testing.T) {
	a := New("helper", "a helper agent", newTestConfig(t))

	require.NoError(t, a.Initialize(context.Background(), skill.NewExecutors()))
	assert.NotNil(t, a.Registry())
	assert.NotNil(t, a.Memory())
}

func TestAgentInitializeIsIdempotent(t *testing.T) {
	a := New("helper", "a helper agent", newTestConfig(t))
	require.NoError(t, a.Initialize(context.Background(), skill.NewExecutors()))

	registryBefore := a.Registry()
	require.NoError(t, a.Initialize(context.Background(), skill.NewExecutors()))
	assert.Same(t, registryBefore, a.Registry())
}

func TestAgentRunBeforeInitializeFails(t *testing.T) {
	a := New("helper", "a helper agent", newTestConfig(t))

	_, err := a.Run(context.Background(), "hello")
	require.Error(t, err)
}

func TestAgentRunWithMockProviderTerminatesWithoutPanic(t *testing.T) {
	a := New("helper", "a helper agent", newTestConfig(t))
	require.NoError(t, a.Initialize(context.Background(), skill.NewExecutors()))

	// The mock LLM provider's fallback response is not valid JSON, so the
	// Classifier fails open to TASK and the Planner's Stage-2 structuring
	// call fails schema validation — the run still terminates cleanly
	// with an empty plan rather than propagating an error (spec §7
	// "plan-invalid").
	result, err := a.Run(context.Background(), "do something")
	require.NoError(t, err)
	assert.Empty(t, result.Plan)
}
