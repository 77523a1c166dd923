package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetDefaultsZeroConfig(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	assert.Equal(t, ProviderLocalHTTP, cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "sqlite3", cfg.Memory.SQLDriver)
	assert.Equal(t, "chromem", cfg.Memory.VectorBackend)
	require.NoError(t, cfg.Validate())
}

func TestLLMConfigValidateLocalHTTPRequiresBaseURL(t *testing.T) {
	cfg := &LLMConfig{Provider: ProviderLocalHTTP, ReasoningTimeoutSeconds: 180, ParserTimeoutSeconds: 60}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "base_url")
}

func TestLLMConfigValidateHostedCloudRequiresAPIKey(t *testing.T) {
	cfg := &LLMConfig{Provider: ProviderHostedCloud, ReasoningTimeoutSeconds: 180, ParserTimeoutSeconds: 60}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "api_key")
}

func TestMemoryConfigRejectsUnknownVectorBackend(t *testing.T) {
	cfg := &MemoryConfig{VectorBackend: "pinecone"}
	cfg.SetDefaults()
	cfg.VectorBackend = "pinecone"
	assert.Error(t, cfg.Validate())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("AGENTOS_BASE_URL", "http://example.test")
	assert.Equal(t, "http://example.test", expandEnvVars("${AGENTOS_BASE_URL}"))
	assert.Equal(t, "fallback", expandEnvVars("${AGENTOS_MISSING:-fallback}"))
	assert.Equal(t, "http://example.test", expandEnvVars("$AGENTOS_BASE_URL"))
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderLocalHTTP, cfg.LLM.Provider)
}
