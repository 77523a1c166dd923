package llm

import (
	"fmt"
	"time"

	"github.com/fygarcia/AgentOS/config"
)

// New constructs a Client for the configured provider (spec §3 AgentConfig).
func New(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderLocalHTTP:
		reasoningTimeout := time.Duration(cfg.ReasoningTimeoutSeconds) * time.Second
		parserTimeout := time.Duration(cfg.ParserTimeoutSeconds) * time.Second
		return NewLocalClient(cfg.BaseURL, reasoningTimeout, parserTimeout), nil
	case config.ProviderMock:
		return NewMockClient("mock response"), nil
	case config.ProviderHostedCloud:
		return newHostedCloudClient(cfg)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
