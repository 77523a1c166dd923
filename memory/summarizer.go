package memory

import (
	"context"
	"fmt"

	"github.com/fygarcia/AgentOS/llm"
)

// LLMSummarizer generates a compaction summary via the configured
// reasoning-class LLM (spec §4.2 Open Question #3: summary generation is
// delegated out of the memory core to keep it self-contained and
// testable with a fake Summarizer).
type LLMSummarizer struct {
	client llm.Client
	model  string
}

// NewLLMSummarizer constructs a Summarizer backed by client/model.
func NewLLMSummarizer(client llm.Client, model string) *LLMSummarizer {
	return &LLMSummarizer{client: client, model: model}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, logContent string) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize the following activity log into a concise paragraph capturing what was "+
			"accomplished, what failed, and what remains outstanding. Do not invent details not "+
			"present in the log.\n\n%s", logContent,
	)
	summary, err := s.client.Generate(ctx, s.model, prompt, false)
	if err != nil {
		return "", fmt.Errorf("memory: summarize log: %w", err)
	}
	return summary, nil
}

var _ Summarizer = (*LLMSummarizer)(nil)
