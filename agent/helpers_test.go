package agent

import (
	"context"
	"errors"
)

// failingClient always errors, for exercising nodes' fail-open paths.
type failingClient struct{}

func (failingClient) Generate(ctx context.Context, model, prompt string, jsonMode bool) (string, error) {
	return "", errors.New("llm: simulated failure")
}

func (failingClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	return nil, errors.New("llm: simulated failure")
}
