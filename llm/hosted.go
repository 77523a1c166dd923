package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fygarcia/AgentOS/config"
	"github.com/fygarcia/AgentOS/internal/httpclient"
)

// hostedCloudClient is a minimal Bearer-authenticated binding for a hosted
// chat-completion style endpoint. Concrete provider bindings are explicitly
// out of scope per spec §1; this exists only to satisfy the AgentConfig
// invariant that provider=hosted-cloud requires a usable Client.
type hostedCloudClient struct {
	baseURL    string
	apiKey     string
	httpClient *httpclient.Client
}

func newHostedCloudClient(cfg config.LLMConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, &Error{Kind: ErrModel, Message: "hosted-cloud provider requires an api key"}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &hostedCloudClient{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.ReasoningTimeoutSeconds) * time.Second}),
			httpclient.WithMaxRetries(3),
		),
	}, nil
}

type hostedCompletionRequest struct {
	Model           string `json:"model"`
	Prompt          string `json:"prompt"`
	ResponseFormat  *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type hostedCompletionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

func (c *hostedCloudClient) Generate(ctx context.Context, model, prompt string, jsonMode bool) (string, error) {
	payload := hostedCompletionRequest{Model: model, Prompt: prompt}
	if jsonMode {
		payload.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Kind: ErrProtocol, Message: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completions", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: ErrTransport, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Kind: ErrTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: ErrTransport, Message: "failed to read response body", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{Kind: ErrModel, Message: fmt.Sprintf("hosted backend returned status %d", resp.StatusCode)}
	}

	var out hostedCompletionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", &Error{Kind: ErrProtocol, Message: "failed to decode hosted response", Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &Error{Kind: ErrProtocol, Message: "hosted response had no choices"}
	}
	return out.Choices[0].Text, nil
}

func (c *hostedCloudClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	return nil, &Error{Kind: ErrModel, Message: "hosted-cloud embeddings not implemented"}
}
