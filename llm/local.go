package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fygarcia/AgentOS/internal/httpclient"
)

// LocalClient talks to a local HTTP model server speaking the
// generate/embeddings protocol (spec §4.1, §6). It keeps two separate
// HTTP clients because reasoning-class and parser-class calls carry
// different timeout floors (spec §4.1: reasoning >=120s, parser >=30s) —
// a single shared client would either starve parser calls or let a
// stuck reasoning call run far past what the parser floor implies.
type LocalClient struct {
	baseURL         string
	reasoningClient *httpclient.Client
	parserClient    *httpclient.Client
}

// NewLocalClient builds a LocalClient. baseURL has any trailing /v1 or /api
// stripped, per spec §6. jsonMode requests (the parser-class path: the
// Classifier, Auditor, and planner structuring stage all call Generate
// with jsonMode=true) use parserTimeout; everything else uses
// reasoningTimeout.
func NewLocalClient(baseURL string, reasoningTimeout, parserTimeout time.Duration) *LocalClient {
	baseURL = strings.TrimSuffix(baseURL, "/v1")
	baseURL = strings.TrimSuffix(baseURL, "/api")
	baseURL = strings.TrimSuffix(baseURL, "/")

	newClient := func(timeout time.Duration) *httpclient.Client {
		return httpclient.New(
			httpclient.WithHTTPClient(&http.Client{Timeout: timeout}),
			httpclient.WithMaxRetries(3),
			httpclient.WithBaseDelay(2*time.Second),
		)
	}

	return &LocalClient{
		baseURL:         baseURL,
		reasoningClient: newClient(reasoningTimeout),
		parserClient:    newClient(parserTimeout),
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate implements Client.Generate against POST {base}/api/generate.
func (c *LocalClient) Generate(ctx context.Context, model, prompt string, jsonMode bool) (string, error) {
	payload := generateRequest{Model: model, Prompt: prompt, Stream: false}
	if jsonMode {
		payload.Format = "json"
	}

	client := c.reasoningClient
	if jsonMode {
		client = c.parserClient
	}

	body, err := c.post(ctx, client, "/api/generate", payload)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{Kind: ErrProtocol, Message: "failed to decode generate response", Err: err}
	}
	return resp.Response, nil
}

type embeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingsResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed implements Client.Embed against POST {base}/api/embeddings.
func (c *LocalClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	body, err := c.post(ctx, c.parserClient, "/api/embeddings", embeddingsRequest{Model: model, Prompt: text})
	if err != nil {
		return nil, err
	}

	var resp embeddingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Kind: ErrProtocol, Message: "failed to decode embeddings response", Err: err}
	}
	return resp.Embedding, nil
}

func (c *LocalClient) post(ctx context.Context, client *httpclient.Client, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: ErrProtocol, Message: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(data)))
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &Error{Kind: ErrTimeout, Message: "request timed out", Err: ctx.Err()}
		}
		return nil, &Error{Kind: ErrTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: ErrModel, Message: fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, string(respBody))}
	}

	return respBody, nil
}
