package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// MockClient returns deterministic canned outputs keyed by a fingerprint of
// the prompt, for tests and for the `mock` AgentConfig provider (spec §4.1).
type MockClient struct {
	mu        sync.RWMutex
	fixtures  map[string]string
	fallback  string
	embedding []float32
}

// NewMockClient builds a MockClient. fallback is returned for any prompt
// without a registered fixture.
func NewMockClient(fallback string) *MockClient {
	return &MockClient{
		fixtures: make(map[string]string),
		fallback: fallback,
		embedding: []float32{0.1, 0.2, 0.3},
	}
}

// Fingerprint hashes a prompt to the key used to register/look up fixtures.
func Fingerprint(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])[:16]
}

// SetFixture registers a canned response for an exact prompt.
func (m *MockClient) SetFixture(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixtures[Fingerprint(prompt)] = response
}

// SetEmbedding overrides the vector returned by Embed.
func (m *MockClient) SetEmbedding(v []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedding = v
}

func (m *MockClient) Generate(ctx context.Context, model, prompt string, jsonMode bool) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if resp, ok := m.fixtures[Fingerprint(prompt)]; ok {
		return resp, nil
	}
	return m.fallback, nil
}

func (m *MockClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float32, len(m.embedding))
	copy(out, m.embedding)
	return out, nil
}
