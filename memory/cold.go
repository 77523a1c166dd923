package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Recalled is one semantic-search hit returned by RecallMemory.
type Recalled struct {
	Content  string
	Metadata map[string]any
	Distance float32
}

func (m *Manager) collectionName() string {
	return fmt.Sprintf("%s_memory", m.agentName)
}

// StoreMemory embeds content and inserts it into the agent's COLD-tier
// collection, creating the collection on first insert (spec §4.2). If the
// backend is unavailable, the call degrades to a no-op with a warning —
// it must never raise.
func (m *Manager) StoreMemory(ctx context.Context, content string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := "memory_" + uuid.NewString()
	meta := metadataOrEmpty(metadata)
	meta["content"] = content

	return m.storeColdLocked(ctx, id, content, meta)
}

func (m *Manager) storeColdLocked(ctx context.Context, id, content string, metadata map[string]any) error {
	if m.vec == nil || m.embedder == nil {
		slog.Warn("memory: cold tier unavailable, store_memory is a no-op", "agent", m.agentName)
		return nil
	}

	vec, err := m.embedder.Embed(ctx, m.embedModel, content)
	if err != nil {
		slog.Warn("memory: embedding failed, store_memory is a no-op", "agent", m.agentName, "error", err)
		return nil
	}

	if err := m.vec.Upsert(ctx, m.collectionName(), id, vec, metadata); err != nil {
		slog.Warn("memory: cold store upsert failed", "agent", m.agentName, "error", err)
		return nil
	}
	return nil
}

// RecallMemory embeds query and returns the n nearest COLD-tier records
// (spec §4.2). Backend unavailability degrades to an empty result, never
// an error.
func (m *Manager) RecallMemory(ctx context.Context, query string, n int) []Recalled {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vec == nil || m.embedder == nil {
		return nil
	}
	if n <= 0 {
		n = 3
	}

	vec, err := m.embedder.Embed(ctx, m.embedModel, query)
	if err != nil {
		slog.Warn("memory: embedding failed, recall_memory returning empty", "agent", m.agentName, "error", err)
		return nil
	}

	results, err := m.vec.Search(ctx, m.collectionName(), vec, n)
	if err != nil {
		slog.Warn("memory: cold search failed, recall_memory returning empty", "agent", m.agentName, "error", err)
		return nil
	}

	out := make([]Recalled, 0, len(results))
	for _, r := range results {
		out = append(out, Recalled{Content: r.Content, Metadata: r.Metadata, Distance: 1 - r.Score})
	}
	return out
}

// marshalMetadata is a small helper used when a caller wants the facts
// section of format_context_for_prompt rendered as JSON.
func marshalMetadata(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
