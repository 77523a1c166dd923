package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// EntryType is the closed set of LOG.md entry kinds (spec §3 LogMetadata).
type EntryType string

const (
	EntryToolUse      EntryType = "TOOL_USE"
	EntryThought      EntryType = "THOUGHT"
	EntryUserFeedback EntryType = "USER_FEEDBACK"
	EntryError        EntryType = "ERROR"
	EntrySystem       EntryType = "SYSTEM"
)

// AppendLog appends a timestamped block to LOG.md and records its metadata
// row (spec §4.2). It does not check compaction eligibility itself; callers
// query CompactionEligible for that.
func (m *Manager) AppendLog(entryType EntryType, content string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLogLocked(entryType, content, metadata)
}

// appendLogLocked assumes m.mu is already held by the caller.
func (m *Manager) appendLogLocked(entryType EntryType, content string, metadata map[string]any) error {
	metaJSON, err := json.Marshal(metadataOrEmpty(metadata))
	if err != nil {
		return fmt.Errorf("memory: marshal log metadata: %w", err)
	}

	timestamp := nowISO()
	entry := fmt.Sprintf("\n## [%s] %s\n\n%s\n\nMetadata: %s\n\n---\n", entryType, timestamp, content, metaJSON)

	f, err := os.OpenFile(m.logPath(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("memory: open %s for append: %w", m.logPath(), err)
	}
	defer f.Close()
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("memory: append to %s: %w", m.logPath(), err)
	}

	hash := sha256.Sum256([]byte(content))
	contentHash := hex.EncodeToString(hash[:])[:16]
	tokenCount := estimateTokens(content)

	if _, err := m.db.Exec(
		`INSERT INTO log_metadata (timestamp, entry_type, content_hash, compacted, line_number, token_count) VALUES (?, ?, ?, 0, NULL, ?)`,
		timestamp, string(entryType), contentHash, tokenCount,
	); err != nil {
		return fmt.Errorf("memory: insert log_metadata: %w", err)
	}

	return nil
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// estimateTokens is a whitespace-based heuristic; no tiktoken-go
// vocabulary maps onto the local-HTTP backend's actual model, so an exact
// BPE count would be misleading. tiktoken-go (cl100k_base) is used instead
// in planner/ to report prompt and response token counts in the stage
// span logs.
func estimateTokens(s string) int {
	return len(strings.Fields(s))
}

// ReadLog returns the tail of LOG.md, splitting on the "---" separator
// and returning at most the last lastN entries (0 means all).
func (m *Manager) ReadLog(lastN int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := os.ReadFile(m.logPath())
	if err != nil {
		return "", fmt.Errorf("memory: read %s: %w", m.logPath(), err)
	}

	if lastN <= 0 {
		return string(raw), nil
	}

	entries := strings.Split(string(raw), "---")
	if len(entries) <= lastN {
		return string(raw), nil
	}
	return strings.Join(entries[len(entries)-lastN:], "---"), nil
}

// logSizeKB and uncompactedCount support the compaction trigger (spec
// §4.2): eligible when LOG.md exceeds logMaxSizeKB OR the uncompacted
// log_metadata row count exceeds logMaxEntries.
func (m *Manager) logSizeKB() (float64, error) {
	info, err := os.Stat(m.logPath())
	if err != nil {
		return 0, fmt.Errorf("memory: stat %s: %w", m.logPath(), err)
	}
	return float64(info.Size()) / 1024.0, nil
}

func (m *Manager) uncompactedCount() (int, error) {
	var count int
	row := m.db.QueryRow(`SELECT COUNT(*) FROM log_metadata WHERE compacted = 0`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("memory: count uncompacted log_metadata: %w", err)
	}
	return count, nil
}

// CompactionEligible reports whether a compaction is due.
func (m *Manager) CompactionEligible() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sizeKB, err := m.logSizeKB()
	if err != nil {
		return false, err
	}
	if sizeKB > float64(m.logMaxSizeKB) {
		return true, nil
	}

	count, err := m.uncompactedCount()
	if err != nil {
		return false, err
	}
	return count > m.logMaxEntries, nil
}
