package memory

import (
	"context"
	"fmt"
	"os"
)

// CompactLog archives the current LOG.md into COLD, marks every
// log_metadata row compacted, records a compaction_history row, and
// rewrites LOG.md with a fresh header plus summary (spec §4.2). The
// summary text itself is supplied by the caller — the memory core never
// generates it.
func (m *Manager) CompactLog(ctx context.Context, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := os.ReadFile(m.logPath())
	if err != nil {
		return fmt.Errorf("memory: read %s: %w", m.logPath(), err)
	}
	originalSizeKB := float64(len(raw)) / 1024.0

	archiveID := fmt.Sprintf("archived_log_%s", nowISO())
	archiveMeta := map[string]any{
		"type":        "archived_log",
		"content":     string(raw),
		"agent":       m.agentName,
		"archived_at": nowISO(),
		"summary":     summary,
	}

	if err := m.storeColdLocked(ctx, archiveID, string(raw), archiveMeta); err != nil {
		return fmt.Errorf("memory: archive log to cold store: %w", err)
	}

	entriesCount, err := m.uncompactedCount()
	if err != nil {
		return err
	}

	if _, err := m.db.Exec(`UPDATE log_metadata SET compacted = 1 WHERE compacted = 0`); err != nil {
		return fmt.Errorf("memory: mark log_metadata compacted: %w", err)
	}

	header := fmt.Sprintf("# Activity Log - %s\n\nStarted: %s\n\n## Compaction Summary\n\n%s\n\n---\n\n", m.agentName, nowISO(), summary)
	if err := atomicWrite(m.logPath(), header); err != nil {
		return err
	}
	newSizeKB := float64(len(header)) / 1024.0

	if _, err := m.db.Exec(
		`INSERT INTO compaction_history (compacted_at, entries_count, summary, archive_id, original_size_kb, new_size_kb) VALUES (?, ?, ?, ?, ?, ?)`,
		nowISO(), entriesCount, summary, archiveID, originalSizeKB, newSizeKB,
	); err != nil {
		return fmt.Errorf("memory: insert compaction_history: %w", err)
	}

	return nil
}
