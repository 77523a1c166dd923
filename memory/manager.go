// Package memory implements the three-tier (HOT/WARM/COLD) per-agent
// memory system described in spec §4.2: NOW.md, LOG.md, a relational
// facts/log-metadata store, and a pluggable vector store for semantic
// recall.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fygarcia/AgentOS/llm"
	"github.com/fygarcia/AgentOS/vector"
)

const (
	nowFileName = "NOW.md"
	logFileName = "LOG.md"
	dbFileName  = "memory.db"

	defaultLogMaxSizeKB  = 50
	defaultLogMaxEntries = 100
)

// Summarizer generates a compaction summary from the current LOG.md
// contents. The memory core never generates summaries itself (spec §4.2);
// it only triggers and applies compaction.
type Summarizer interface {
	Summarize(ctx context.Context, logContent string) (string, error)
}

// Config controls a Manager's thresholds and backends.
type Config struct {
	AgentsRoot    string
	AgentName     string
	EmbeddingDim  int
	LogMaxSizeKB  int
	LogMaxEntries int
	SQLDriver     string // "sqlite3", "postgres", "mysql"
	Vector        vector.Provider
	Embedder      llm.Client
	EmbedModel    string
}

// Manager is the per-agent owner of NOW.md, LOG.md, the relational store,
// and the vector store (spec §4.2). Manager is safe for concurrent use by
// a single agent's sequential run loop; it does not coordinate across
// agents (each agent owns its own Manager, per spec §3 Ownership).
type Manager struct {
	agentName string
	dir       string

	logMaxSizeKB  int
	logMaxEntries int

	vec        vector.Provider
	embedder   llm.Client
	embedModel string
	embedDim   int

	db *sql.DB

	mu sync.Mutex
}

// New constructs (or opens) the memory directory for cfg.AgentName,
// creating NOW.md/LOG.md/the SQL schema if absent (spec §4.2:
// "lazily create the directory... open but do not create a table in the
// vector store").
func New(cfg Config) (*Manager, error) {
	if cfg.AgentName == "" {
		return nil, fmt.Errorf("memory: agent name required")
	}
	dir := filepath.Join(cfg.AgentsRoot, cfg.AgentName, "memory")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("memory: create dir %s: %w", dir, err)
	}

	m := &Manager{
		agentName:     cfg.AgentName,
		dir:           dir,
		logMaxSizeKB:  orDefault(cfg.LogMaxSizeKB, defaultLogMaxSizeKB),
		logMaxEntries: orDefault(cfg.LogMaxEntries, defaultLogMaxEntries),
		vec:           cfg.Vector,
		embedder:      cfg.Embedder,
		embedModel:    cfg.EmbedModel,
		embedDim:      cfg.EmbeddingDim,
	}

	if err := m.ensureNow(); err != nil {
		return nil, err
	}
	if err := m.ensureLog(); err != nil {
		return nil, err
	}

	db, err := openSQL(cfg.SQLDriver, filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("memory: open db: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: init schema: %w", err)
	}
	m.db = db

	return m, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Close releases the relational store and the vector store.
func (m *Manager) Close() error {
	var firstErr error
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			firstErr = err
		}
	}
	if m.vec != nil {
		if err := m.vec.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) nowPath() string { return filepath.Join(m.dir, nowFileName) }
func (m *Manager) logPath() string { return filepath.Join(m.dir, logFileName) }

func (m *Manager) ensureNow() error {
	if _, err := os.Stat(m.nowPath()); err == nil {
		return nil
	}
	content := "# Current Status\n\nStatus: Idle\n\n## Next Steps\n- Awaiting user input\n"
	return atomicWrite(m.nowPath(), content)
}

func (m *Manager) ensureLog() error {
	if _, err := os.Stat(m.logPath()); err == nil {
		return nil
	}
	header := fmt.Sprintf("# Activity Log - %s\n\nStarted: %s\n\n---\n\n", m.agentName, nowISO())
	return atomicWrite(m.logPath(), header)
}

// atomicWrite writes content to a temp file in the same directory then
// renames it over path, so a reader never observes a partial write (spec
// §4.2 invariant: "all file writes are atomic from the agent's point of
// view").
func atomicWrite(path, content string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("memory: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("memory: rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }
