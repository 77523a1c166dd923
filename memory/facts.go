package memory

import (
	"database/sql"
	"fmt"
)

// Fact is one row of the user_facts table (spec §3 UserFact).
type Fact struct {
	Key       string
	Value     string
	Category  string
	CreatedAt string
	UpdatedAt string
}

// SaveFact upserts into user_facts, bumping updated_at, and appends a
// SYSTEM log line (spec §4.2).
func (m *Manager) SaveFact(key, value, category string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category == "" {
		category = "general"
	}
	ts := nowISO()

	var exists bool
	row := m.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM user_facts WHERE key = ?)`, key)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("memory: check fact existence: %w", err)
	}

	if exists {
		if _, err := m.db.Exec(
			`UPDATE user_facts SET value = ?, category = ?, updated_at = ? WHERE key = ?`,
			value, category, ts, key,
		); err != nil {
			return fmt.Errorf("memory: update fact %q: %w", key, err)
		}
	} else {
		if _, err := m.db.Exec(
			`INSERT INTO user_facts (key, value, category, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			key, value, category, ts, ts,
		); err != nil {
			return fmt.Errorf("memory: insert fact %q: %w", key, err)
		}
	}

	return m.appendLogLocked(EntrySystem, fmt.Sprintf("Saved fact: %s", key), map[string]any{"category": category})
}

// GetFact returns the stored value for key.
func (m *Manager) GetFact(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var value string
	row := m.db.QueryRow(`SELECT value FROM user_facts WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("memory: get fact %q: %w", key, err)
	}
	return value, true, nil
}

// GetAllFacts returns every fact, optionally filtered by category.
func (m *Manager) GetAllFacts(category string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows *sql.Rows
	var err error
	if category != "" {
		rows, err = m.db.Query(`SELECT key, value FROM user_facts WHERE category = ?`, category)
	} else {
		rows, err = m.db.Query(`SELECT key, value FROM user_facts`)
	}
	if err != nil {
		return nil, fmt.Errorf("memory: query facts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("memory: scan fact row: %w", err)
		}
		out[key] = value
	}
	return out, rows.Err()
}
