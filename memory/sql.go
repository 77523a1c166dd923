package memory

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// openSQL opens the relational store for driver ("sqlite3", "postgres", or
// "mysql"), defaulting to sqlite3 when driver is empty; dsn is passed to
// sql.Open unchanged. The postgres and mysql drivers are registered by the
// blank imports, but initSchema's DDL (AUTOINCREMENT) and the Manager's
// queries (? placeholders) are written in SQLite syntax and are not
// rewritten per dialect.
func openSQL(driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = "sqlite3"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("memory: sql.Open(%s): %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: ping %s: %w", driver, err)
	}
	return db, nil
}

// initSchema creates the three relational tables from spec §6 if absent.
func initSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_facts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT UNIQUE NOT NULL,
			value TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS log_metadata (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			compacted INTEGER NOT NULL DEFAULT 0,
			line_number INTEGER,
			token_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS compaction_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			compacted_at TEXT NOT NULL,
			entries_count INTEGER NOT NULL,
			summary TEXT NOT NULL,
			archive_id TEXT NOT NULL,
			original_size_kb REAL NOT NULL,
			new_size_kb REAL NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("memory: exec schema statement: %w", err)
		}
	}
	return nil
}
