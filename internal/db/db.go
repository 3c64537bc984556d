package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB holding the promptsuite collections.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the database file path, or ":memory:".
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. Each table is one logical
// collection; rows are appended or overwritten whole, never joined.
const schema = `
CREATE TABLE IF NOT EXISTS expert_patterns (
    id TEXT PRIMARY KEY,
    domain TEXT NOT NULL CHECK(domain IN ('business','tech','design','management')),
    name TEXT NOT NULL DEFAULT '',
    reasoning_template TEXT NOT NULL,
    quality_score REAL NOT NULL DEFAULT 0,
    usage_count INTEGER NOT NULL DEFAULT 0,
    success_rate REAL NOT NULL DEFAULT 0,
    rating_history TEXT NOT NULL DEFAULT '[]',
    related_corpus_entries TEXT NOT NULL DEFAULT '[]',
    last_updated DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_patterns_domain ON expert_patterns(domain);

CREATE TABLE IF NOT EXISTS corpus_entries (
    id TEXT PRIMARY KEY,
    dedup_key TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    extracted_variables TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_corpus_category ON corpus_entries(category);

CREATE TABLE IF NOT EXISTS generation_runs (
    id TEXT PRIMARY KEY,
    pattern_id TEXT NOT NULL DEFAULT '',
    domain TEXT NOT NULL DEFAULT '',
    project_type TEXT NOT NULL DEFAULT '',
    mode TEXT NOT NULL DEFAULT 'full' CHECK(mode IN ('full','simple')),
    overall_score REAL NOT NULL DEFAULT 0,
    optimized INTEGER NOT NULL DEFAULT 0,
    fallbacks TEXT NOT NULL DEFAULT '[]',
    usage TEXT NOT NULL DEFAULT '{}',
    result TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON generation_runs(created_at);

CREATE TABLE IF NOT EXISTS quality_history (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    pass INTEGER NOT NULL DEFAULT 0,
    clarity REAL NOT NULL,
    completeness REAL NOT NULL,
    professionalism REAL NOT NULL,
    actionability REAL NOT NULL,
    innovation REAL NOT NULL,
    overall_score REAL NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_quality_run ON quality_history(run_id, pass);

CREATE TABLE IF NOT EXISTS user_feedback (
    id TEXT PRIMARY KEY,
    target_id TEXT NOT NULL,
    session_id TEXT NOT NULL DEFAULT '',
    rating INTEGER NOT NULL CHECK(rating BETWEEN 1 AND 5),
    free_text TEXT NOT NULL DEFAULT '',
    usage_result TEXT NOT NULL CHECK(usage_result IN ('success','partial','failed')),
    suggestions TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedback_target ON user_feedback(target_id, created_at);
`
