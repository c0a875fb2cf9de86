package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

const schema = `
-- Guides cached from the analysis backend
CREATE TABLE IF NOT EXISTS guides (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL UNIQUE,
    materials TEXT NOT NULL DEFAULT '[]',
    difficulty TEXT NOT NULL DEFAULT '',
    time_required TEXT NOT NULL DEFAULT '',
    steps TEXT NOT NULL DEFAULT '[]',
    tips TEXT NOT NULL DEFAULT '[]',
    warnings TEXT NOT NULL DEFAULT '{}',
    step_count INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Full-text index over guides, kept in sync by triggers
CREATE VIRTUAL TABLE IF NOT EXISTS guides_fts USING fts5(
    title, materials, steps,
    content='guides', content_rowid='rowid'
);
CREATE TRIGGER IF NOT EXISTS guides_ai AFTER INSERT ON guides BEGIN
    INSERT INTO guides_fts(rowid, title, materials, steps)
    VALUES (new.rowid, new.title, new.materials, new.steps);
END;
CREATE TRIGGER IF NOT EXISTS guides_ad AFTER DELETE ON guides BEGIN
    INSERT INTO guides_fts(guides_fts, rowid, title, materials, steps)
    VALUES ('delete', old.rowid, old.title, old.materials, old.steps);
END;
CREATE TRIGGER IF NOT EXISTS guides_au AFTER UPDATE ON guides BEGIN
    INSERT INTO guides_fts(guides_fts, rowid, title, materials, steps)
    VALUES ('delete', old.rowid, old.title, old.materials, old.steps);
    INSERT INTO guides_fts(rowid, title, materials, steps)
    VALUES (new.rowid, new.title, new.materials, new.steps);
END;

-- Progress activity journal
CREATE TABLE IF NOT EXISTS activity_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_title TEXT NOT NULL,
    activity_type TEXT NOT NULL CHECK(activity_type IN ('project_added', 'step_completed', 'step_repeated')),
    step INTEGER,
    progress REAL NOT NULL DEFAULT 0,
    summary TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_activity_title ON activity_log(project_title);
CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity_log(created_at);
`

// RunMigrations creates the schema. It is safe to run more than once.
func (db *DB) RunMigrations() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
