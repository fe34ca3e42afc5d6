package db

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the version recorded for SchemaSQL.
const SchemaVersion = 1

// SchemaSQL is the complete ledger schema.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests load it
// via GetSchemaSQL() instead of declaring their own tables.
const SchemaSQL = `
-- Runs (one row per pipeline invocation)
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	root TEXT NOT NULL,
	params TEXT,
	started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	finished_at DATETIME,
	total INTEGER NOT NULL DEFAULT 0,
	saved INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	rejected INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0
);

-- Tile events (terminal outcome of each tile coordination unit)
CREATE TABLE IF NOT EXISTS tile_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	tile_key TEXT NOT NULL,
	outcome TEXT NOT NULL CHECK(outcome IN ('skipped', 'rejected', 'label_failed', 'image_failed', 'write_failed', 'saved', 'canceled')),
	ratio REAL,
	error TEXT,
	duration_ms INTEGER,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tile_events_run ON tile_events(run_id);
CREATE INDEX IF NOT EXISTS idx_tile_events_key ON tile_events(tile_key);
`

// InitSchema creates the ledger schema on a fresh database and records its
// version. Existing databases at a newer version are rejected.
func InitSchema(database *sql.DB) error {
	if _, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	var current int
	if err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("ledger schema version %d is newer than supported version %d", current, SchemaVersion)
	}
	if current == SchemaVersion {
		return nil
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return err
	}
	_, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
	return err
}

// GetSchemaSQL returns the schema SQL for tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
