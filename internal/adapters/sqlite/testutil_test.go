// Package sqlite_test contains integration tests for SQLite repositories.
// Every test database is built from db.GetSchemaSQL().
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/tilegrab/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Each connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedRun inserts a test run and returns its ID.
func seedRun(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	if id == "" {
		id = "run-001"
	}
	_, err := db.Exec("INSERT INTO runs (id, root, total) VALUES (?, '/tmp/root', 0)", id)
	if err != nil {
		t.Fatalf("failed to seed run: %v", err)
	}
	return id
}
