package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateInMemoryDB creates an in-memory SQLite database with the slots table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value TEXT
	)`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create slots table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateTestDB creates an in-memory database holding the sample sessions
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)
	InsertSlot(t, db, "chatpane.sessions", SessionsFixture)
	return db
}

// InsertSlot stores value under key
func InsertSlot(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO slots (key, value) VALUES (?, ?)", key, value); err != nil {
		t.Fatalf("Failed to insert slot %s: %v", key, err)
	}
}
