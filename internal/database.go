package internal

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const createSlotsTableSQL = `
CREATE TABLE IF NOT EXISTS slots (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// OpenDatabase opens (creating if needed) the SQLite database backing a
// SQLiteSlot
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.Exec(createSlotsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}

	return db, nil
}

// SQLiteSlot stores slot values in the slots table
type SQLiteSlot struct {
	db *sql.DB
}

// NewSQLiteSlot wraps an open database. The slots table must exist, see
// OpenDatabase.
func NewSQLiteSlot(db *sql.DB) *SQLiteSlot {
	return &SQLiteSlot{db: db}
}

// Read implements Slot
func (s *SQLiteSlot) Read(key string) ([]byte, bool, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &StorageError{Key: key, Op: "read", Err: err}
	}
	if !value.Valid {
		return nil, false, nil
	}
	return []byte(value.String), true, nil
}

// Write implements Slot
func (s *SQLiteSlot) Write(key string, data []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO slots (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, string(data),
	)
	if err != nil {
		return &StorageError{Key: key, Op: "write", Err: err}
	}
	return nil
}

// Delete implements Slot
func (s *SQLiteSlot) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM slots WHERE key = ?", key); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Keys lists every stored key, used by healthcheck
func (s *SQLiteSlot) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM slots WHERE value IS NOT NULL ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return keys, nil
}
