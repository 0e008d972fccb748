package internal

import (
	"path/filepath"
	"testing"

	"github.com/iksnae/chatpane/testutil"
)

func TestOpenDatabase(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "chatpane.db")

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}

	slot := NewSQLiteSlot(db)
	if err := slot.Write(SessionsKey, []byte(`[]`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening must keep the data and not fail on the existing table
	db, err = OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() reopen error = %v", err)
	}
	defer db.Close()

	data, ok, err := NewSQLiteSlot(db).Read(SessionsKey)
	if err != nil || !ok || string(data) != `[]` {
		t.Errorf("Read() after reopen = (%q, %v, %v), want ([], true, nil)", data, ok, err)
	}
}

func TestOpenDatabase_InMemory(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("OpenDatabase(:memory:) error = %v", err)
	}
	defer db.Close()

	slot := NewSQLiteSlot(db)
	if err := slot.Write(UserKey, []byte(testutil.UserFixture)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, ok, _ := slot.Read(UserKey); !ok {
		t.Error("value written to :memory: database should be readable on the same handle")
	}
}

func TestOpenDatabase_InvalidPath(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "missing", "dir", "chatpane.db")
	if _, err := OpenDatabase(path); err == nil {
		t.Error("OpenDatabase() should fail when the directory does not exist")
	}
}

func TestSQLiteSlot_ReadsSeededDB(t *testing.T) {
	slot := NewSQLiteSlot(testutil.CreateTestDB(t))
	data, ok, err := slot.Read(SessionsKey)
	if err != nil || !ok {
		t.Fatalf("Read() = (%v, %v), want seeded sessions", ok, err)
	}
	if string(data) != testutil.SessionsFixture {
		t.Error("Read() did not return seeded sessions")
	}
}
