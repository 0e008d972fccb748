package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SessionsFixture is a persisted collection with one text, one table and one
// JSON reply
const SessionsFixture = `[
  {
    "id": "0190a3b2-7c4e-7a61-9f3d-2b8c1e5d4a01",
    "title": "Quarterly numbers",
    "messages": [
      {
        "type": "text",
        "data": "Show me the team",
        "raw": "Show me the team",
        "sender": "user",
        "timestamp": "2024-03-14T15:09:26Z"
      },
      {
        "type": "table",
        "data": {
          "headers": ["Name", "Age"],
          "rows": [["Alice", "30"], ["Bob", "25"]]
        },
        "raw": "| Name | Age |\n|---|---|\n| Alice | 30 |\n| Bob | 25 |",
        "sender": "bot",
        "timestamp": "2024-03-14T15:09:28Z"
      }
    ],
    "timestamp": "2024-03-14T15:09:26Z"
  },
  {
    "id": "0190a3b2-7c4e-7a61-9f3d-2b8c1e5d4a02",
    "title": "Config question",
    "messages": [
      {
        "type": "text",
        "data": "Give me JSON",
        "raw": "Give me JSON",
        "sender": "user",
        "timestamp": "2024-03-14T16:00:00Z"
      },
      {
        "type": "json",
        "data": {"x": 1, "ratio": 0.25},
        "raw": "{\"x\": 1, \"ratio\": 0.25}",
        "sender": "bot",
        "timestamp": "2024-03-14T16:00:02Z"
      }
    ],
    "timestamp": "2024-03-14T16:00:00Z"
  }
]`

// UserFixture is a persisted logged-in user
const UserFixture = `{"name":"Ada","email":"ada@example.com"}`

// CreateSlotFixture writes value as the file slot key inside dir
func CreateSlotFixture(t *testing.T, dir, key, value string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("Failed to create slot directory: %v", err)
	}
	path := filepath.Join(dir, key+".json")
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		t.Fatalf("Failed to write slot fixture: %v", err)
	}
	return path
}

// CreateDataDir creates a data directory holding the sample sessions and a
// logged-in user
func CreateDataDir(t *testing.T) string {
	t.Helper()
	dir := CreateTempDir(t)
	CreateSlotFixture(t, dir, "chatpane.sessions", SessionsFixture)
	CreateSlotFixture(t, dir, "chatpane.user", UserFixture)
	return dir
}
