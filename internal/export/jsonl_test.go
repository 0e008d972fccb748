package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/chatpane/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	errMsg := internal.NewErrorMessage("Error: timeout", internal.TestTime)
	session := internal.CreateTestSessionWithMessages("s1", []internal.Message{
		internal.NewUserMessage("show me a table", internal.TestTime),
		internal.CreateTestBotMessage("| Name | Age |\n|---|---|\n| Alice | 30 |"),
		errMsg,
	})

	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var line map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("line %d is not JSON: %v", len(lines), err)
		}
		lines = append(lines, line)
	}

	if len(lines) != 3 {
		t.Fatalf("Export() wrote %d lines, want 3", len(lines))
	}

	wantTypes := []string{"text", "table", "text"}
	wantSenders := []string{"user", "bot", "bot"}
	for i, line := range lines {
		if line["type"] != wantTypes[i] || line["sender"] != wantSenders[i] {
			t.Errorf("line %d = %v, want type %s sender %s", i, line, wantTypes[i], wantSenders[i])
		}
	}
	if lines[2]["error"] != true {
		t.Errorf("error message line = %v, want error flag", lines[2])
	}
	if _, ok := lines[0]["error"]; ok {
		t.Errorf("user line = %v, should omit error flag", lines[0])
	}
}

func TestJSONLExporter_NoMessages(t *testing.T) {
	var buf bytes.Buffer
	session := internal.CreateTestSessionWithMessages("empty", nil)
	if err := (&JSONLExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Export() = %q, want nothing", buf.String())
	}
}
