package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/chatpane/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	session := internal.CreateTestSessionWithMessages("s1", []internal.Message{
		internal.NewUserMessage("give me data", internal.TestTime),
		internal.CreateTestBotMessage("| Name | Age |\n|---|---|\n| Alice | 30 |"),
		internal.CreateTestBotMessage(`{"x":1}`),
	})

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"id: s1", "title: Test Conversation", "type: table", "- Alice", "x: 1", "sender: user"} {
		if !strings.Contains(out, want) {
			t.Errorf("Export() missing %q in:\n%s", want, out)
		}
	}

	var doc struct {
		ID       string `yaml:"id"`
		Messages []struct {
			Type   string `yaml:"type"`
			Sender string `yaml:"sender"`
		} `yaml:"messages"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("exported YAML does not parse: %v", err)
	}
	if doc.ID != "s1" || len(doc.Messages) != 3 || doc.Messages[2].Type != "json" {
		t.Errorf("parsed YAML = %+v", doc)
	}
}

func TestYAMLExporter_JSONReplyKeepsOrderAndTypes(t *testing.T) {
	session := internal.CreateTestSessionWithMessages("s1", []internal.Message{
		internal.CreateTestBotMessage(`{"zeta":1,"alpha":"2","nested":{"ok":true,"ratio":0.5}}`),
	})

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(session, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()

	zeta, alpha := strings.Index(out, "zeta: 1"), strings.Index(out, `alpha: "2"`)
	if zeta < 0 || alpha < 0 || zeta > alpha {
		t.Errorf("Export() key order or scalar types wrong in:\n%s", out)
	}
	for _, want := range []string{"ok: true", "ratio: 0.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("Export() missing %q in:\n%s", want, out)
		}
	}
}
