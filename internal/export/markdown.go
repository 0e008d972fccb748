package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/chatpane/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", session.Title)
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	if !session.Timestamp.IsZero() {
		_, _ = fmt.Fprintf(w, "**Created:** %s  \n", session.Timestamp.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range session.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
		}
		label := string(msg.Sender)
		if msg.Error {
			label += ", error"
		}
		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n", label, timestamp)

		if msg.Attachment != "" {
			_, _ = fmt.Fprintf(w, "_Attachment: %s_\n\n", msg.Attachment)
		}

		body, err := messageMarkdown(msg)
		if err != nil {
			return fmt.Errorf("failed to render message %d: %w", i, err)
		}
		_, _ = fmt.Fprintf(w, "%s\n\n", body)

		// Add horizontal rule after each message (except the last one)
		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func messageMarkdown(msg internal.Message) (string, error) {
	switch payload := msg.Payload.(type) {
	case *internal.TableData:
		return pipeTable(payload), nil
	case internal.JSONData:
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return "", err
		}
		return "```json\n" + string(data) + "\n```", nil
	default:
		return escapeMarkdown(msg.Text()), nil
	}
}

// pipeTable writes a table back out as a Markdown pipe table. Pipes inside
// cells are escaped.
func pipeTable(t *internal.TableData) string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, cell := range cells {
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(t.Headers)
	b.WriteString("|")
	for range t.Headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
