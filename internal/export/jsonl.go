package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/chatpane/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, msg := range session.Messages {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("failed to encode message %d: %w", i, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
