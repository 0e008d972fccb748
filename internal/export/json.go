package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/chatpane/internal"
)

// JSONExporter writes a conversation as one indented document, in the same
// shape the file slot stores it. JSON replies keep their key order.
type JSONExporter struct{}

func (e *JSONExporter) Export(session *internal.Session, w io.Writer) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return &internal.ExportError{Format: "json", Path: session.ID, Err: err}
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func (e *JSONExporter) Extension() string { return "json" }
