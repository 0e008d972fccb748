package export

import (
	"io"

	"github.com/iksnae/chatpane/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes a conversation with the field names of the JSON form.
// Table and JSON payloads become nested YAML rather than quoted strings.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(session); err != nil {
		_ = enc.Close()
		return &internal.ExportError{Format: "yaml", Path: session.ID, Err: err}
	}
	return enc.Close()
}

func (e *YAMLExporter) Extension() string { return "yaml" }
