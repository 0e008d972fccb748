package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chatpane/internal"
)

// Formats lists the conversation formats in the order help text shows them
var Formats = []string{"jsonl", "md", "yaml", "json"}

// Exporter writes a whole conversation to w. Extension is the file suffix
// used when a conversation is exported to a directory.
type Exporter interface {
	Export(session *internal.Session, w io.Writer) error
	Extension() string
}

// FormatList joins Formats for flag help and error messages
func FormatList() string {
	return strings.Join(Formats, ", ")
}

// NewExporter returns the exporter for format; "markdown" is accepted for md
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	}
	return nil, fmt.Errorf("unsupported format %q (supported: %s)", format, FormatList())
}
