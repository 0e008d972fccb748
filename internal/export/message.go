package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/chatpane/internal"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

var (
	// ErrNotExportable is returned for plain text messages
	ErrNotExportable = errors.New("only table and JSON replies can be exported")
	// ErrUnsupportedExtension is returned for file names export cannot infer a format from
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// ExportTableAsSpreadsheet writes the header row followed by the data rows.
// The format follows the extension of filename: .xlsx or .csv.
func ExportTableAsSpreadsheet(table *internal.TableData, filename string) error {
	if table == nil {
		return &internal.ExportError{Format: "table", Path: filename, Err: ErrNotExportable}
	}

	rows := make([][]string, 0, len(table.Rows)+1)
	rows = append(rows, table.Headers)
	rows = append(rows, table.Rows...)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		if err := writeXLSX(filename, rows); err != nil {
			return &internal.ExportError{Format: "xlsx", Path: filename, Err: err}
		}
	case ".csv":
		if err := writeFile(filename, func(w io.Writer) error { return WriteCSV(w, rows) }); err != nil {
			return &internal.ExportError{Format: "csv", Path: filename, Err: err}
		}
	default:
		return &internal.ExportError{
			Format: strings.TrimPrefix(ext, "."),
			Path:   filename,
			Err:    fmt.Errorf("%w %q (supported: .xlsx, .csv)", ErrUnsupportedExtension, ext),
		}
	}

	internal.LogInfo("Exported %d row(s) to %s", len(table.Rows), filename)
	return nil
}

func writeXLSX(filename string, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	return f.SaveAs(filename)
}

// WriteCSV writes rows as comma separated values. A field containing a comma,
// a double quote or a newline is quoted with inner quotes doubled; other
// fields are written verbatim. Rows are joined with "\n" and there is no
// trailing newline.
func WriteCSV(w io.Writer, rows [][]string) error {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(csvField(field))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func csvField(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ExportJSON writes value as JSON indented by two spaces
func ExportJSON(value any, filename string) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return &internal.ExportError{Format: "json", Path: filename, Err: err}
	}
	if err := writeFile(filename, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return &internal.ExportError{Format: "json", Path: filename, Err: err}
	}

	internal.LogInfo("Exported JSON to %s", filename)
	return nil
}

// ExportMessage exports a single reply. Tables go to a spreadsheet, or to
// their record list when filename ends in .json. JSON replies are written as
// JSON whatever the extension.
func ExportMessage(msg internal.Message, filename string) error {
	switch payload := msg.Payload.(type) {
	case *internal.TableData:
		if strings.EqualFold(filepath.Ext(filename), ".json") {
			return ExportJSON(TableToRecordList(payload), filename)
		}
		return ExportTableAsSpreadsheet(payload, filename)
	case internal.JSONData:
		return ExportJSON(payload, filename)
	default:
		return &internal.ExportError{Format: string(msg.Type()), Path: filename, Err: ErrNotExportable}
	}
}

// TableToRecordList converts a table into one record per row keyed by header
func TableToRecordList(table *internal.TableData) []internal.Record {
	return internal.TableToRecordList(table)
}

func writeFile(filename string, write func(io.Writer) error) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
