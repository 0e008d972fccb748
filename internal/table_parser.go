package internal

import (
	"regexp"
	"strings"
)

var (
	tableRowPattern       = regexp.MustCompile(`^\|.*\|$`)
	tableSeparatorPattern = regexp.MustCompile(`^[\s|:-]+$`)
)

// TableData is a parsed pipe table. Every row has len(Headers) cells.
type TableData struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// ParseTable scans text for a Markdown pipe table and returns nil when none
// is found.
//
// This is a heuristic, not a Markdown grammar: escaped pipes and multi-line
// cells are not understood, and rows whose cell count differs from the header
// are dropped without error.
func ParseTable(text string) *TableData {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	var table *TableData
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !tableRowPattern.MatchString(line) {
			continue
		}

		cells := splitTableRow(line)
		if table == nil {
			table = &TableData{Headers: cells}
			if i+1 < len(lines) && tableSeparatorPattern.MatchString(lines[i+1]) {
				i++
			}
			continue
		}

		if len(cells) == len(table.Headers) {
			table.Rows = append(table.Rows, cells)
		}
	}

	if table == nil || len(table.Headers) == 0 || len(table.Rows) == 0 {
		return nil
	}
	return table
}

func splitTableRow(line string) []string {
	var cells []string
	for _, cell := range strings.Split(line, "|") {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}
