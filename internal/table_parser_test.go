package internal

import (
	"reflect"
	"testing"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *TableData
	}{
		{
			name:  "well formed table",
			input: "| Name | Age |\n|------|-----|\n| Alice | 30 |\n| Bob | 25 |",
			want: &TableData{
				Headers: []string{"Name", "Age"},
				Rows:    [][]string{{"Alice", "30"}, {"Bob", "25"}},
			},
		},
		{
			name:  "mismatched row is dropped, later rows kept",
			input: "| A | B |\n|---|---|\n| 1 | 2 |\n| 3 |\n| 4 | 5 |",
			want: &TableData{
				Headers: []string{"A", "B"},
				Rows:    [][]string{{"1", "2"}, {"4", "5"}},
			},
		},
		{
			name:  "surrounding prose and indentation",
			input: "Here are the results:\n\n   | City | Pop |\n   | :--- | ---: |\n   | Oslo | 700k |\n\nHope that helps!",
			want: &TableData{
				Headers: []string{"City", "Pop"},
				Rows:    [][]string{{"Oslo", "700k"}},
			},
		},
		{
			name:  "no separator line",
			input: "| k | v |\n| a | 1 |",
			want: &TableData{
				Headers: []string{"k", "v"},
				Rows:    [][]string{{"a", "1"}},
			},
		},
		{
			name:  "blank lines between rows",
			input: "| k | v |\n\n|---|---|\n\n| a | 1 |",
			want: &TableData{
				Headers: []string{"k", "v"},
				Rows:    [][]string{{"a", "1"}},
			},
		},
		{
			name:  "header only",
			input: "| A | B |\n|---|---|",
			want:  nil,
		},
		{
			name:  "no pipe rows",
			input: "just a sentence",
			want:  nil,
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "every row mismatched",
			input: "| A | B |\n|---|---|\n| 1 |\n| 1 | 2 | 3 |",
			want:  nil,
		},
		{
			name:  "line not closed by a pipe is ignored",
			input: "| A | B |\n|---|---|\n| 1 | 2\n| 3 | 4 |",
			want: &TableData{
				Headers: []string{"A", "B"},
				Rows:    [][]string{{"3", "4"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTable(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTable() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTable_RowsMatchHeaderWidth(t *testing.T) {
	input := "| a | b | c |\n|---|---|---|\n| 1 | 2 | 3 |\n| 4 | 5 |\n| 6 | 7 | 8 |\n| 9 |"
	table := ParseTable(input)
	if table == nil {
		t.Fatal("ParseTable() = nil, want table")
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Headers) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(table.Headers))
		}
	}
}

func TestSplitTableRow(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"| a | b |", []string{"a", "b"}},
		{"|a|b|", []string{"a", "b"}},
		{"|  spaced  out  |", []string{"spaced  out"}},
		{"| a |  | b |", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := splitTableRow(tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitTableRow(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
