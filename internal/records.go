package internal

import (
	"bytes"
	"encoding/json"
)

// Field is one key-value pair of a Record
type Field struct {
	Key   string
	Value string
}

// Record is an ordered set of fields that encodes as a JSON object with its
// keys in column order.
type Record []Field

// Get returns the value stored under key
func (r Record) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes the record as an object, keeping field order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// TableToRecordList converts a table into one record per row keyed by header.
// A repeated header keeps its first position and takes the later value.
func TableToRecordList(table *TableData) []Record {
	if table == nil {
		return []Record{}
	}

	records := make([]Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make(Record, 0, len(table.Headers))
		positions := make(map[string]int, len(table.Headers))
		for i, header := range table.Headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			if pos, ok := positions[header]; ok {
				record[pos].Value = value
				continue
			}
			positions[header] = len(record)
			record = append(record, Field{Key: header, Value: value})
		}
		records = append(records, record)
	}
	return records
}
