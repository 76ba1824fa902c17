package loader

import (
	"fmt"
	"strconv"
	"strings"
)

type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnReal
)

func (c ColumnType) String() string {
	switch c {
	case ColumnInteger:
		return "integer"
	case ColumnReal:
		return "real"
	default:
		return "text"
	}
}

// Table is a parsed file: one header row and records padded to its width. Empty
// cells are stored as "" and written as NULL.
type Table struct {
	Columns []string
	Types   []ColumnType
	Records [][]string
}

func newTable(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	columns := normalizeHeader(header)
	records := make([][]string, 0, len(rows))
	for i, row := range rows {
		if len(row) > len(columns) {
			if !isBlank(row[len(columns):]) {
				return nil, fmt.Errorf("row %d has %d fields, header has %d", i+2, len(row), len(columns))
			}
			row = row[:len(columns)]
		}
		if isBlank(row) {
			continue
		}
		record := make([]string, len(columns))
		copy(record, row)
		records = append(records, record)
	}

	t := &Table{Columns: columns, Records: records}
	t.Types = make([]ColumnType, len(columns))
	for i := range columns {
		t.Types[i] = inferColumnType(t.Records, i)
	}
	return t, nil
}

// normalizeHeader trims names, fills blanks with "Unnamed: N" and suffixes
// duplicates with ".1", ".2" and so on.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; seen[strings.ToLower(candidate)]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		seen[strings.ToLower(candidate)] = true
		columns[i] = candidate
	}
	return columns
}

// inferColumnType picks the narrowest of INTEGER, REAL and TEXT that holds every
// non-empty value in column. All-empty columns are TEXT.
func inferColumnType(records [][]string, column int) ColumnType {
	hasInteger, hasReal := false, false
	for _, record := range records {
		value := strings.TrimSpace(record[column])
		if value == "" {
			continue
		}
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			hasInteger = true
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			hasReal = true
			continue
		}
		return ColumnText
	}
	switch {
	case hasReal:
		return ColumnReal
	case hasInteger:
		return ColumnInteger
	default:
		return ColumnText
	}
}

// value converts a cell for binding according to the column type.
func (t *Table) value(row, column int) (any, error) {
	raw := t.Records[row][column]
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	switch t.Types[column] {
	case ColumnInteger:
		return strconv.ParseInt(trimmed, 10, 64)
	case ColumnReal:
		return strconv.ParseFloat(trimmed, 64)
	default:
		return raw, nil
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
