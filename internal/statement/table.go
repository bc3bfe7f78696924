// Package statement provides access to the raw materials of a parser
// generation run: the sample statement PDF and the expected transaction
// table it must produce.
package statement

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Table is an ordered, named-column view of tabular data. Rows hold string
// cells positionally aligned with Columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// RowCount returns the number of data rows (header excluded).
func (t Table) RowCount() int {
	return len(t.Rows)
}

// missingSentinels are cell values treated as "no value". They are replaced
// with the empty string before comparison, so a parser that emits "" and one
// that emits "NaN" for a blank Debit cell agree.
var missingSentinels = map[string]bool{
	"NaN":   true,
	"nan":   true,
	"NULL":  true,
	"null":  true,
	"None":  true,
	"<nil>": true,
}

// NormalizeCell trims surrounding whitespace and maps missing-value
// sentinels to the empty string. No other rewriting happens: "1,000" and
// "1000" remain distinct.
func NormalizeCell(s string) string {
	trimmed := strings.TrimSpace(s)
	if missingSentinels[trimmed] {
		return ""
	}
	return trimmed
}

// LoadCSV reads the expected output table. The first record is the header.
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open expected table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // Validate shape ourselves, with a better message

	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read expected table %s: %w", path, err)
	}
	return FromRows(records)
}

// FromRows builds a Table from raw rows where the first row is the header.
// This is the shape candidate parsers return.
func FromRows(raw [][]string) (Table, error) {
	if len(raw) == 0 {
		return Table{}, fmt.Errorf("table has no header row")
	}
	header := raw[0]
	if len(header) == 0 {
		return Table{}, fmt.Errorf("table header is empty")
	}

	t := Table{
		Columns: make([]string, len(header)),
		Rows:    make([][]string, 0, len(raw)-1),
	}
	for i, c := range header {
		t.Columns[i] = strings.TrimSpace(c)
	}

	for i, row := range raw[1:] {
		if len(row) != len(header) {
			return Table{}, fmt.Errorf("row %d has %d cells, header has %d", i, len(row), len(header))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
