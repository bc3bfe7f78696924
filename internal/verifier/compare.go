package verifier

import (
	"fmt"
	"strings"

	"parsegen/internal/statement"
)

// MaxReportedDiffs caps how many cell differences a report carries.
// DifferenceTotal always holds the true count.
const MaxReportedDiffs = 10

// CellDiff records one cell-level disagreement.
type CellDiff struct {
	Row      int    // 0-based data row index
	Column   string // expected column name
	Actual   string
	Expected string
}

// Report is the structured outcome of one verification attempt.
type Report struct {
	Passed          bool
	ShapeMatch      bool
	ActualRows      int
	ExpectedRows    int
	ActualColumns   []string
	ExpectedColumns []string
	Differences     []CellDiff // at most MaxReportedDiffs entries
	DifferenceTotal int
	Message         string
}

// Compare scores a candidate's table against the expected one. The shape
// gate runs first: on a row-count or column mismatch no cells are compared,
// because positional diffing of misaligned tables is meaningless.
func Compare(actual, expected statement.Table) *Report {
	r := &Report{
		ActualRows:      actual.RowCount(),
		ExpectedRows:    expected.RowCount(),
		ActualColumns:   actual.Columns,
		ExpectedColumns: expected.Columns,
	}

	r.ShapeMatch = actual.RowCount() == expected.RowCount() && columnsEqual(actual.Columns, expected.Columns)
	if !r.ShapeMatch {
		r.Message = "structure mismatch"
		return r
	}

	for rowIdx := range expected.Rows {
		for colIdx, col := range expected.Columns {
			actualVal := statement.NormalizeCell(actual.Rows[rowIdx][colIdx])
			expectedVal := statement.NormalizeCell(expected.Rows[rowIdx][colIdx])
			if actualVal == expectedVal {
				continue
			}
			r.DifferenceTotal++
			if len(r.Differences) < MaxReportedDiffs {
				r.Differences = append(r.Differences, CellDiff{
					Row:      rowIdx,
					Column:   col,
					Actual:   actualVal,
					Expected: expectedVal,
				})
			}
		}
	}

	if r.DifferenceTotal == 0 {
		r.Passed = true
		r.Message = "perfect match"
	} else {
		r.Message = fmt.Sprintf("found %d cell differences", r.DifferenceTotal)
	}
	return r
}

func columnsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Render produces the failure summary fed back into the next synthesis
// attempt. A passing report renders to its message only.
func (r *Report) Render() string {
	if r.Passed {
		return r.Message
	}

	var b strings.Builder
	b.WriteString("Verification failed:\n")
	fmt.Fprintf(&b, "- Row count: %d (expected %d)\n", r.ActualRows, r.ExpectedRows)
	fmt.Fprintf(&b, "- Columns match: %v\n", columnsEqual(r.ActualColumns, r.ExpectedColumns))
	fmt.Fprintf(&b, "- Actual columns: %v\n", r.ActualColumns)
	fmt.Fprintf(&b, "- Expected columns: %v\n", r.ExpectedColumns)

	if len(r.Differences) > 0 {
		fmt.Fprintf(&b, "\nCell differences (%d total, first %d shown):\n", r.DifferenceTotal, len(r.Differences))
		for _, d := range r.Differences {
			fmt.Fprintf(&b, "  Row %d, column %q: got %q, expected %q\n", d.Row, d.Column, d.Actual, d.Expected)
		}
	}
	return b.String()
}
