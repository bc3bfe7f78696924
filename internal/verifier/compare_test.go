package verifier

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"parsegen/internal/statement"
)

func mkTable(columns []string, rows [][]string) statement.Table {
	return statement.Table{Columns: columns, Rows: rows}
}

func TestCompare_PerfectMatch(t *testing.T) {
	expected := mkTable(
		[]string{"Date", "Description", "Balance"},
		[][]string{
			{"01-08-2024", "Salary Credit", "50000"},
			{"03-08-2024", "UPI QR Payment", "48800"},
		},
	)

	report := Compare(expected, expected)
	if !report.Passed {
		t.Fatalf("Passed = false, want true: %s", report.Message)
	}
	if !report.ShapeMatch {
		t.Error("ShapeMatch = false, want true")
	}
	if report.DifferenceTotal != 0 {
		t.Errorf("DifferenceTotal = %d, want 0", report.DifferenceTotal)
	}
	if report.Message != "perfect match" {
		t.Errorf("Message = %q, want %q", report.Message, "perfect match")
	}
}

func TestCompare_NormalizedEquivalence(t *testing.T) {
	// Sentinel spellings of "missing" and stray whitespace must not count
	// as differences.
	actual := mkTable(
		[]string{"Date", "Debit Amt"},
		[][]string{{" 01-08-2024 ", "NaN"}},
	)
	expected := mkTable(
		[]string{"Date", "Debit Amt"},
		[][]string{{"01-08-2024", ""}},
	)

	report := Compare(actual, expected)
	if !report.Passed {
		t.Fatalf("Passed = false, want true: %s", report.Message)
	}
}

func TestCompare_CellMismatch(t *testing.T) {
	actual := mkTable(
		[]string{"Date", "Balance"},
		[][]string{{"01-08-2024", "999"}},
	)
	expected := mkTable(
		[]string{"Date", "Balance"},
		[][]string{{"01-08-2024", "100"}},
	)

	report := Compare(actual, expected)
	if report.Passed {
		t.Fatal("Passed = true, want false")
	}
	if !report.ShapeMatch {
		t.Error("ShapeMatch = false, want true")
	}
	if report.DifferenceTotal != 1 {
		t.Fatalf("DifferenceTotal = %d, want 1", report.DifferenceTotal)
	}

	want := CellDiff{Row: 0, Column: "Balance", Actual: "999", Expected: "100"}
	if diff := cmp.Diff(want, report.Differences[0]); diff != "" {
		t.Errorf("diff mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare_ShapeGate(t *testing.T) {
	tests := []struct {
		name   string
		actual statement.Table
	}{
		{
			name: "row count mismatch",
			actual: mkTable(
				[]string{"Date", "Balance"},
				[][]string{{"01-08-2024", "100"}, {"02-08-2024", "90"}},
			),
		},
		{
			name: "column name mismatch",
			actual: mkTable(
				[]string{"Date", "Closing Balance"},
				[][]string{{"01-08-2024", "100"}},
			),
		},
		{
			name: "column count mismatch",
			actual: mkTable(
				[]string{"Date"},
				[][]string{{"01-08-2024"}},
			),
		},
	}

	expected := mkTable(
		[]string{"Date", "Balance"},
		[][]string{{"01-08-2024", "100"}},
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Compare(tt.actual, expected)
			if report.Passed {
				t.Error("Passed = true, want false")
			}
			if report.ShapeMatch {
				t.Error("ShapeMatch = true, want false")
			}
			// The shape gate must suppress cell diffing entirely.
			if len(report.Differences) != 0 || report.DifferenceTotal != 0 {
				t.Errorf("got %d diffs (total %d), want none on shape mismatch",
					len(report.Differences), report.DifferenceTotal)
			}
			if report.Message != "structure mismatch" {
				t.Errorf("Message = %q, want %q", report.Message, "structure mismatch")
			}
		})
	}
}

func TestCompare_DiffCap(t *testing.T) {
	columns := []string{"Value"}
	var actualRows, expectedRows [][]string
	for i := 0; i < MaxReportedDiffs+5; i++ {
		actualRows = append(actualRows, []string{"a"})
		expectedRows = append(expectedRows, []string{"b"})
	}

	report := Compare(mkTable(columns, actualRows), mkTable(columns, expectedRows))
	if report.DifferenceTotal != MaxReportedDiffs+5 {
		t.Errorf("DifferenceTotal = %d, want %d", report.DifferenceTotal, MaxReportedDiffs+5)
	}
	if len(report.Differences) != MaxReportedDiffs {
		t.Errorf("len(Differences) = %d, want %d", len(report.Differences), MaxReportedDiffs)
	}
}

func TestReport_Render(t *testing.T) {
	actual := mkTable(
		[]string{"Date", "Balance"},
		[][]string{{"01-08-2024", "999"}},
	)
	expected := mkTable(
		[]string{"Date", "Balance"},
		[][]string{{"01-08-2024", "100"}},
	)

	rendered := Compare(actual, expected).Render()
	for _, want := range []string{
		"Verification failed:",
		"Row count: 1 (expected 1)",
		`column "Balance"`,
		`got "999", expected "100"`,
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() missing %q in:\n%s", want, rendered)
		}
	}
}

func TestReport_RenderPassing(t *testing.T) {
	table := mkTable([]string{"Date"}, [][]string{{"01-08-2024"}})
	if got := Compare(table, table).Render(); got != "perfect match" {
		t.Errorf("Render() = %q, want %q", got, "perfect match")
	}
}
