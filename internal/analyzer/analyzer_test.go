package analyzer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyze_MissingPDF(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "result.csv")
	if err := os.WriteFile(csvPath, []byte("Date,Balance\n01-08-2024,100\n"), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	_, err := New().Analyze(filepath.Join(dir, "missing.pdf"), csvPath, "icici")
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("error type = %T, want *AnalysisError", err)
	}
	if analysisErr.TargetID != "icici" {
		t.Errorf("TargetID = %q, want icici", analysisErr.TargetID)
	}
	if analysisErr.Unwrap() == nil {
		t.Error("AnalysisError must carry its cause")
	}
}

func TestAnalysis_Render(t *testing.T) {
	a := &Analysis{
		TargetID:     "icici",
		Columns:      []string{"Date", "Description", "Debit Amt", "Credit Amt", "Balance"},
		SampleRows:   [][]string{{"01-08-2024", "Salary Credit", "", "50000", "50000"}},
		ExpectedRows: 100,
		Excerpt:      "=== Page 1 ===\nChaseX Bank Statement",
		PagesScanned: 3,
		PageTotal:    7,
		TabularLines: 42,
		SampleTableRows: []string{
			"Date Description Debit Credit Balance",
			"01-08-2024 Salary Credit 50000 50000",
		},
	}

	rendered := a.Render()
	for _, want := range []string{
		`target "icici"`,
		"Date | Description | Debit Amt | Credit Amt | Balance",
		"01-08-2024 | Salary Credit |  | 50000 | 50000",
		"Total expected rows: 100",
		"3 scanned pages, 7 total",
		"ChaseX Bank Statement",
		"Table-looking rows found in scanned pages: 42",
		"Sample visual rows from page 1:",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() missing %q in:\n%s", want, rendered)
		}
	}
}

func TestAnalysis_RenderWithoutTableRows(t *testing.T) {
	a := &Analysis{TargetID: "sbi", Columns: []string{"Date"}}
	if strings.Contains(a.Render(), "Sample visual rows") {
		t.Error("Render() emitted the visual-rows section with no rows")
	}
}
