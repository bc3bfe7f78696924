// Package analyzer inspects a sample statement PDF and its expected output
// table and produces the structured description the synthesizer prompts
// are built from.
package analyzer

import (
	"fmt"
	"strings"

	"parsegen/internal/logging"
	"parsegen/internal/statement"
)

const (
	// MaxPagesScanned bounds how much of the PDF is read for analysis.
	MaxPagesScanned = 3
	// SampleRowCount is how many expected rows are rendered into the prompt.
	SampleRowCount = 5
	// ExcerptLimit is the character budget for the raw content excerpt.
	ExcerptLimit = 500
)

// Analysis is the typed description of one target consumed by the
// synthesizer. Every field is derived from the sample pair; nothing here
// survives the run.
type Analysis struct {
	TargetID        string
	Columns         []string   // expected schema, in order
	SampleRows      [][]string // first SampleRowCount expected rows
	ExpectedRows    int
	Excerpt         string   // first ExcerptLimit chars of extracted text
	PagesScanned    int
	PageTotal       int
	TabularLines    int      // table-looking rows in the scanned pages
	SampleTableRows []string // visual text rows from the first page
}

// AnalysisError marks the sample pair itself as unusable. It is terminal:
// there is no way to self-correct an unreadable input, so the workflow must
// not retry it.
type AnalysisError struct {
	TargetID string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed for %s: %v", e.TargetID, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Analyzer reads the sample pair for a target.
type Analyzer struct{}

// New creates an Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze reads a bounded prefix of the statement PDF and the full expected
// table, and bundles what the synthesizer needs to know about the target.
func (a *Analyzer) Analyze(pdfPath, csvPath, targetID string) (*Analysis, error) {
	timer := logging.StartTimer(logging.CategoryAnalyzer, "Analyze")
	defer timer.Stop()

	logging.Analyzer("Analyzing %s: pdf=%s csv=%s", targetID, pdfPath, csvPath)

	doc, err := statement.ReadDocument(pdfPath, MaxPagesScanned)
	if err != nil {
		return nil, &AnalysisError{TargetID: targetID, Err: err}
	}

	expected, err := statement.LoadCSV(csvPath)
	if err != nil {
		return nil, &AnalysisError{TargetID: targetID, Err: err}
	}

	analysis := &Analysis{
		TargetID:     targetID,
		Columns:      expected.Columns,
		ExpectedRows: expected.RowCount(),
		PagesScanned: len(doc.Pages),
		PageTotal:    doc.PageTotal,
		TabularLines: doc.TabularRowTotal(),
	}

	sample := expected.RowCount()
	if sample > SampleRowCount {
		sample = SampleRowCount
	}
	analysis.SampleRows = expected.Rows[:sample]

	text := doc.Text()
	if len(text) > ExcerptLimit {
		text = text[:ExcerptLimit]
	}
	analysis.Excerpt = text

	if len(doc.Pages) > 0 {
		rows := doc.Pages[0].RowLines
		if len(rows) > SampleRowCount {
			rows = rows[:SampleRowCount]
		}
		analysis.SampleTableRows = rows
	}

	logging.AnalyzerDebug("Analysis complete: columns=%d rows=%d pages=%d/%d tabular_lines=%d",
		len(analysis.Columns), analysis.ExpectedRows, analysis.PagesScanned, analysis.PageTotal, analysis.TabularLines)

	return analysis, nil
}

// Render produces the human-readable description embedded in synthesis
// prompts.
func (a *Analysis) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Statement analysis for target %q:\n\n", a.TargetID)

	fmt.Fprintf(&b, "Expected output schema (ordered columns):\n%s\n\n", strings.Join(a.Columns, " | "))

	b.WriteString("Sample expected rows:\n")
	for _, row := range a.SampleRows {
		fmt.Fprintf(&b, "  %s\n", strings.Join(row, " | "))
	}
	fmt.Fprintf(&b, "Total expected rows: %d\n\n", a.ExpectedRows)

	fmt.Fprintf(&b, "PDF content excerpt (first %d chars of %d scanned pages, %d total):\n%s\n\n",
		ExcerptLimit, a.PagesScanned, a.PageTotal, a.Excerpt)

	fmt.Fprintf(&b, "Table-looking rows found in scanned pages: %d\n", a.TabularLines)
	if len(a.SampleTableRows) > 0 {
		b.WriteString("Sample visual rows from page 1:\n")
		for _, row := range a.SampleTableRows {
			fmt.Fprintf(&b, "  %s\n", row)
		}
	}

	return b.String()
}
