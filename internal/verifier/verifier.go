package verifier

import (
	"context"
	"fmt"

	"parsegen/internal/logging"
	"parsegen/internal/statement"
)

// Verifier executes a candidate against the real statement and compares the
// result to the expected table.
type Verifier struct {
	exec *Executor
}

// New creates a Verifier.
func New() *Verifier {
	return &Verifier{exec: NewExecutor()}
}

// Verify runs the candidate and scores its output. The expected table is
// loaded fresh on every attempt. Execution faults return an
// *ExecutionError; a table that runs but disagrees returns a failing Report
// with a nil error.
func (v *Verifier) Verify(ctx context.Context, code, pdfPath, csvPath string) (*Report, error) {
	timer := logging.StartTimer(logging.CategoryVerifier, "Verify")
	defer timer.Stop()

	rows, err := v.exec.Run(ctx, code, pdfPath)
	if err != nil {
		return nil, err
	}

	actual, err := statement.FromRows(rows)
	if err != nil {
		return nil, &ExecutionError{Stage: "run", Err: fmt.Errorf("candidate returned malformed table: %w", err)}
	}

	expected, err := statement.LoadCSV(csvPath)
	if err != nil {
		return nil, fmt.Errorf("load expected table: %w", err)
	}

	report := Compare(actual, expected)
	logging.Verifier("Verification: passed=%v shape=%v diffs=%d",
		report.Passed, report.ShapeMatch, report.DifferenceTotal)
	return report, nil
}
