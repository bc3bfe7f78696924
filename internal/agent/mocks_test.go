package agent

import (
	"context"

	"parsegen/internal/analyzer"
	"parsegen/internal/verifier"
)

// mockAnalyzer implements Analyzer with function fields.
type mockAnalyzer struct {
	AnalyzeFunc func(pdfPath, csvPath, targetID string) (*analyzer.Analysis, error)
	Calls       int
}

func (m *mockAnalyzer) Analyze(pdfPath, csvPath, targetID string) (*analyzer.Analysis, error) {
	m.Calls++
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(pdfPath, csvPath, targetID)
	}
	return &analyzer.Analysis{TargetID: targetID, Columns: []string{"Date", "Balance"}}, nil
}

// mockSynthesizer implements Synthesizer with function fields and records
// every repair invocation.
type mockSynthesizer struct {
	GenerateFunc func(ctx context.Context, a *analyzer.Analysis) (string, error)
	RepairFunc   func(ctx context.Context, a *analyzer.Analysis, previousCode, previousError string) (string, error)

	GenerateCalls int
	RepairCalls   int
	RepairCodes   []string
	RepairErrors  []string
}

func (m *mockSynthesizer) Generate(ctx context.Context, a *analyzer.Analysis) (string, error) {
	m.GenerateCalls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, a)
	}
	return "package main\n// generated\n", nil
}

func (m *mockSynthesizer) Repair(ctx context.Context, a *analyzer.Analysis, previousCode, previousError string) (string, error) {
	m.RepairCalls++
	m.RepairCodes = append(m.RepairCodes, previousCode)
	m.RepairErrors = append(m.RepairErrors, previousError)
	if m.RepairFunc != nil {
		return m.RepairFunc(ctx, a, previousCode, previousError)
	}
	return "package main\n// repaired\n", nil
}

// mockVerifier implements Verifier with a function field.
type mockVerifier struct {
	VerifyFunc func(ctx context.Context, code, pdfPath, csvPath string) (*verifier.Report, error)
	Calls      int
}

func (m *mockVerifier) Verify(ctx context.Context, code, pdfPath, csvPath string) (*verifier.Report, error) {
	m.Calls++
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, code, pdfPath, csvPath)
	}
	return passingReport(), nil
}

func passingReport() *verifier.Report {
	return &verifier.Report{
		Passed:     true,
		ShapeMatch: true,
		Message:    "perfect match",
	}
}

func failingReport(message string) *verifier.Report {
	return &verifier.Report{
		Passed:          false,
		ShapeMatch:      true,
		DifferenceTotal: 1,
		Differences: []verifier.CellDiff{
			{Row: 0, Column: "Balance", Actual: "999", Expected: "100"},
		},
		Message: message,
	}
}
