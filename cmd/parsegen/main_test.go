package main

import (
	"os"
	"path/filepath"
	"testing"
)

func seedTarget(t *testing.T, root, targetID string, pdfs ...string) {
	t.Helper()
	dir := filepath.Join(root, targetID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range pdfs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0644); err != nil {
			t.Fatalf("write pdf: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "result.csv"), []byte("Date,Balance\n"), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
}

func TestFindStatementPDF(t *testing.T) {
	root := t.TempDir()
	seedTarget(t, root, "icici", "z_statement.pdf", "a_statement.pdf")

	got, err := findStatementPDF(filepath.Join(root, "icici"))
	if err != nil {
		t.Fatalf("findStatementPDF() error = %v", err)
	}
	// Lexicographically first, so repeated runs pick the same sample.
	if filepath.Base(got) != "a_statement.pdf" {
		t.Errorf("picked %q, want a_statement.pdf", got)
	}
}

func TestFindStatementPDF_Empty(t *testing.T) {
	if _, err := findStatementPDF(t.TempDir()); err == nil {
		t.Fatal("findStatementPDF() expected error for directory without PDFs")
	}
}

func TestBuildRunSpec(t *testing.T) {
	root := t.TempDir()
	seedTarget(t, root, "icici", "icici_sample.pdf")

	oldData, oldOut := dataDir, outDir
	dataDir = root
	outDir = filepath.Join(root, "custom_parsers")
	t.Cleanup(func() { dataDir, outDir = oldData, oldOut })

	spec, err := buildRunSpec("icici", 4)
	if err != nil {
		t.Fatalf("buildRunSpec() error = %v", err)
	}
	if spec.TargetID != "icici" {
		t.Errorf("TargetID = %q", spec.TargetID)
	}
	if filepath.Base(spec.PDFPath) != "icici_sample.pdf" {
		t.Errorf("PDFPath = %q", spec.PDFPath)
	}
	if filepath.Base(spec.CSVPath) != "result.csv" {
		t.Errorf("CSVPath = %q", spec.CSVPath)
	}
	if spec.ArtifactPath != filepath.Join(outDir, "icici_parser.go") {
		t.Errorf("ArtifactPath = %q", spec.ArtifactPath)
	}
	if spec.MaxIterations != 4 {
		t.Errorf("MaxIterations = %d, want 4", spec.MaxIterations)
	}
}

func TestBuildRunSpec_MissingCSV(t *testing.T) {
	root := t.TempDir()
	seedTarget(t, root, "sbi", "sbi_sample.pdf")
	if err := os.Remove(filepath.Join(root, "sbi", "result.csv")); err != nil {
		t.Fatalf("remove csv: %v", err)
	}

	oldData := dataDir
	dataDir = root
	t.Cleanup(func() { dataDir = oldData })

	if _, err := buildRunSpec("sbi", 3); err == nil {
		t.Fatal("buildRunSpec() expected error for missing result.csv")
	}
}

func TestBuildRunSpec_EmptyTarget(t *testing.T) {
	if _, err := buildRunSpec("", 3); err == nil {
		t.Fatal("buildRunSpec() expected error for empty target")
	}
}
