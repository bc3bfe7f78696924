package statement

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Extraction quality is exercised against real statements via the verify
// subcommand; unit tests cover the error paths and the derived views.

func TestReadDocument_MissingFile(t *testing.T) {
	if _, err := ReadDocument(filepath.Join(t.TempDir(), "missing.pdf"), 3); err == nil {
		t.Fatal("ReadDocument() expected error for missing file")
	}
}

func TestReadDocument_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a PDF"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := ReadDocument(path, 3); err == nil {
		t.Fatal("ReadDocument() expected error for a non-PDF file")
	}
}

func TestPagesAndRowLines_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pdf")
	if _, err := Pages(path); err == nil {
		t.Error("Pages() expected error for missing file")
	}
	if _, err := RowLines(path); err == nil {
		t.Error("RowLines() expected error for missing file")
	}
}

func TestDocument_Text(t *testing.T) {
	doc := &Document{
		Pages: []PageContent{
			{Number: 1, Text: "first page"},
			{Number: 2, Text: "second page"},
		},
	}

	text := doc.Text()
	for _, want := range []string{"=== Page 1 ===", "first page", "=== Page 2 ===", "second page"} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() missing %q in:\n%s", want, text)
		}
	}
}

func TestDocument_TabularRowTotal(t *testing.T) {
	doc := &Document{
		Pages: []PageContent{
			{Number: 1, TabularRows: 12},
			{Number: 2, TabularRows: 30},
		},
	}
	if got := doc.TabularRowTotal(); got != 42 {
		t.Errorf("TabularRowTotal() = %d, want 42", got)
	}
}
