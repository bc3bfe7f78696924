package statement

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageContent holds the extracted content of one PDF page.
type PageContent struct {
	Number      int
	Text        string   // plain text of the whole page
	RowLines    []string // visual text rows, top to bottom
	TabularRows int      // rows with 3+ fragments, a coarse "looks like a table" signal
}

// Document is an extracted view of a statement PDF.
type Document struct {
	Path      string
	PageTotal int
	Pages     []PageContent // at most the first maxPages pages
}

// ReadDocument extracts text from the first maxPages pages of a statement
// PDF. maxPages <= 0 means all pages. Pages that fail to extract are
// skipped rather than failing the whole document; scanned statements often
// contain a decorative page the library cannot handle.
func ReadDocument(path string, maxPages int) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	limit := total
	if maxPages > 0 && maxPages < total {
		limit = maxPages
	}

	doc := &Document{Path: path, PageTotal: total}
	for i := 1; i <= limit; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		content := PageContent{Number: i}
		if text, err := page.GetPlainText(nil); err == nil {
			content.Text = text
		}

		if rows, err := page.GetTextByRow(); err == nil {
			for _, row := range rows {
				fragments := make([]string, 0, len(row.Content))
				for _, text := range row.Content {
					if s := strings.TrimSpace(text.S); s != "" {
						fragments = append(fragments, s)
					}
				}
				if len(fragments) == 0 {
					continue
				}
				content.RowLines = append(content.RowLines, strings.Join(fragments, " "))
				if len(fragments) >= 3 {
					content.TabularRows++
				}
			}
		}

		doc.Pages = append(doc.Pages, content)
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("no readable pages in %s", path)
	}
	return doc, nil
}

// Text concatenates the extracted page texts with a page marker, matching
// what the analyzer feeds into prompts.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.Pages {
		fmt.Fprintf(&b, "\n=== Page %d ===\n", p.Number)
		b.WriteString(p.Text)
	}
	return b.String()
}

// TabularRowTotal sums the table-looking rows across extracted pages.
func (d *Document) TabularRowTotal() int {
	total := 0
	for _, p := range d.Pages {
		total += p.TabularRows
	}
	return total
}

// Pages returns the plain text of every page of a statement PDF. It is one
// of the two read operations exposed to sandboxed candidate parsers.
func Pages(path string) ([]string, error) {
	doc, err := ReadDocument(path, 0)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		texts = append(texts, p.Text)
	}
	return texts, nil
}

// RowLines returns every visual text row of a statement PDF in reading
// order across all pages. Bank statements are line-oriented, so this is the
// form most generated parsers work from.
func RowLines(path string) ([]string, error) {
	doc, err := ReadDocument(path, 0)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, p := range doc.Pages {
		lines = append(lines, p.RowLines...)
	}
	return lines, nil
}
