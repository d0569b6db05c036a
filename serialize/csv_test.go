package serialize

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

func TestWriteCSV(t *testing.T) {
	records := []models.Record{
		{"title": "Widget A", "price": "$10.00", "sku": "A-1"},
		{"title": "Widget B", "price": nil},
	}

	var buf strings.Builder
	if err := WriteCSV(&buf, records, []string{"title", "price"}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), buf.String())
	}
	if lines[0] != "title,price,sku" {
		t.Errorf("header = %q, want requested fields first then extras sorted", lines[0])
	}
	if lines[1] != "Widget A,$10.00,A-1" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "Widget B,," {
		t.Errorf("row 2 = %q, want empty cells for missing values", lines[2])
	}
}

func TestWriteCSVQuotesDelimiters(t *testing.T) {
	records := []models.Record{
		{"title": `Widget "Pro", 2nd gen`, "description": "line one\nline two"},
	}

	var buf strings.Builder
	if err := WriteCSV(&buf, records, []string{"title", "description"}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"Widget ""Pro"", 2nd gen"`) {
		t.Errorf("comma/quote value not escaped:\n%s", out)
	}
	if !strings.Contains(out, "\"line one\nline two\"") {
		t.Errorf("newline value not quoted:\n%s", out)
	}
}

func TestWriteCSVEmptyRecordsFails(t *testing.T) {
	var buf strings.Builder
	err := WriteCSV(&buf, nil, []string{"title"})
	if err == nil {
		t.Fatal("WriteCSV() error = nil, want failure for empty record list")
	}
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) || scrapeErr.Code != models.ErrCodeSerialization {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeSerialization)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q before failing, want no output", buf.String())
	}
}

func TestWriteCSVRequestedFieldsAlwaysPresent(t *testing.T) {
	records := []models.Record{{"other": "x"}}

	var buf strings.Builder
	if err := WriteCSV(&buf, records, []string{"title", "price"}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != "title,price,other" {
		t.Errorf("header = %q, want requested fields kept even when absent from data", header)
	}
}
