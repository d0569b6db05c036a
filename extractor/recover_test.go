package extractor

import (
	"testing"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

func TestRecoverRecordsStrategies(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []models.Record
		wantOK   bool
	}{
		{
			name:     "clean bare array",
			response: `[{"title":"Widget","price":"$10"}]`,
			want:     []models.Record{{"title": "Widget", "price": "$10"}},
			wantOK:   true,
		},
		{
			name:     "array embedded in prose",
			response: "Sure! Here are the products:\n[{\"title\":\"A\"},{\"title\":\"B\"}]\nLet me know if you need more.",
			want:     []models.Record{{"title": "A"}, {"title": "B"}},
			wantOK:   true,
		},
		{
			name:     "trailing commas repaired",
			response: `[{"title":"A",},{"title":"B",},]`,
			want:     []models.Record{{"title": "A"}, {"title": "B"}},
			wantOK:   true,
		},
		{
			name:     "lone object wrapped",
			response: `The only match is {"title":"Solo","price":"$5"} on this page.`,
			want:     []models.Record{{"title": "Solo", "price": "$5"}},
			wantOK:   true,
		},
		{
			name:     "labeled lead-in",
			response: "Result: see below\n\nresults: [{\"title\":\"Labeled\"}]",
			want:     []models.Record{{"title": "Labeled"}},
			wantOK:   true,
		},
		{
			name:     "brackets inside string values survive",
			response: `[{"title":"Array [draft] notes","desc":"a \"quoted\" value"}]`,
			want:     []models.Record{{"title": "Array [draft] notes", "desc": `a "quoted" value`}},
			wantOK:   true,
		},
		{
			name:     "empty array is a valid zero-record response",
			response: `[]`,
			want:     []models.Record{},
			wantOK:   true,
		},
		{
			name:     "pure prose is unrecoverable",
			response: "I could not find any products on this page.",
			wantOK:   false,
		},
		{
			name:     "unbalanced array is unrecoverable",
			response: `[{"title":"A"`,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := recoverRecords(tt.response)
			if ok != tt.wantOK {
				t.Fatalf("recoverRecords() ok = %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("recoverRecords() = %d records, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].Canonical() != tt.want[i].Canonical() {
					t.Errorf("record %d = %s, want %s", i, got[i].Canonical(), tt.want[i].Canonical())
				}
			}
		})
	}
}

// A usable array earlier in the response must win over a labeled one later,
// even when a label precedes both.
func TestRecoverRecordsBareArrayBeatsLabel(t *testing.T) {
	response := `Result: [{"title":"first"}] and also data: [{"title":"second"}]`
	got, ok := recoverRecords(response)
	if !ok {
		t.Fatal("recoverRecords() failed")
	}
	if len(got) != 1 || got[0]["title"] != "first" {
		t.Errorf("got %v, want the first array's record", got)
	}
}

func TestNormalizeRecord(t *testing.T) {
	rec := normalizeRecord(map[string]any{
		"str":    "hello",
		"num":    12.5,
		"whole":  3.0,
		"flag":   true,
		"absent": nil,
		"nested": map[string]any{"a": "b"},
	})

	checks := []struct {
		key  string
		want any
	}{
		{"str", "hello"},
		{"num", "12.5"},
		{"whole", "3"},
		{"flag", "true"},
		{"absent", nil},
		{"nested", `{"a":"b"}`},
	}
	for _, c := range checks {
		if rec[c.key] != c.want {
			t.Errorf("normalizeRecord()[%q] = %v, want %v", c.key, rec[c.key], c.want)
		}
	}
}

func TestBracketSpan(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"simple", `x [1,2] y`, `[1,2]`, true},
		{"nested", `[[1],[2]]`, `[[1],[2]]`, true},
		{"bracket in string", `[{"k":"a ] b"}]`, `[{"k":"a ] b"}]`, true},
		{"escaped quote in string", `[{"k":"a \" ] b"}]`, `[{"k":"a \" ] b"}]`, true},
		{"no open", `nothing here`, "", false},
		{"unterminated", `[1,2`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bracketSpan(tt.text, '[', ']')
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("bracketSpan() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
