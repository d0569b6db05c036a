package extractor

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/m-dehghani/AI-scraper-using-mcp/config"
	"github.com/m-dehghani/AI-scraper-using-mcp/llm"
	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// fakeCompleter answers by matching a marker substring against the prompt,
// so behavior stays deterministic under concurrent chunk workers. Prompts
// matching an entry in errs fail; unmatched prompts get an empty array.
type fakeCompleter struct {
	responses map[string]string
	errs      map[string]error
	calls     atomic.Int64
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, _ llm.CompleteOptions) (string, error) {
	f.calls.Add(1)
	for marker, err := range f.errs {
		if strings.Contains(prompt, marker) {
			return "", err
		}
	}
	for marker, response := range f.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return "[]", nil
}

func testExtractorConfig() config.ExtractorConfig {
	return config.ExtractorConfig{
		MinContentLength:     100,
		ChunkSize:            4000,
		MaxConcurrentChunks:  2,
		CompletionsPerSecond: 100,
	}
}

// twoChunkText produces text that chunkText splits at size 100 into one
// chunk of a's and one of b's.
func twoChunkText() string {
	return strings.Repeat("a", 100) + strings.Repeat("b", 100)
}

func testDocument(text string) *models.ContentDocument {
	return &models.ContentDocument{
		SourceURL: "https://example.com/products",
		Title:     "Products",
		FullText:  text,
	}
}

func TestExtractInsufficientContentSkipsModel(t *testing.T) {
	tests := []struct {
		name string
		doc  *models.ContentDocument
	}{
		{"short text", testDocument("almost nothing")},
		{"challenge title", &models.ContentDocument{
			Title:    "Just a moment...",
			FullText: strings.Repeat("filler text ", 50),
		}},
		{"challenge body", &models.ContentDocument{
			Title:    "Products",
			FullText: "Checking your browser before accessing the site. " + strings.Repeat("x", 100),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompleter{}
			ex := NewChunkedExtractor(fake, testExtractorConfig(), config.LLMConfig{})

			outcome, err := ex.Extract(context.Background(), tt.doc, models.FieldSpec{Fields: []string{"title"}}, "", 0)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if outcome.SufficientContent {
				t.Error("SufficientContent = true, want false")
			}
			if len(outcome.Records) != 0 {
				t.Errorf("got %d records, want 0", len(outcome.Records))
			}
			if got := fake.calls.Load(); got != 0 {
				t.Errorf("completer called %d times, want 0", got)
			}
		})
	}
}

func TestExtractMergesChunksInOrder(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"aaa": `[{"title":"Widget A","price":"$10.00"}]`,
		"bbb": `[{"title":"Widget B","price":"$20.00"},{"title":"Widget A","price":"$10.00"}]`,
	}}
	ex := NewChunkedExtractor(fake, testExtractorConfig(), config.LLMConfig{})

	outcome, err := ex.Extract(context.Background(), testDocument(twoChunkText()),
		models.FieldSpec{Fields: []string{"title", "price"}}, "products", 100)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !outcome.SufficientContent {
		t.Fatal("SufficientContent = false, want true")
	}
	if outcome.Source != models.SourceModel {
		t.Errorf("Source = %q, want %q", outcome.Source, models.SourceModel)
	}
	if got := fake.calls.Load(); got != 2 {
		t.Errorf("completer called %d times, want 2", got)
	}
	// Widget A appears in both chunks; the first chunk's copy survives and
	// keeps its position.
	if len(outcome.Records) != 2 {
		t.Fatalf("got %d records after dedup, want 2: %v", len(outcome.Records), outcome.Records)
	}
	if outcome.Records[0]["title"] != "Widget A" || outcome.Records[1]["title"] != "Widget B" {
		t.Errorf("record order not preserved: %v", outcome.Records)
	}
}

func TestExtractAbsorbsPartialChunkFailure(t *testing.T) {
	fake := &fakeCompleter{
		responses: map[string]string{"bbb": `[{"title":"Survivor"}]`},
		errs:      map[string]error{"aaa": errors.New("upstream 500")},
	}
	ex := NewChunkedExtractor(fake, testExtractorConfig(), config.LLMConfig{})

	outcome, err := ex.Extract(context.Background(), testDocument(twoChunkText()),
		models.FieldSpec{Fields: []string{"title"}}, "", 100)
	if err != nil {
		t.Fatalf("Extract() error = %v, want partial failure absorbed", err)
	}
	if len(outcome.Records) != 1 || outcome.Records[0]["title"] != "Survivor" {
		t.Errorf("got %v, want the surviving chunk's record", outcome.Records)
	}
}

func TestExtractFailsWhenEveryChunkFails(t *testing.T) {
	fake := &fakeCompleter{
		errs: map[string]error{
			"aaa": errors.New("upstream 500"),
			"bbb": errors.New("upstream 500"),
		},
	}
	ex := NewChunkedExtractor(fake, testExtractorConfig(), config.LLMConfig{})

	_, err := ex.Extract(context.Background(), testDocument(twoChunkText()),
		models.FieldSpec{Fields: []string{"title"}}, "", 100)
	if err == nil {
		t.Fatal("Extract() error = nil, want total failure")
	}
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) || scrapeErr.Code != models.ErrCodeExtractionRecovery {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeExtractionRecovery)
	}
}

func TestExtractUnrecoverableChunkContributesNothing(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"aaa": "I'm sorry, I cannot find any structured data here.",
		"bbb": `[{"title":"Found"}]`,
	}}
	ex := NewChunkedExtractor(fake, testExtractorConfig(), config.LLMConfig{})

	outcome, err := ex.Extract(context.Background(), testDocument(twoChunkText()),
		models.FieldSpec{Fields: []string{"title"}}, "", 100)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(outcome.Records) != 1 || outcome.Records[0]["title"] != "Found" {
		t.Errorf("got %v, want only the recoverable chunk's record", outcome.Records)
	}
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"empty", "", 10, nil},
		{"single short", "hello", 10, []string{"hello"}},
		{"exact boundary", "abcdef", 3, []string{"abc", "def"}},
		{"remainder", "abcdefg", 3, []string{"abc", "def", "g"}},
		{"multibyte runes stay intact", "héllo wörld", 4, []string{"héll", "o wö", "rld"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunkText(tt.text, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("chunkText() = %d chunks %q, want %d", len(got), got, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildPromptIncludesFieldsAndChunk(t *testing.T) {
	prompt := buildPrompt("all products with prices", models.FieldSpec{
		Target: "products",
		Fields: []string{"title", "price"},
	}, "Widget A costs $10.00")

	for _, want := range []string{"all products with prices", "products", "title, price", "Widget A costs $10.00", "JSON array"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestNewChunkedExtractorDefaultsZeroValueConfig(t *testing.T) {
	fake := &fakeCompleter{responses: map[string]string{
		"Widget": `[{"title":"Widget A"}]`,
	}}
	ex := NewChunkedExtractor(fake, config.ExtractorConfig{}, config.LLMConfig{})

	if ex.cfg.ChunkSize != defaultChunkSize {
		t.Errorf("ChunkSize = %d, want %d", ex.cfg.ChunkSize, defaultChunkSize)
	}

	// A zero-value config must still extract: chunking with a usable
	// window, limiter not stalled at zero tokens per second.
	text := "Widget A costs $10.00. " + strings.Repeat("filler ", 30)
	outcome, err := ex.Extract(context.Background(), testDocument(text),
		models.FieldSpec{Fields: []string{"title"}}, "", 0)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(outcome.Records) != 1 {
		t.Errorf("got %d records, want 1", len(outcome.Records))
	}
}
