package extractor

import (
	"regexp"
	"strings"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// NotFoundSentinel marks a field the heuristic rules could not resolve.
// It is a literal value, not an error: heuristic records are the system's
// ground-truth floor and never contain invented data.
const NotFoundSentinel = "not found"

// currencyPatterns are tried in order; the first match in a section's text
// becomes the price value, copied as a literal substring.
var currencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d{1,2})?`),
	regexp.MustCompile(`€\s?\d[\d,]*(?:[.,]\d{1,2})?`),
	regexp.MustCompile(`£\s?\d[\d,]*(?:\.\d{1,2})?`),
	regexp.MustCompile(`¥\s?\d[\d,]*`),
	regexp.MustCompile(`\d[\d,]*(?:\.\d{1,2})?\s?(?:USD|EUR|GBP|JPY)`),
}

// HeuristicExtractor is the deterministic, collaborator-free fallback. It
// derives the same record shape as the model path directly from segmented
// sections using fixed per-field rules.
type HeuristicExtractor struct{}

// NewHeuristicExtractor creates the fallback extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// ExtractHeuristic builds one record per content section using the per-field
// rules. When the document has no sections to work from, a single
// whole-document record is built instead, with the first few links and
// headings sampled as auxiliary fields.
func (h *HeuristicExtractor) ExtractHeuristic(doc *models.ContentDocument, spec models.FieldSpec) []models.Record {
	var records []models.Record

	for _, section := range doc.Sections {
		rec := make(models.Record, len(spec.Fields))
		resolved := false
		for _, field := range spec.Fields {
			value := resolveField(field, section.Text, doc)
			rec[field] = value
			if value != nil && value != NotFoundSentinel {
				resolved = true
			}
		}
		if resolved {
			records = append(records, rec)
		}
	}

	if len(records) > 0 {
		return models.DedupeRecords(records)
	}

	// ── Secondary strategy: one record from the whole document ─────
	rec := make(models.Record, len(spec.Fields)+2)
	for _, field := range spec.Fields {
		switch strings.ToLower(field) {
		case "title", "name":
			rec[field] = doc.Title
		default:
			rec[field] = resolveField(field, doc.FullText, doc)
		}
	}
	if len(doc.Links) > 0 {
		rec["links"] = strings.Join(sampleFirst(doc.Links, 3), ", ")
	}
	if len(doc.HeadingTexts) > 0 {
		rec["headings"] = strings.Join(sampleFirst(doc.HeadingTexts, 3), ", ")
	}
	return []models.Record{rec}
}

// resolveField applies the fixed rule for one requested field against the
// given text. Values are literal pattern matches or direct text copies,
// never synthesized.
func resolveField(field, text string, doc *models.ContentDocument) any {
	switch strings.ToLower(field) {
	case "title", "name":
		if text != "" {
			return text
		}
		return doc.Title
	case "description", "content", "text":
		if text == "" {
			return nil
		}
		return text
	case "link", "url", "source":
		return doc.SourceURL
	case "price", "cost", "amount":
		for _, pattern := range currencyPatterns {
			if match := pattern.FindString(text); match != "" {
				return match
			}
		}
		return NotFoundSentinel
	default:
		// No rule for this field; null is honest, a guess would not be.
		return nil
	}
}

func sampleFirst(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
