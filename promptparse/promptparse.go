// Package promptparse turns a free-form scrape request ("get me all products
// with prices and ratings") into a FieldSpec. It is a deterministic keyword
// scanner, not a language model: the same text always yields the same spec.
package promptparse

import (
	"sort"
	"strings"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// fieldAliases maps surface forms found in request text to canonical field
// names. Longer aliases are matched as-is; matching is case-insensitive.
var fieldAliases = []struct {
	alias     string
	canonical string
}{
	{"titles", "title"},
	{"title", "title"},
	{"names", "title"},
	{"name", "title"},
	{"headlines", "title"},
	{"headline", "title"},
	{"prices", "price"},
	{"price", "price"},
	{"costs", "price"},
	{"cost", "price"},
	{"descriptions", "description"},
	{"description", "description"},
	{"summaries", "description"},
	{"summary", "description"},
	{"links", "link"},
	{"link", "link"},
	{"urls", "url"},
	{"url", "url"},
	{"images", "image"},
	{"image", "image"},
	{"ratings", "rating"},
	{"rating", "rating"},
	{"reviews", "rating"},
	{"authors", "author"},
	{"author", "author"},
	{"dates", "date"},
	{"date", "date"},
	{"locations", "location"},
	{"location", "location"},
	{"emails", "email"},
	{"email", "email"},
	{"phones", "phone"},
	{"phone", "phone"},
}

// targetNouns are entity labels recognized as extraction targets, tried in
// request-text order.
var targetNouns = []string{
	"products", "articles", "listings", "jobs", "posts", "events",
	"books", "reviews", "companies", "properties", "recipes", "courses",
	"news", "items",
}

// defaultFields is the spec used when the text names no recognizable field.
var defaultFields = []string{"title", "description", "link"}

// Parse derives a FieldSpec from free-form request text. Fields appear in
// the order they occur in the text, deduplicated by canonical name. Text
// naming no known field gets a generic title/description/link spec, so a
// vague request still produces usable records.
func Parse(text string) models.FieldSpec {
	lower := strings.ToLower(text)

	type hit struct {
		canonical string
		index     int
	}
	var hits []hit
	seen := make(map[string]int) // canonical name -> position in hits
	for _, fa := range fieldAliases {
		idx := indexWord(lower, fa.alias)
		if idx < 0 {
			continue
		}
		if pos, dup := seen[fa.canonical]; dup {
			// A later alias for the same field may occur earlier in the
			// text; keep the earliest occurrence.
			if idx < hits[pos].index {
				hits[pos].index = idx
			}
			continue
		}
		seen[fa.canonical] = len(hits)
		hits = append(hits, hit{canonical: fa.canonical, index: idx})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].index < hits[j].index })

	fields := make([]string, 0, len(hits))
	for _, h := range hits {
		fields = append(fields, h.canonical)
	}
	if len(fields) == 0 {
		fields = append(fields, defaultFields...)
	}

	return models.FieldSpec{
		Target: parseTarget(lower),
		Fields: fields,
	}
}

func parseTarget(lower string) string {
	best := ""
	bestIdx := -1
	for _, noun := range targetNouns {
		idx := indexWord(lower, noun)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best = noun
			bestIdx = idx
		}
	}
	if best == "" {
		return "items"
	}
	return best
}

// indexWord finds needle in haystack at a word boundary, so "cost" does not
// match inside "costume".
func indexWord(haystack, needle string) int {
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		abs := from + idx
		beforeOK := abs == 0 || !isWordChar(haystack[abs-1])
		afterOK := abs+len(needle) == len(haystack) || !isWordChar(haystack[abs+len(needle)])
		if beforeOK && afterOK {
			return abs
		}
		from = abs + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
