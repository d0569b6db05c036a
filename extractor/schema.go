package extractor

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// SchemaExtractor turns a caller-supplied map of field name to CSS selector
// into records without any model involvement. It is the precision path for
// pages whose structure the caller already knows.
type SchemaExtractor struct{}

// NewSchemaExtractor creates a selector-driven extractor.
func NewSchemaExtractor() *SchemaExtractor {
	return &SchemaExtractor{}
}

// ExtractBySelectors matches each selector against rawHTML and zips the
// results by position: the i-th match of every field forms the i-th record.
// Fields with fewer matches than the longest column yield null for the
// missing rows. An invalid selector fails the whole call, a selector that
// simply matches nothing does not.
func (e *SchemaExtractor) ExtractBySelectors(rawHTML string, selectors map[string]string) ([]models.Record, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSegmentation, "parsing HTML for selector extraction", err)
	}

	columns := make(map[string][]string, len(selectors))
	rows := 0
	for field, selector := range selectors {
		sel, err := cascadia.Parse(selector)
		if err != nil {
			return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "invalid CSS selector for field "+field, err)
		}
		var values []string
		for _, node := range cascadia.QueryAll(doc, sel) {
			if text := collapseWS(nodeText(node)); text != "" {
				values = append(values, text)
			}
		}
		columns[field] = values
		if len(values) > rows {
			rows = len(values)
		}
	}

	records := make([]models.Record, 0, rows)
	for i := 0; i < rows; i++ {
		rec := make(models.Record, len(columns))
		for field, values := range columns {
			if i < len(values) {
				rec[field] = values[i]
			} else {
				rec[field] = nil
			}
		}
		records = append(records, rec)
	}
	return models.DedupeRecords(records), nil
}

// nodeText walks the subtree collecting text nodes, skipping script and
// style content.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
