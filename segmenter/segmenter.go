package segmenter

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// Segmenter turns raw page HTML into a normalized ContentDocument. Segment
// is a pure function of its input; the struct only exists to hold the
// reusable Markdown converter (goroutine-safe, created once).
type Segmenter struct {
	mdConverter *converter.Converter
}

// NewSegmenter initialises the Segmenter with a pre-configured Markdown
// converter.
func NewSegmenter() *Segmenter {
	return &Segmenter{mdConverter: newMarkdownConverter()}
}

var wsRun = regexp.MustCompile(`\s+`)

// collapseWhitespace reduces any run of whitespace to a single space.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(wsRun.ReplaceAllString(s, " "))
}

// Segment parses rawHTML into a ContentDocument.
//
// Boilerplate is stripped before any extraction, so the section passes and
// the heuristic extractor downstream never see nav bars, ads or footers.
// Sections are collected in four independent passes — headings, paragraphs,
// lists, tables — each in document order, concatenated in that pass order.
// Paragraphs and tables below the construction-time length gates are never
// admitted.
func (s *Segmenter) Segment(rawHTML, sourceURL string) (*models.ContentDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		// net/html is permissive enough that this is effectively
		// unreachable for real pages, but the contract stays honest.
		return nil, models.NewScrapeError(models.ErrCodeSegmentation, "failed to parse HTML", err)
	}

	stripBoilerplate(doc)

	// ── Title: <title> → first heading → "Untitled" ─────────────────
	title := collapseWhitespace(doc.Find("title").First().Text())
	if title == "" {
		title = collapseWhitespace(doc.Find("h1, h2, h3, h4, h5, h6").First().Text())
	}
	if title == "" {
		title = "Untitled"
	}

	// ── Full text ───────────────────────────────────────────────────
	body := doc.Find("body")
	var fullText string
	if body.Length() > 0 {
		fullText = collapseWhitespace(body.Text())
	} else {
		fullText = collapseWhitespace(doc.Text())
	}

	// ── Section passes ──────────────────────────────────────────────
	var sections []models.ContentSection
	var headingTexts []string

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		text := collapseWhitespace(sel.Text())
		if text == "" {
			return
		}
		sections = append(sections, models.ContentSection{
			Kind:  models.SectionHeading,
			Text:  text,
			Level: headingLevel(goquery.NodeName(sel)),
		})
		headingTexts = append(headingTexts, text)
	})

	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := collapseWhitespace(sel.Text())
		if len(text) <= models.MinParagraphLen {
			return
		}
		sections = append(sections, models.ContentSection{
			Kind: models.SectionParagraph,
			Text: text,
		})
	})

	doc.Find("ul, ol").Each(func(_ int, sel *goquery.Selection) {
		var items []string
		sel.Find("li").Each(func(_ int, li *goquery.Selection) {
			if item := collapseWhitespace(li.Text()); item != "" {
				items = append(items, item)
			}
		})
		if len(items) == 0 {
			return
		}
		sections = append(sections, models.ContentSection{
			Kind:  models.SectionList,
			Text:  strings.Join(items, " "),
			Items: items,
		})
	})

	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		text := collapseWhitespace(sel.Text())
		if len(text) <= models.MinTableLen {
			return
		}
		sections = append(sections, models.ContentSection{
			Kind: models.SectionTable,
			Text: text,
		})
	})

	return &models.ContentDocument{
		SourceURL:    sourceURL,
		Title:        title,
		FullText:     fullText,
		Sections:     sections,
		Links:        extractLinks(doc, sourceURL),
		Images:       extractImages(doc, sourceURL),
		HeadingTexts: headingTexts,
		Metadata:     extractMetadata(doc, rawHTML, sourceURL),
	}, nil
}

// headingLevel maps a heading tag name to its numeric level.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 1
}
