package segmenter

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// extractMetadata builds the document metadata map: the union of all
// meta-tag name/property → content pairs, enriched with readability-derived
// fields where the tags were silent.
//
// Readability runs on the original rawHTML, not the stripped tree, because
// byline and site-name detection depend on exactly the furniture the
// stripper removes.
func extractMetadata(doc *goquery.Document, rawHTML, sourceURL string) map[string]string {
	meta := make(map[string]string)

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		if content == "" {
			return
		}
		if name, ok := s.Attr("name"); ok && name != "" {
			meta[name] = content
		}
		if prop, ok := s.Attr("property"); ok && prop != "" {
			meta[prop] = content
		}
	})

	for key, value := range readabilityMetadata(rawHTML, sourceURL) {
		if _, present := meta[key]; !present && value != "" {
			meta[key] = value
		}
	}

	return meta
}

// readabilityMetadata runs the Mozilla Readability algorithm purely for its
// metadata output. Failures are logged and produce an empty map; metadata
// enrichment must never fail a segmentation.
func readabilityMetadata(rawHTML, sourceURL string) map[string]string {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		return nil
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("readability metadata pass failed", "url", sourceURL, "error", err)
		return nil
	}

	return map[string]string{
		"byline":    article.Byline,
		"excerpt":   article.Excerpt,
		"site_name": article.SiteName,
		"language":  article.Language,
	}
}
