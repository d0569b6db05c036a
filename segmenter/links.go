package segmenter

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractLinks collects deduplicated absolute link targets in document
// order. Empty, fragment-only and script-protocol anchors are excluded.
func extractLinks(doc *goquery.Document, sourceURL string) []string {
	base, baseErr := url.Parse(sourceURL)

	links := []string{}
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		abs := href
		if baseErr == nil {
			resolved, err := base.Parse(href)
			if err != nil {
				return
			}
			// Dropping non-web schemes covers javascript:, mailto:, tel:.
			if resolved.Scheme != "http" && resolved.Scheme != "https" {
				return
			}
			abs = resolved.String()
		} else if strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	return links
}

// extractImages collects deduplicated absolute image sources, skipping
// data URIs.
func extractImages(doc *goquery.Document, sourceURL string) []string {
	base, baseErr := url.Parse(sourceURL)

	images := []string{}
	seen := make(map[string]struct{})

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}

		abs := src
		if baseErr == nil {
			resolved, err := base.Parse(src)
			if err != nil || resolved.Scheme == "data" {
				return
			}
			abs = resolved.String()
		}

		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		images = append(images, abs)
	})

	return images
}
