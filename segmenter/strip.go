package segmenter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// strippedTags are elements removed wholesale before any extraction: they
// carry no content, or only site furniture.
var strippedTags = []string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "header", "footer", "aside", "form",
}

// boilerplateClassPatterns are class/id substrings that mark advertisement
// and promo blocks. An element whose class or id attribute contains one of
// these is removed with its subtree.
var boilerplateClassPatterns = []string{
	"advert", "sponsor", "promo", "banner",
	"sidebar", "cookie", "popup", "modal",
	"newsletter", "social", "share", "breadcrumb",
}

// stripBoilerplate removes non-content elements from the document in place.
// This runs before every extraction pass so downstream heuristics only ever
// see content-bearing markup.
func stripBoilerplate(doc *goquery.Document) {
	doc.Find(strings.Join(strippedTags, ", ")).Remove()

	doc.Find("[class], [id]").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		combined := strings.ToLower(class + " " + id)
		for _, pat := range boilerplateClassPatterns {
			if strings.Contains(combined, pat) {
				sel.Remove()
				return
			}
		}
	})
}
