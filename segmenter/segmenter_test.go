package segmenter

import (
	"strings"
	"testing"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

func segment(t *testing.T, html string) *models.ContentDocument {
	t.Helper()
	doc, err := NewSegmenter().Segment(html, "https://shop.example/catalog")
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	return doc
}

func TestSegment_ParagraphLengthGate(t *testing.T) {
	doc := segment(t, `<html><body>
		<p>fifteen chars!!</p>
		<p>twenty five characters ok</p>
	</body></html>`)

	var paragraphs []string
	for _, sec := range doc.Sections {
		if sec.Kind == models.SectionParagraph {
			paragraphs = append(paragraphs, sec.Text)
		}
	}
	if len(paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph section, got %d: %v", len(paragraphs), paragraphs)
	}
	if paragraphs[0] != "twenty five characters ok" {
		t.Errorf("kept the wrong paragraph: %q", paragraphs[0])
	}
}

func TestSegment_TableLengthGate(t *testing.T) {
	short := `<table><tr><td>tiny</td></tr></table>`
	long := `<table><tr><td>` + strings.Repeat("cell content ", 10) + `</td></tr></table>`
	doc := segment(t, `<html><body>`+short+long+`</body></html>`)

	tables := 0
	for _, sec := range doc.Sections {
		if sec.Kind == models.SectionTable {
			tables++
		}
	}
	if tables != 1 {
		t.Errorf("expected 1 table section, got %d", tables)
	}
}

func TestSegment_TitleFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"document title wins", `<html><head><title>Catalog</title></head><body><h1>Heading</h1></body></html>`, "Catalog"},
		{"first heading fallback", `<html><body><h2>Spring Sale</h2></body></html>`, "Spring Sale"},
		{"untitled fallback", `<html><body><p>just a paragraph of sufficient length</p></body></html>`, "Untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if doc := segment(t, tt.html); doc.Title != tt.want {
				t.Errorf("title = %q, want %q", doc.Title, tt.want)
			}
		})
	}
}

func TestSegment_SectionPassOrdering(t *testing.T) {
	// Visually the paragraph precedes the heading, but sections are
	// collected pass by pass: headings first, then paragraphs, then lists,
	// then tables.
	doc := segment(t, `<html><body>
		<p>a paragraph that is certainly long enough</p>
		<h1>The Heading</h1>
		<ul><li>first item</li><li>second item</li></ul>
	</body></html>`)

	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	wantKinds := []models.SectionKind{models.SectionHeading, models.SectionParagraph, models.SectionList}
	for i, kind := range wantKinds {
		if doc.Sections[i].Kind != kind {
			t.Errorf("section[%d].Kind = %s, want %s", i, doc.Sections[i].Kind, kind)
		}
	}
	if doc.Sections[0].Level != 1 {
		t.Errorf("heading level = %d, want 1", doc.Sections[0].Level)
	}
	if len(doc.Sections[2].Items) != 2 {
		t.Errorf("list items = %d, want 2", len(doc.Sections[2].Items))
	}
}

func TestSegment_StripsBoilerplate(t *testing.T) {
	doc := segment(t, `<html><body>
		<nav>Home | About | Contact navigation strip</nav>
		<div class="advert-box">Buy our sponsor's amazing thing right now</div>
		<p>the real content paragraph stays in place</p>
		<footer>Copyright footer text that should vanish</footer>
	</body></html>`)

	if strings.Contains(doc.FullText, "navigation strip") {
		t.Error("nav content survived stripping")
	}
	if strings.Contains(doc.FullText, "sponsor") {
		t.Error("ad block survived stripping")
	}
	if strings.Contains(doc.FullText, "Copyright") {
		t.Error("footer survived stripping")
	}
	if !strings.Contains(doc.FullText, "real content paragraph") {
		t.Error("real content was stripped")
	}
}

func TestSegment_LinkExclusions(t *testing.T) {
	doc := segment(t, `<html><body>
		<a href="">empty</a>
		<a href="#">fragment</a>
		<a href="javascript:void(0)">script</a>
		<a href="/product/1">relative</a>
		<a href="https://other.example/x">absolute</a>
		<a href="/product/1">duplicate</a>
	</body></html>`)

	want := []string{"https://shop.example/product/1", "https://other.example/x"}
	if len(doc.Links) != len(want) {
		t.Fatalf("links = %v, want %v", doc.Links, want)
	}
	for i, link := range want {
		if doc.Links[i] != link {
			t.Errorf("links[%d] = %q, want %q", i, doc.Links[i], link)
		}
	}
}

func TestSegment_ImagesSkipDataURIs(t *testing.T) {
	doc := segment(t, `<html><body>
		<img src="data:image/png;base64,AAAA">
		<img src="/img/widget.jpg">
	</body></html>`)

	if len(doc.Images) != 1 || doc.Images[0] != "https://shop.example/img/widget.jpg" {
		t.Errorf("images = %v", doc.Images)
	}
}

func TestSegment_MetadataUnion(t *testing.T) {
	doc := segment(t, `<html><head>
		<meta name="description" content="A catalog page">
		<meta property="og:title" content="Catalog OG">
		<meta name="empty" content="">
	</head><body><p>enough text to be a paragraph here</p></body></html>`)

	if doc.Metadata["description"] != "A catalog page" {
		t.Errorf("description = %q", doc.Metadata["description"])
	}
	if doc.Metadata["og:title"] != "Catalog OG" {
		t.Errorf("og:title = %q", doc.Metadata["og:title"])
	}
	if _, present := doc.Metadata["empty"]; present {
		t.Error("empty-content meta tag should be excluded")
	}
}

func TestSegment_FullTextWhitespaceCollapsed(t *testing.T) {
	doc := segment(t, "<html><body><p>spaced     out\n\n\ttext that needs collapsing</p></body></html>")
	if strings.Contains(doc.FullText, "  ") {
		t.Errorf("whitespace runs survived: %q", doc.FullText)
	}
}
