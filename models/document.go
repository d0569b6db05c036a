package models

// SectionKind tags the variant of a ContentSection.
type SectionKind string

const (
	SectionHeading   SectionKind = "heading"
	SectionParagraph SectionKind = "paragraph"
	SectionList      SectionKind = "list"
	SectionTable     SectionKind = "table"
)

// Minimum text lengths enforced at section construction time. Shorter
// paragraphs and tables are never admitted into a document, so downstream
// code does not re-filter.
const (
	MinParagraphLen = 20
	MinTableLen     = 50
)

// ContentSection is one addressable unit of page content. Kind determines
// which optional fields are meaningful: Level for headings, Items for lists.
type ContentSection struct {
	Kind  SectionKind `json:"kind"`
	Text  string      `json:"text"`
	Level int         `json:"level,omitempty"`
	Items []string    `json:"items,omitempty"`
}

// ContentDocument is the normalized form of a PageSnapshot's HTML. It is
// derived deterministically by the segmenter and immutable afterwards.
//
// Sections are ordered by extraction pass (headings, then paragraphs, then
// lists, then tables), each pass in document order. Callers must not assume
// visual interleaving.
type ContentDocument struct {
	// SourceURL is the snapshot's effective URL.
	SourceURL string `json:"source_url"`

	// Title is the document title, falling back to the first heading and
	// then to "Untitled".
	Title string `json:"title"`

	// FullText is the body text with whitespace runs collapsed.
	FullText string `json:"full_text"`

	Sections []ContentSection `json:"sections"`

	// Links and Images are deduplicated absolute URLs.
	Links  []string `json:"links"`
	Images []string `json:"images"`

	// HeadingTexts collects heading section texts in document order.
	HeadingTexts []string `json:"heading_texts"`

	// Metadata is the union of meta-tag name/property → content pairs,
	// enriched with readability-derived fields (byline, excerpt, site name,
	// language) when available.
	Metadata map[string]string `json:"metadata"`
}
