package models

import "time"

// PageSnapshot is a point-in-time capture of a rendered page. It is produced
// once per acquisition attempt and never mutated afterwards.
type PageSnapshot struct {
	// URL is the effective URL after redirects.
	URL string `json:"url"`

	// Title is the rendered document title.
	Title string `json:"title"`

	// RawText is the visible text of the rendered page.
	RawText string `json:"raw_text"`

	// RawHTML is the full serialized document.
	RawHTML string `json:"raw_html"`

	// FetchedAt is when the snapshot was taken.
	FetchedAt time.Time `json:"fetched_at"`

	// ProcessingTimeMs is the wall time spent acquiring the page.
	ProcessingTimeMs int64 `json:"processing_time_ms"`

	// ContentLength is len(RawHTML).
	ContentLength int `json:"content_length"`

	// OK reports whether acquisition succeeded. ErrorDetail carries the
	// cause when it did not.
	OK          bool   `json:"ok"`
	ErrorDetail string `json:"error_detail,omitempty"`

	// FetchMethod records how the page was fetched: "http" or "browser".
	FetchMethod string `json:"fetch_method,omitempty"`

	// ScrollIterations is how many scroll passes actually ran before the
	// page stopped growing.
	ScrollIterations int `json:"scroll_iterations,omitempty"`
}
