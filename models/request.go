package models

// FieldSpec names the entity to extract and the fields each record should
// carry. It is produced by the prompt parser from the user's free-form
// request and treated as data from then on.
type FieldSpec struct {
	// Target is the label of the entity being extracted, e.g. "products".
	Target string `json:"target"`

	// Fields is the ordered list of requested field names, e.g.
	// ["title", "price"]. Order is preserved into serialization.
	Fields []string `json:"fields"`
}

// ScrapeRequest describes one acquisition-and-extraction run.
// It is immutable once Defaults has been applied.
type ScrapeRequest struct {
	// URL is the target page. Required.
	URL string `json:"url" binding:"required,url"`

	// Prompt is the original free-form user request, embedded into every
	// extraction prompt so the model sees the user's intent verbatim.
	Prompt string `json:"prompt,omitempty"`

	// Spec names the target entity and the requested fields. When empty it
	// is derived from Prompt by the prompt parser.
	Spec FieldSpec `json:"spec,omitempty"`

	// MaxScrollAttempts bounds the infinite-scroll loop. Zero disables
	// scrolling entirely and is a meaningful value, so Defaults leaves it
	// alone.
	MaxScrollAttempts int `json:"max_scroll_attempts,omitempty" binding:"omitempty,min=0,max=50"`

	// ScrollDelayMs is the wait between scroll iterations, giving
	// lazy-loaded content time to arrive. Default: 1500.
	ScrollDelayMs int `json:"scroll_delay_ms,omitempty" binding:"omitempty,min=0,max=30000"`

	// ChunkSizeChars is the character window size for chunked extraction.
	// Default: 4000.
	ChunkSizeChars int `json:"chunk_size_chars,omitempty" binding:"omitempty,min=500,max=32000"`

	// Timeout is the maximum duration in seconds for the whole acquisition
	// (navigation + rendering + scrolling). Default: 60. Max: 180.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=180"`

	// MaxAgeMs is the oldest cached response the caller will accept, in
	// milliseconds. Zero disables the cache lookup.
	MaxAgeMs int `json:"max_age_ms,omitempty" binding:"omitempty,min=0"`

	// Format selects the response payload shape: "json" (default) or
	// "csv" for a flat column-aggregated download.
	Format string `json:"format,omitempty" binding:"omitempty,oneof=json csv"`

	// Selectors optionally maps field names to CSS selectors. It is the
	// precision path consulted when the inference collaborator is
	// unavailable, instead of the heuristic fallback.
	Selectors map[string]string `json:"selectors,omitempty"`

	// FetchMode controls the acquisition strategy.
	// "browser" (default): always render in headless Chrome.
	// "auto": try a plain HTTP fetch first when no scrolling is requested,
	// fall back to the browser if the page looks JS-dependent.
	// "http": force the plain HTTP path (no JS rendering, no scrolling).
	FetchMode string `json:"fetch_mode,omitempty" binding:"omitempty,oneof=browser auto http"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.ScrollDelayMs == 0 {
		r.ScrollDelayMs = 1500
	}
	if r.ChunkSizeChars == 0 {
		r.ChunkSizeChars = 4000
	}
	if r.Timeout == 0 {
		r.Timeout = 60
	}
	if r.FetchMode == "" {
		r.FetchMode = "browser"
	}
	if r.Format == "" {
		r.Format = "json"
	}
}
