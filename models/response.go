package models

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	// Success indicates whether the run produced a usable record set.
	Success bool `json:"success"`

	// Outcome carries the records, the producing path, and the sufficiency
	// flag. Present only on success.
	Outcome *ExtractionOutcome `json:"outcome,omitempty"`

	// Spec echoes the field spec the extraction actually ran with (useful
	// when it was derived from the prompt).
	Spec FieldSpec `json:"spec"`

	// Title is the scraped page's title.
	Title string `json:"title,omitempty"`

	// FinalURL is the URL after following all redirects.
	FinalURL string `json:"final_url,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// AcquisitionMs is the time spent navigating, scrolling and rendering.
	AcquisitionMs int64 `json:"acquisition_ms"`

	// SegmentationMs is the time spent normalizing the document.
	SegmentationMs int64 `json:"segmentation_ms"`

	// ExtractionMs is the time spent in chunked extraction (or fallback).
	ExtractionMs int64 `json:"extraction_ms"`
}

// MarkdownResponse is the response for POST /api/v1/markdown.
type MarkdownResponse struct {
	Success  bool         `json:"success"`
	Markdown string       `json:"markdown,omitempty"`
	Title    string       `json:"title,omitempty"`
	FinalURL string       `json:"final_url,omitempty"`
	Timing   TimingInfo   `json:"timing"`
	Error    *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"` // "healthy" or "degraded"
	Uptime       string `json:"uptime"`
	LLMAvailable bool   `json:"llm_available"`
	Version      string `json:"version"`
}
