package models

// Extraction sources reported in ExtractionOutcome.Source.
const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
	SourceMerged    = "merged"
	SourceSchema    = "schema"
)

// ExtractionOutcome is the terminal result of one extraction run.
type ExtractionOutcome struct {
	Records []Record `json:"records"`

	// Source reports which path produced the final record set:
	// "model", "heuristic", "merged", or "schema".
	Source string `json:"source"`

	// SufficientContent is false when the sufficiency gate rejected the
	// document (blocked or near-empty page) before any inference call.
	SufficientContent bool `json:"sufficient_content"`
}
