// Package pipeline sequences acquisition, segmentation and extraction into
// one request lifecycle: Acquire → Segment → Extract → [Fallback] → Done.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-dehghani/AI-scraper-using-mcp/config"
	"github.com/m-dehghani/AI-scraper-using-mcp/models"
	"github.com/m-dehghani/AI-scraper-using-mcp/promptparse"
)

// Fallback policies for the extraction stage.
const (
	// PolicyMerge merges heuristic records with whatever the model path
	// produced and reports success. The default.
	PolicyMerge = "merge"

	// PolicyStrict treats an empty or failed model path as request
	// failure instead of falling back.
	PolicyStrict = "strict"
)

// Acquirer captures a rendered page for a request.
type Acquirer interface {
	Acquire(ctx context.Context, req *models.ScrapeRequest) (*models.PageSnapshot, error)
}

// Segmenter derives a ContentDocument from raw HTML.
type Segmenter interface {
	Segment(rawHTML, sourceURL string) (*models.ContentDocument, error)
}

// RecordExtractor is the model-assisted extraction path.
type RecordExtractor interface {
	Extract(ctx context.Context, doc *models.ContentDocument, spec models.FieldSpec, userPrompt string, chunkSize int) (*models.ExtractionOutcome, error)
}

// Heuristic is the deterministic fallback path.
type Heuristic interface {
	ExtractHeuristic(doc *models.ContentDocument, spec models.FieldSpec) []models.Record
}

// SelectorExtractor is the schema-based precision path.
type SelectorExtractor interface {
	ExtractBySelectors(rawHTML string, selectors map[string]string) ([]models.Record, error)
}

// AvailabilityProber reports whether the inference collaborator is
// reachable. Probed once per request before committing to the model path.
type AvailabilityProber interface {
	IsAvailable(ctx context.Context) bool
}

// Result is the terminal outcome of one pipeline run.
type Result struct {
	Snapshot *models.PageSnapshot
	Document *models.ContentDocument
	Outcome  *models.ExtractionOutcome

	// Spec is the field spec the run actually used, which may have been
	// derived from the prompt.
	Spec models.FieldSpec

	Timing models.TimingInfo
}

// Orchestrator drives the per-request state machine. It owns no state of
// its own; every run constructs its entities fresh, so concurrent runs are
// independent.
type Orchestrator struct {
	acquirer  Acquirer
	segmenter Segmenter
	extractor RecordExtractor
	heuristic Heuristic
	selector  SelectorExtractor
	prober    AvailabilityProber
	policy    string
}

// NewOrchestrator wires the pipeline stages. Policy is one of PolicyMerge
// or PolicyStrict; anything else falls back to PolicyMerge.
func NewOrchestrator(acquirer Acquirer, segmenter Segmenter, extractor RecordExtractor, heuristic Heuristic, selector SelectorExtractor, prober AvailabilityProber, cfg config.ExtractorConfig) *Orchestrator {
	policy := cfg.FallbackPolicy
	if policy != PolicyStrict {
		policy = PolicyMerge
	}
	return &Orchestrator{
		acquirer:  acquirer,
		segmenter: segmenter,
		extractor: extractor,
		heuristic: heuristic,
		selector:  selector,
		prober:    prober,
		policy:    policy,
	}
}

// Run executes one request through the full pipeline. Acquisition and
// segmentation failures are terminal. Extraction failures are subject to
// the fallback policy.
func (o *Orchestrator) Run(ctx context.Context, req *models.ScrapeRequest) (*Result, error) {
	req.Defaults()
	if req.URL == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "url is required", nil)
	}

	spec := req.Spec
	if len(spec.Fields) == 0 {
		spec = promptparse.Parse(req.Prompt)
		slog.Debug("derived field spec from prompt",
			"target", spec.Target, "fields", spec.Fields)
	}

	totalStart := time.Now()
	result := &Result{Spec: spec}
	defer func() { result.Timing.TotalMs = time.Since(totalStart).Milliseconds() }()

	// ── Acquire ─────────────────────────────────────────────────────
	acquireStart := time.Now()
	snapshot, err := o.acquirer.Acquire(ctx, req)
	result.Timing.AcquisitionMs = time.Since(acquireStart).Milliseconds()
	if err != nil {
		result.Snapshot = snapshot
		return result, err
	}
	result.Snapshot = snapshot

	// ── Segment ─────────────────────────────────────────────────────
	segmentStart := time.Now()
	doc, err := o.segmenter.Segment(snapshot.RawHTML, snapshot.URL)
	result.Timing.SegmentationMs = time.Since(segmentStart).Milliseconds()
	if err != nil {
		return result, err
	}
	result.Document = doc

	// ── Extract ─────────────────────────────────────────────────────
	extractStart := time.Now()
	outcome, err := o.extract(ctx, req, snapshot, doc, spec)
	result.Timing.ExtractionMs = time.Since(extractStart).Milliseconds()
	if err != nil {
		return result, err
	}
	result.Outcome = outcome
	return result, nil
}

// extract chooses among the model, selector and heuristic paths and applies
// the fallback policy.
func (o *Orchestrator) extract(ctx context.Context, req *models.ScrapeRequest, snapshot *models.PageSnapshot, doc *models.ContentDocument, spec models.FieldSpec) (*models.ExtractionOutcome, error) {
	if o.prober != nil && !o.prober.IsAvailable(ctx) {
		return o.extractWithoutModel(req, snapshot, doc, spec)
	}

	outcome, err := o.extractor.Extract(ctx, doc, spec, req.Prompt, req.ChunkSizeChars)

	switch {
	case err != nil:
		if o.policy == PolicyStrict {
			return nil, err
		}
		slog.Warn("model extraction failed, falling back to heuristics",
			"url", doc.SourceURL, "error", err)
		return o.heuristicOutcome(doc, spec, false), nil

	case !outcome.SufficientContent:
		if o.policy == PolicyStrict {
			return nil, models.NewScrapeError(models.ErrCodeInsufficientContent,
				"page content too thin or blocked for extraction", nil)
		}
		return o.heuristicOutcome(doc, spec, false), nil

	case len(outcome.Records) == 0:
		if o.policy == PolicyStrict {
			return nil, models.NewScrapeError(models.ErrCodeExtractionRecovery,
				"model extraction produced no records", nil)
		}
		slog.Info("model returned zero records, falling back to heuristics",
			"url", doc.SourceURL)
		return o.heuristicOutcome(doc, spec, true), nil

	case o.policy == PolicyMerge && underPopulated(outcome.Records, spec):
		// The model found records but left a requested field empty in
		// every one of them; heuristic records may fill the gap.
		merged := models.DedupeRecords(append(outcome.Records, o.heuristic.ExtractHeuristic(doc, spec)...))
		slog.Info("merged heuristic records into under-populated model output",
			"url", doc.SourceURL, "model", len(outcome.Records), "merged", len(merged))
		return &models.ExtractionOutcome{
			Records:           merged,
			Source:            models.SourceMerged,
			SufficientContent: true,
		}, nil

	default:
		return outcome, nil
	}
}

// extractWithoutModel runs when the inference collaborator is unreachable:
// the selector path when the request supplies one, otherwise heuristics.
// The strict policy refuses to substitute heuristics for the model.
func (o *Orchestrator) extractWithoutModel(req *models.ScrapeRequest, snapshot *models.PageSnapshot, doc *models.ContentDocument, spec models.FieldSpec) (*models.ExtractionOutcome, error) {
	if len(req.Selectors) > 0 && o.selector != nil {
		records, err := o.selector.ExtractBySelectors(snapshot.RawHTML, req.Selectors)
		if err != nil {
			return nil, err
		}
		slog.Info("inference unavailable, used selector extraction",
			"url", doc.SourceURL, "records", len(records))
		return &models.ExtractionOutcome{
			Records:           records,
			Source:            models.SourceSchema,
			SufficientContent: true,
		}, nil
	}

	if o.policy == PolicyStrict {
		return nil, models.NewScrapeError(models.ErrCodeCollaborator,
			"inference collaborator unavailable and no selectors supplied", nil)
	}
	slog.Warn("inference unavailable, falling back to heuristics", "url", doc.SourceURL)
	return o.heuristicOutcome(doc, spec, true), nil
}

// heuristicOutcome wraps the fallback extractor's records. sufficient
// records whether the document passed the content gate; heuristic records
// from a blocked page are still returned but flagged.
func (o *Orchestrator) heuristicOutcome(doc *models.ContentDocument, spec models.FieldSpec, sufficient bool) *models.ExtractionOutcome {
	return &models.ExtractionOutcome{
		Records:           o.heuristic.ExtractHeuristic(doc, spec),
		Source:            models.SourceHeuristic,
		SufficientContent: sufficient,
	}
}

// underPopulated reports whether some requested field is empty in every
// record, the signature of a model that found entities but missed a column.
func underPopulated(records []models.Record, spec models.FieldSpec) bool {
	for _, field := range spec.Fields {
		empty := true
		for _, rec := range records {
			if v, present := rec[field]; present && v != nil && v != "" {
				empty = false
				break
			}
		}
		if empty {
			return true
		}
	}
	return false
}
