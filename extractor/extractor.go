package extractor

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/m-dehghani/AI-scraper-using-mcp/config"
	"github.com/m-dehghani/AI-scraper-using-mcp/llm"
	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// Completer is the text-completion collaborator. llm.Client satisfies it;
// tests substitute scripted fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts llm.CompleteOptions) (string, error)
}

// ChunkedExtractor derives structured records from a ContentDocument by
// splitting its text into bounded chunks, running one completion per chunk,
// and recovering record arrays from the free-form responses.
type ChunkedExtractor struct {
	completer Completer
	cfg       config.ExtractorConfig
	llmCfg    config.LLMConfig
	limiter   *rate.Limiter
}

// defaultChunkSize is the chunk window used when neither the request nor
// the configuration set one.
const defaultChunkSize = 4000

// NewChunkedExtractor wires the extractor to its completion collaborator.
// The client-side limiter paces completion calls so a many-chunk page does
// not trip provider rate limits. Zero-value config fields fall back to
// usable defaults so a hand-built ExtractorConfig cannot stall or divide
// by zero.
func NewChunkedExtractor(completer Completer, cfg config.ExtractorConfig, llmCfg config.LLMConfig) *ChunkedExtractor {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	burst := cfg.MaxConcurrentChunks
	if burst < 1 {
		burst = 1
	}
	pace := rate.Limit(cfg.CompletionsPerSecond)
	if pace <= 0 {
		pace = rate.Inf
	}
	return &ChunkedExtractor{
		completer: completer,
		cfg:       cfg,
		llmCfg:    llmCfg,
		limiter:   rate.NewLimiter(pace, burst),
	}
}

// Extract runs chunked model extraction over the document.
//
// The sufficiency gate runs first: a near-empty document or one carrying a
// challenge signature returns immediately with SufficientContent = false and
// never costs an inference call — blocked pages must not become fabricated
// records.
//
// Chunks fan out behind a bounded semaphore; each worker writes only its own
// slot of the results slice, and a single pass aggregates in chunk order so
// deduplication keeps the first occurrence deterministically.
//
// A failed completion is fatal for its chunk only. An unrecoverable response
// contributes zero records. The whole extraction fails only when every chunk
// failed.
func (e *ChunkedExtractor) Extract(ctx context.Context, doc *models.ContentDocument, spec models.FieldSpec, userPrompt string, chunkSize int) (*models.ExtractionOutcome, error) {
	// ── Sufficiency gate ────────────────────────────────────────────
	if len(doc.FullText) < e.cfg.MinContentLength ||
		models.IsChallengeText(doc.Title) ||
		models.IsChallengeText(doc.FullText) {
		slog.Info("insufficient content, skipping model extraction",
			"url", doc.SourceURL, "textLen", len(doc.FullText))
		return &models.ExtractionOutcome{
			Records:           []models.Record{},
			Source:            models.SourceModel,
			SufficientContent: false,
		}, nil
	}

	if chunkSize <= 0 {
		chunkSize = e.cfg.ChunkSize
	}
	chunks := chunkText(doc.FullText, chunkSize)

	// ── Bounded fan-out ─────────────────────────────────────────────
	results := make([][]models.Record, len(chunks))
	chunkErrs := make([]error, len(chunks))

	concurrency := e.cfg.MaxConcurrentChunks
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			records, err := e.extractChunk(ctx, spec, userPrompt, chunk)
			if err != nil {
				slog.Warn("chunk extraction failed",
					"url", doc.SourceURL, "chunk", i, "error", err)
				chunkErrs[i] = err
				return
			}
			results[i] = records
		}(i, chunk)
	}
	wg.Wait()

	// ── Aggregate in chunk order ────────────────────────────────────
	failed := 0
	var firstErr error
	var merged []models.Record
	for i := range chunks {
		if chunkErrs[i] != nil {
			failed++
			if firstErr == nil {
				firstErr = chunkErrs[i]
			}
			continue
		}
		merged = append(merged, results[i]...)
	}

	if len(chunks) > 0 && failed == len(chunks) {
		return nil, models.NewScrapeError(models.ErrCodeExtractionRecovery,
			"every chunk extraction failed", firstErr)
	}

	return &models.ExtractionOutcome{
		Records:           models.DedupeRecords(merged),
		Source:            models.SourceModel,
		SufficientContent: true,
	}, nil
}

// extractChunk runs one completion and recovers records from its response.
// An unrecoverable response is not an error: the chunk just contributes
// nothing.
func (e *ChunkedExtractor) extractChunk(ctx context.Context, spec models.FieldSpec, userPrompt, chunk string) ([]models.Record, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	response, err := e.completer.Complete(ctx, buildPrompt(userPrompt, spec, chunk), llm.CompleteOptions{
		Temperature: e.llmCfg.Temperature,
		MaxTokens:   e.llmCfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	records, ok := recoverRecords(response)
	if !ok {
		slog.Debug("no records recoverable from response", "responseLen", len(response))
		return nil, nil
	}
	return records, nil
}
