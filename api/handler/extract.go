package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m-dehghani/AI-scraper-using-mcp/cache"
	"github.com/m-dehghani/AI-scraper-using-mcp/models"
	"github.com/m-dehghani/AI-scraper-using-mcp/pipeline"
	"github.com/m-dehghani/AI-scraper-using-mcp/serialize"
)

// Runner executes the extraction pipeline for one request.
// pipeline.Orchestrator satisfies it; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, req *models.ScrapeRequest) (*pipeline.Result, error)
}

// Extract returns a handler for POST /api/v1/extract.
//
// Flow:
//  1. Parse & validate ScrapeRequest, apply defaults.
//  2. Cache lookup when the caller accepts a cached response.
//  3. Run the pipeline: acquire → segment → extract (with fallback).
//  4. Respond as JSON records or a CSV download, per the request format.
func Extract(runner Runner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		// ── 2. Cache lookup (JSON responses only) ───────────────────
		cacheKey := cache.Key(req.URL, cacheFields(&req), req.FetchMode)
		if cc != nil && req.Format == "json" && req.MaxAgeMs > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAgeMs); hit {
				// The cached object is shared across requests; mutate
				// a shallow copy, never the stored value.
				resp := *cached
				resp.CacheStatus = "hit"
				resp.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, resp)
				return
			}
		}

		// ── 3. Run pipeline ─────────────────────────────────────────
		result, err := runner.Run(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err, resultTiming(result, totalStart))
			return
		}

		// ── 4. Respond ──────────────────────────────────────────────
		if req.Format == "csv" {
			var buf bytes.Buffer
			if err := serialize.WriteCSV(&buf, result.Outcome.Records, result.Spec.Fields); err != nil {
				respondError(c, err, resultTiming(result, totalStart))
				return
			}
			c.Header("Content-Disposition", `attachment; filename="records.csv"`)
			c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
			return
		}

		resp := models.ExtractResponse{
			Success:  true,
			Outcome:  result.Outcome,
			Spec:     result.Spec,
			Title:    result.Snapshot.Title,
			FinalURL: result.Snapshot.URL,
			Timing:   resultTiming(result, totalStart),
		}
		if cc != nil && req.MaxAgeMs > 0 {
			resp.CacheStatus = "miss"
			// Store a private copy so later hits never alias the value
			// this request is about to serialize.
			stored := resp
			cc.Set(cacheKey, &stored)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// cacheFields picks the component of the request that determines the record
// shape: the explicit field spec when given, otherwise the raw prompt the
// spec would be derived from.
func cacheFields(req *models.ScrapeRequest) []string {
	if len(req.Spec.Fields) > 0 {
		return req.Spec.Fields
	}
	return []string{req.Prompt}
}

// resultTiming fills in the total and keeps whatever stage timings the run
// got to before succeeding or failing.
func resultTiming(result *pipeline.Result, totalStart time.Time) models.TimingInfo {
	timing := models.TimingInfo{}
	if result != nil {
		timing = result.Timing
	}
	timing.TotalMs = time.Since(totalStart).Milliseconds()
	return timing
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ExtractResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeCollaborator:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeInsufficientContent, models.ErrCodeExtractionRecovery:
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
