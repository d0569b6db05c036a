package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// Acquirer captures a rendered page. scraper.Scraper satisfies it.
type Acquirer interface {
	Acquire(ctx context.Context, req *models.ScrapeRequest) (*models.PageSnapshot, error)
}

// MarkdownRenderer converts raw page HTML to Markdown.
// segmenter.Segmenter satisfies it.
type MarkdownRenderer interface {
	ToMarkdown(rawHTML, sourceURL string) (string, error)
}

// Markdown returns a handler for POST /api/v1/markdown: acquire the page
// (same scroll and challenge handling as extraction) and return its content
// as Markdown instead of structured records.
func Markdown(acquirer Acquirer, renderer MarkdownRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.MarkdownResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		acquireStart := time.Now()
		snapshot, err := acquirer.Acquire(c.Request.Context(), &req)
		acquisitionMs := time.Since(acquireStart).Milliseconds()
		if err != nil {
			respondMarkdownError(c, err, models.TimingInfo{
				TotalMs:       time.Since(totalStart).Milliseconds(),
				AcquisitionMs: acquisitionMs,
			})
			return
		}

		renderStart := time.Now()
		markdown, err := renderer.ToMarkdown(snapshot.RawHTML, snapshot.URL)
		segmentationMs := time.Since(renderStart).Milliseconds()
		if err != nil {
			respondMarkdownError(c, err, models.TimingInfo{
				TotalMs:        time.Since(totalStart).Milliseconds(),
				AcquisitionMs:  acquisitionMs,
				SegmentationMs: segmentationMs,
			})
			return
		}

		c.JSON(http.StatusOK, models.MarkdownResponse{
			Success:  true,
			Markdown: markdown,
			Title:    snapshot.Title,
			FinalURL: snapshot.URL,
			Timing: models.TimingInfo{
				TotalMs:        time.Since(totalStart).Milliseconds(),
				AcquisitionMs:  acquisitionMs,
				SegmentationMs: segmentationMs,
			},
		})
	}
}

func respondMarkdownError(c *gin.Context, err error, timing models.TimingInfo) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.MarkdownResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}
