package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Prober reports whether the inference collaborator is reachable.
type Prober interface {
	IsAvailable(ctx context.Context) bool
}

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when the inference collaborator is unreachable: extraction
// still works via the heuristic fallback, but record quality drops.
func Health(prober Prober, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		llmUp := prober != nil && prober.IsAvailable(c.Request.Context())

		status := "healthy"
		if !llmUp {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:       status,
			Uptime:       time.Since(startTime).Round(time.Second).String(),
			LLMAvailable: llmUp,
			Version:      Version,
		})
	}
}
