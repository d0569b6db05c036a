package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m-dehghani/AI-scraper-using-mcp/api/handler"
	"github.com/m-dehghani/AI-scraper-using-mcp/api/middleware"
	"github.com/m-dehghani/AI-scraper-using-mcp/cache"
	"github.com/m-dehghani/AI-scraper-using-mcp/config"
	"github.com/m-dehghani/AI-scraper-using-mcp/llm"
	"github.com/m-dehghani/AI-scraper-using-mcp/pipeline"
	"github.com/m-dehghani/AI-scraper-using-mcp/scraper"
	"github.com/m-dehghani/AI-scraper-using-mcp/segmenter"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, seg *segmenter.Segmenter, orch *pipeline.Orchestrator, llmClient *llm.Client, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(llmClient, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Structured record extraction (the model/heuristic pipeline).
	protected.POST("/extract", handler.Extract(orch, cc))

	// Page content as Markdown.
	protected.POST("/markdown", handler.Markdown(sc, seg))

	return r
}
