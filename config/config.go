package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration. Everything is threaded through
// constructors explicitly; there are no ambient switches read at use sites.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Acquirer  AcquirerConfig
	Extractor ExtractorConfig
	LLM       LLMConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for all requests.
	DefaultProxy string
}

// AcquirerConfig controls page acquisition behavior.
type AcquirerConfig struct {
	// NavigationTimeout is the deadline for the network-quiescence load
	// attempt. Target pages are uncontrolled third-party sites, so this is
	// generous.
	NavigationTimeout time.Duration // default: 45s

	// FallbackSettleDelay is the fixed wait after the plain-load retry.
	FallbackSettleDelay time.Duration // default: 3s

	// ChallengeWait is the extra wait inserted when the rendered title
	// matches a challenge-page signature, long enough for typical
	// automated-challenge resolution.
	ChallengeWait time.Duration // default: 10s

	// MaxScrollAttempts is the default scroll bound when the request does
	// not specify one.
	MaxScrollAttempts int // default: 5

	// ScrollDelay is the default wait between scroll iterations.
	ScrollDelay time.Duration // default: 1500ms

	// MaxTimeout caps the per-request timeout from the client.
	MaxTimeout time.Duration // default: 180s

	// BlockedResourceTypes lists resource types to block during rendering.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// ExtractorConfig controls chunked structured extraction.
type ExtractorConfig struct {
	// MinContentLength is the sufficiency gate: documents with less text
	// are rejected before any inference call.
	MinContentLength int // default: 100

	// ChunkSize is the default chunk window in characters.
	ChunkSize int // default: 4000

	// MaxConcurrentChunks bounds the chunk fan-out.
	MaxConcurrentChunks int // default: 3

	// CompletionsPerSecond paces inference calls (client-side).
	CompletionsPerSecond float64 // default: 2

	// FallbackPolicy decides what happens when the model path yields zero
	// records: "merge" (default) runs the heuristic extractor and merges,
	// "strict" reports the run as failed.
	FallbackPolicy string // "merge" or "strict"
}

// LLMConfig controls the inference collaborator.
type LLMConfig struct {
	// BaseURL is an OpenAI-compatible API root, e.g. "http://localhost:11434/v1".
	BaseURL string // default: "https://api.openai.com/v1"

	// APIKey authenticates against the inference service.
	APIKey string

	// Model is the completion model name.
	Model string // default: "gpt-4o-mini"

	// Temperature for extraction calls. Kept at 0 so responses stay
	// anchored to the chunk text.
	Temperature float64 // default: 0

	// MaxTokens bounds each completion.
	MaxTokens int // default: 2048

	// RequestTimeout is the per-completion deadline.
	RequestTimeout time.Duration // default: 60s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the extraction outcome cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached outcomes.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("AISCRAPER_HOST", "0.0.0.0"),
			Port: envIntOr("AISCRAPER_PORT", 8080),
			Mode: envOr("AISCRAPER_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("AISCRAPER_HEADLESS", true),
			NoSandbox:    envBoolOr("AISCRAPER_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("AISCRAPER_BROWSER_BIN"),
			DefaultProxy: os.Getenv("AISCRAPER_PROXY"),
		},
		Acquirer: AcquirerConfig{
			NavigationTimeout:   envDurationOr("AISCRAPER_NAV_TIMEOUT", 45*time.Second),
			FallbackSettleDelay: envDurationOr("AISCRAPER_SETTLE_DELAY", 3*time.Second),
			ChallengeWait:       envDurationOr("AISCRAPER_CHALLENGE_WAIT", 10*time.Second),
			MaxScrollAttempts:   envIntOr("AISCRAPER_MAX_SCROLLS", 5),
			ScrollDelay:         envDurationOr("AISCRAPER_SCROLL_DELAY", 1500*time.Millisecond),
			MaxTimeout:          envDurationOr("AISCRAPER_MAX_TIMEOUT", 180*time.Second),
			BlockedResourceTypes: envSliceOr("AISCRAPER_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Extractor: ExtractorConfig{
			MinContentLength:     envIntOr("AISCRAPER_MIN_CONTENT_LENGTH", 100),
			ChunkSize:            envIntOr("AISCRAPER_CHUNK_SIZE", 4000),
			MaxConcurrentChunks:  envIntOr("AISCRAPER_CHUNK_CONCURRENCY", 3),
			CompletionsPerSecond: envFloatOr("AISCRAPER_LLM_RPS", 2.0),
			FallbackPolicy:       envOr("AISCRAPER_FALLBACK_POLICY", "merge"),
		},
		LLM: LLMConfig{
			BaseURL:        envOr("AISCRAPER_LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:         os.Getenv("AISCRAPER_LLM_API_KEY"),
			Model:          envOr("AISCRAPER_LLM_MODEL", "gpt-4o-mini"),
			Temperature:    envFloatOr("AISCRAPER_LLM_TEMPERATURE", 0),
			MaxTokens:      envIntOr("AISCRAPER_LLM_MAX_TOKENS", 2048),
			RequestTimeout: envDurationOr("AISCRAPER_LLM_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("AISCRAPER_AUTH_ENABLED", false),
			APIKeys: envSliceOr("AISCRAPER_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("AISCRAPER_RATE_RPS", 2.0),
			Burst:             envIntOr("AISCRAPER_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("AISCRAPER_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("AISCRAPER_LOG_LEVEL", "info"),
			Format: envOr("AISCRAPER_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
