package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// IdentityKey is the gin context key under which Auth stores the caller's
// API key. RateLimit reads it to bucket authenticated callers per key
// rather than per IP.
const IdentityKey = "api_key"

// Auth returns middleware that requires one of the configured API keys on
// every request, via either header form:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// With no keys configured the returned handler passes everything through,
// which is the local-development default.
func Auth(apiKeys []string) gin.HandlerFunc {
	valid := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			valid[k] = struct{}{}
		}
	}
	if len(valid) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := requestAPIKey(c)
		if key == "" {
			unauthorized(c, "missing API key: send X-API-Key or Authorization: Bearer")
			return
		}
		if _, ok := valid[key]; !ok {
			unauthorized(c, "invalid API key")
			return
		}
		c.Set(IdentityKey, key)
		c.Next()
	}
}

// requestAPIKey reads the caller's key, preferring the dedicated header
// over the Authorization bearer form.
func requestAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if after, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ExtractResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
