// aiscraper-mcp is a stdio MCP server that exposes the aiscraper HTTP API
// as tools, so agent runtimes can extract structured records or Markdown
// from live pages without speaking HTTP themselves.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// extractRequest mirrors the aiscraper API request model.
type extractRequest struct {
	URL               string `json:"url"`
	Prompt            string `json:"prompt,omitempty"`
	MaxScrollAttempts int    `json:"max_scroll_attempts,omitempty"`
	FetchMode         string `json:"fetch_mode,omitempty"`
	Format            string `json:"format,omitempty"`
}

// extractResponse mirrors the aiscraper extract API response model.
type extractResponse struct {
	Success bool `json:"success"`
	Outcome *struct {
		Records           []map[string]any `json:"records"`
		Source            string           `json:"source"`
		SufficientContent bool             `json:"sufficient_content"`
	} `json:"outcome"`
	Spec struct {
		Target string   `json:"target"`
		Fields []string `json:"fields"`
	} `json:"spec"`
	Title    string `json:"title"`
	FinalURL string `json:"final_url"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// markdownResponse mirrors the aiscraper markdown API response model.
type markdownResponse struct {
	Success  bool   `json:"success"`
	Markdown string `json:"markdown"`
	Title    string `json:"title"`
	FinalURL string `json:"final_url"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("AISCRAPER_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("AISCRAPER_API_KEY")

	s := server.NewMCPServer(
		"aiscraper",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_records",
		mcp.WithDescription("Extract structured records (e.g. products with prices) from a web page. Renders JavaScript, scrolls infinite feeds, and returns deduplicated JSON records."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract from"),
		),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("What to extract, in plain language, e.g. 'all products with titles and prices'"),
		),
		mcp.WithNumber("max_scroll_attempts",
			mcp.Description("How many infinite-scroll passes to run (0 disables scrolling)"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("Page fetch strategy: 'browser' (default, renders JavaScript), 'auto' (plain HTTP first, browser if needed), or 'http' (never launch a browser)"),
			mcp.Enum("browser", "auto", "http"),
		),
	)
	s.AddTool(extractTool, handleExtractRecords(apiURL, apiKey))

	markdownTool := mcp.NewTool("scrape_markdown",
		mcp.WithDescription("Scrape a web page and return its content as Markdown. Uses a headless browser to render JavaScript-heavy pages."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithNumber("max_scroll_attempts",
			mcp.Description("How many infinite-scroll passes to run (0 disables scrolling)"),
		),
	)
	s.AddTool(markdownTool, handleScrapeMarkdown(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleExtractRecords(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 300 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		prompt, err := request.RequireString("prompt")
		if err != nil {
			return mcp.NewToolResultError("prompt is required"), nil
		}

		reqBody := extractRequest{
			URL:               url,
			Prompt:            prompt,
			MaxScrollAttempts: request.GetInt("max_scroll_attempts", 0),
			FetchMode:         request.GetString("fetch_mode", ""),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/extract", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}

		var resp extractResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success {
			errMsg := "extraction failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Page: %s\nSource: %s\n", resp.Title, resp.FinalURL))
		if resp.Outcome != nil {
			sb.WriteString(fmt.Sprintf("Extracted %d %s via %s path\n\n",
				len(resp.Outcome.Records), resp.Spec.Target, resp.Outcome.Source))
			records, err := json.MarshalIndent(resp.Outcome.Records, "", "  ")
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to render records: %v", err)), nil
			}
			sb.Write(records)
			if !resp.Outcome.SufficientContent {
				sb.WriteString("\n\nNote: the page had too little usable content; records come from the deterministic fallback.")
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleScrapeMarkdown(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := extractRequest{
			URL:               url,
			MaxScrollAttempts: request.GetInt("max_scroll_attempts", 0),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/markdown", reqBody)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}

		var resp markdownResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success {
			errMsg := "scrape failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		result := fmt.Sprintf("Title: %s\nSource: %s\n\n%s", resp.Title, resp.FinalURL, resp.Markdown)
		return mcp.NewToolResultText(result), nil
	}
}

// apiPost sends a JSON POST to the aiscraper API and returns the raw body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
