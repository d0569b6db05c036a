// Benchmark harness for the aiscraper extraction API: runs a fixed set of
// page types through POST /api/v1/extract several times, then prints a
// latency/record summary table and writes a JSON report.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "aiscraper API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test cases covering common extraction shapes.
var testCases = []struct {
	Label  string
	URL    string
	Prompt string
}{
	{"Static", "https://example.com", "title and description of this page"},
	{"Blog", "https://go.dev/blog/go1.21", "article title, author and date"},
	{"Docs", "https://go.dev/doc/effective_go", "section titles and descriptions"},
	{"News", "https://www.bbc.com/news", "news headlines with links"},
	{"Listing", "https://github.com/go-rod/rod", "repository name and description"},
}

// --- Request / Response types (mirrors models package) ---

type extractRequest struct {
	URL     string `json:"url"`
	Prompt  string `json:"prompt"`
	Timeout int    `json:"timeout"`
}

type extractResponse struct {
	Success bool `json:"success"`
	Outcome *struct {
		Records           []map[string]any `json:"records"`
		Source            string           `json:"source"`
		SufficientContent bool             `json:"sufficient_content"`
	} `json:"outcome"`
	Title  string     `json:"title"`
	Timing timingInfo `json:"timing"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type timingInfo struct {
	TotalMs        int64 `json:"total_ms"`
	AcquisitionMs  int64 `json:"acquisition_ms"`
	SegmentationMs int64 `json:"segmentation_ms"`
	ExtractionMs   int64 `json:"extraction_ms"`
}

// --- Benchmark result types ---

type runResult struct {
	Run            int    `json:"run"`
	TotalMs        int64  `json:"total_ms"`
	AcquisitionMs  int64  `json:"acquisition_ms"`
	SegmentationMs int64  `json:"segmentation_ms"`
	ExtractionMs   int64  `json:"extraction_ms"`
	Records        int    `json:"records"`
	Source         string `json:"source"`
	HasTitle       bool   `json:"has_title"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs       float64 `json:"total_ms"`
	AcquisitionMs float64 `json:"acquisition_ms"`
	ExtractionMs  float64 `json:"extraction_ms"`
	Records       float64 `json:"records"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== aiscraper Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure aiscraper is running\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testCases {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, t.Prompt, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d records via %s\n", rr.TotalMs, rr.Records, rr.Source)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(url, prompt string, run int) runResult {
	rr := runResult{Run: run}

	reqBody := extractRequest{
		URL:     url,
		Prompt:  prompt,
		Timeout: 60,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/extract", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var er extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = er.Success
	rr.TotalMs = er.Timing.TotalMs
	rr.AcquisitionMs = er.Timing.AcquisitionMs
	rr.SegmentationMs = er.Timing.SegmentationMs
	rr.ExtractionMs = er.Timing.ExtractionMs
	rr.HasTitle = er.Title != ""
	if er.Outcome != nil {
		rr.Records = len(er.Outcome.Records)
		rr.Source = er.Outcome.Source
	}

	if er.Error != nil {
		rr.Error = er.Error.Message
	}

	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.AcquisitionMs += float64(r.AcquisitionMs)
		avg.ExtractionMs += float64(r.ExtractionMs)
		avg.Records += float64(r.Records)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.AcquisitionMs /= n
	avg.ExtractionMs /= n
	avg.Records /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tAcquire\tExtract\tRecords\n")
	fmt.Fprintf(w, "───\t───────────\t───────\t───────\t───────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}

		fmt.Fprintf(w, "%s\t%dms\t%dms\t%dms\t%.1f\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			int64(r.Averages.AcquisitionMs),
			int64(r.Averages.ExtractionMs),
			r.Averages.Records,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
