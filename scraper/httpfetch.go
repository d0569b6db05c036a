package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxStaticBody caps the static-path response body.
const maxStaticBody = 10 * 1024 * 1024

// httpFetcher performs HTTP requests with a Chrome TLS fingerprint (utls).
// It serves the static fast path: pages that render their content server-side
// do not need a browser context at all.
type httpFetcher struct {
	defaultProxy string
}

func newHTTPFetcher(defaultProxy string) *httpFetcher {
	return &httpFetcher{defaultProxy: defaultProxy}
}

// acquireHTTP fetches the page over plain HTTP and builds a snapshot from the
// static markup. It fails (so the caller can escalate to the browser) when
// the markup looks JS-dependent or like a challenge interstitial.
func (s *Scraper) acquireHTTP(ctx context.Context, req *models.ScrapeRequest, start time.Time) (*models.PageSnapshot, error) {
	body, err := s.fetcher.fetch(ctx, req.URL)
	if err != nil {
		return failedSnapshot(req.URL, start, err),
			models.NewScrapeError(models.ErrCodeAcquisition, "static fetch failed", err)
	}

	if needsBrowser(body) {
		err := fmt.Errorf("page at %s appears to require JS rendering", req.URL)
		return failedSnapshot(req.URL, start, err),
			models.NewScrapeError(models.ErrCodeAcquisition, "static markup is a JS shell", err)
	}

	title := staticTitle(body)
	text := staticVisibleText(body)

	return &models.PageSnapshot{
		URL:              req.URL,
		Title:            title,
		RawText:          text,
		RawHTML:          string(body),
		FetchedAt:        time.Now(),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		ContentLength:    len(body),
		OK:               true,
		FetchMethod:      "http",
	}, nil
}

// fetch retrieves the URL via plain HTTP with a Chrome TLS fingerprint.
func (f *httpFetcher) fetch(ctx context.Context, targetURL string) ([]byte, error) {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr, f.defaultProxy)
		},
	}
	if f.defaultProxy != "" {
		proxyURL, err := url.Parse(f.defaultProxy)
		if err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpfetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("httpfetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStaticBody))
	if err != nil {
		return nil, fmt.Errorf("httpfetch: read body: %w", err)
	}
	return body, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via utls.
func dialTLSChrome(ctx context.Context, network, addr, proxy string) (net.Conn, error) {
	dialer := &net.Dialer{}

	var rawConn net.Conn
	var err error

	if proxy != "" {
		if proxyURL, parseErr := url.Parse(proxy); parseErr == nil &&
			(proxyURL.Scheme == "socks5" || proxyURL.Scheme == "socks5h") {
			rawConn, err = dialer.DialContext(ctx, "tcp", proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("socks5 dial: %w", err)
			}
		}
	}
	if rawConn == nil {
		rawConn, err = dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := utls.UClient(rawConn, &utls.Config{
		ServerName: host,
	}, utls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

var reNoscriptJS = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// emptyShellPatterns are root containers SPAs render into. Their presence
// with no inner markup means the static HTML carries no content.
var emptyShellPatterns = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<div id="__next"></div>`,
}

// needsBrowser decides whether statically-fetched HTML likely needs JS
// rendering (SPA shell, noscript warning, heavy script-to-text ratio) or is
// sitting behind a challenge interstitial.
func needsBrowser(body []byte) bool {
	bodyText := staticVisibleText(body)

	// Very little visible text means an SPA shell or an error stub.
	if len(bodyText) < 200 {
		return true
	}
	if models.IsChallengeText(bodyText) {
		return true
	}

	lower := strings.ToLower(string(body))
	for _, pat := range emptyShellPatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	if reNoscriptJS.MatchString(lower) {
		return true
	}

	// Many script tags plus little body text means a JS-heavy page.
	if strings.Count(lower, "<script") > 10 && len(bodyText) < 500 {
		return true
	}
	return false
}

// staticTitle extracts the <title> content from raw HTML bytes.
func staticTitle(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			if tn, _ := tokenizer.TagName(); string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}

// staticVisibleText extracts the visible text from within <body>, stripping
// all tags and <script>/<style> content.
func staticVisibleText(body []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(buf.String())
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch tag := string(tn); tag {
			case "body":
				inBody = true
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch tag := string(tn); tag {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
