package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

// Acquire renders the requested URL and returns a snapshot of the page.
//
// Lifecycle of the browser path:
//
//  1. Timeout guard         – hard deadline on the entire operation
//  2. Incognito context     – fresh isolated context, no cross-request state
//  3. DEFER: teardown       – close page + dispose context on every exit path
//  4. Stealth injection     – mask navigator.webdriver etc. (before navigation!)
//  5. Hijack mount          – block images/CSS/fonts/media (before navigation!)
//  6. Navigate + wait       – quiescence wait, plain-load retry on failure
//  7. Challenge wait        – extra settle when the title looks like an interstitial
//  8. Scroll loop           – bounded infinite-scroll expansion
//  9. Snapshot              – title/text/HTML/URL read in one atomic evaluation
//
// Steps 4-5 must happen before step 6: stealth JS and resource blocking only
// take effect for navigations that happen after they are installed. Step 9 is
// a single Eval so the four reads cannot race further client-side mutation.
func (s *Scraper) Acquire(ctx context.Context, req *models.ScrapeRequest) (*models.PageSnapshot, error) {
	start := time.Now()

	switch req.FetchMode {
	case "http":
		return s.acquireHTTP(ctx, req, start)
	case "auto":
		// The static path cannot scroll, so it only serves requests that
		// did not ask for scrolling.
		if req.MaxScrollAttempts == 0 {
			if snap, err := s.acquireHTTP(ctx, req, start); err == nil {
				return snap, nil
			}
			slog.Debug("static fetch unsuitable, escalating to browser", "url", req.URL)
		}
	}

	return s.acquireBrowser(ctx, req, start)
}

func (s *Scraper) acquireBrowser(ctx context.Context, req *models.ScrapeRequest, start time.Time) (*models.PageSnapshot, error) {
	// ── 1. Timeout guard ──────────────────────────────────────────────
	timeout := time.Duration(req.Timeout) * time.Second
	if timeout > s.acquirerCfg.MaxTimeout {
		timeout = s.acquirerCfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// ── 2. Fresh incognito context ────────────────────────────────────
	incognito, err := s.browser.Incognito()
	if err != nil {
		return failedSnapshot(req.URL, start, err),
			models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to create incognito context", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return failedSnapshot(req.URL, start, err),
			models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}

	// ── 3. Teardown on every exit path. A cleanup error must never mask
	// the real failure, so it is logged and swallowed.
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("cleanup: failed to close page", "error", closeErr)
		}
		disposeErr := proto.TargetDisposeBrowserContext{
			BrowserContextID: incognito.BrowserContextID,
		}.Call(s.browser)
		if disposeErr != nil {
			slog.Warn("cleanup: failed to dispose incognito context", "error", disposeErr)
		}
	}()

	// ── 4. Stealth injection ──────────────────────────────────────────
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	// ── 4b. Referer header (unless the caller is proxied through one) ──
	if u, parseErr := url.Parse(req.URL); parseErr == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{
				"Referer": "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname()),
			}),
		}.Call(page)
	}

	// ── 5. Mount hijack router (blocks Image/Stylesheet/Font/Media + ads) ──
	router := setupHijack(page, s.acquirerCfg.BlockedResourceTypes)
	defer func() { _ = router.Stop() }()

	p := page.Context(ctx)

	// ── 6. Navigate: quiescence wait, then one plain-load retry ───────
	if navErr := s.navigate(ctx, page, req.URL); navErr != nil {
		return failedSnapshot(req.URL, start, navErr), navErr
	}

	// ── 7. Challenge interstitial wait ────────────────────────────────
	// Best-effort heuristic, not a bypass: give automated challenges the
	// time they typically need to resolve themselves.
	if title := evalStringOrEmpty(p, `() => document.title`); models.IsChallengeText(title) {
		slog.Info("challenge page detected, waiting", "url", req.URL, "title", title)
		if waitErr := sleepCtx(ctx, s.acquirerCfg.ChallengeWait); waitErr != nil {
			return failedSnapshot(req.URL, start, waitErr), categorizeError(waitErr, "challenge wait interrupted")
		}
	}

	// ── 8. Infinite-scroll expansion ──────────────────────────────────
	iterations := 0
	if req.MaxScrollAttempts > 0 {
		delay := time.Duration(req.ScrollDelayMs) * time.Millisecond
		iterations, err = runScrollLoop(ctx, &rodScrollDriver{page: p}, req.MaxScrollAttempts, delay)
		if err != nil {
			// Scrolling is expansion, not correctness: keep whatever the
			// page already rendered unless the whole context is gone.
			if ctx.Err() != nil {
				return failedSnapshot(req.URL, start, err), categorizeError(err, "scroll loop interrupted")
			}
			slog.Warn("scroll loop aborted, using current page state", "url", req.URL, "error", err)
		}
	}

	// ── 9. Atomic snapshot read ───────────────────────────────────────
	res, evalErr := p.Eval(`() => ({
		title: document.title,
		text: document.body ? document.body.innerText : "",
		html: document.documentElement.outerHTML,
		url: window.location.href,
	})`)
	if evalErr != nil {
		return failedSnapshot(req.URL, start, evalErr), categorizeError(evalErr, "failed to read page content")
	}

	finalURL := res.Value.Get("url").Str()
	if finalURL == "" {
		finalURL = req.URL
	}
	rawHTML := res.Value.Get("html").Str()

	return &models.PageSnapshot{
		URL:              finalURL,
		Title:            res.Value.Get("title").Str(),
		RawText:          res.Value.Get("text").Str(),
		RawHTML:          rawHTML,
		FetchedAt:        time.Now(),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		ContentLength:    len(rawHTML),
		OK:               true,
		FetchMethod:      "browser",
		ScrollIterations: iterations,
	}, nil
}

// navigate performs the two-attempt navigation policy: a quiescence-bounded
// load first, then one plain "wait for load event" retry with a fixed settle
// delay. Only the second failure is fatal.
func (s *Scraper) navigate(ctx context.Context, page *rod.Page, target string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.acquirerCfg.NavigationTimeout)
	p := page.Context(navCtx)

	err := p.Navigate(target)
	if err == nil {
		// DOM stability stands in for request-idle here: the hijack router
		// occupies the Fetch domain, which request-idle waiting conflicts
		// with on current Chromium.
		if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil && navCtx.Err() != nil {
			err = stableErr
		}
	}
	cancel()
	if err == nil {
		return nil
	}

	slog.Warn("quiescence navigation failed, retrying with plain load",
		"url", target, "error", err)

	pf := page.Context(ctx)
	if navErr := pf.Navigate(target); navErr != nil {
		return categorizeError(navErr, "navigation retry failed")
	}
	if loadErr := pf.WaitLoad(); loadErr != nil {
		return categorizeError(loadErr, "load event wait failed")
	}
	return sleepCtx(ctx, s.acquirerCfg.FallbackSettleDelay)
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata reads).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// sleepCtx sleeps for d or until the context is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// failedSnapshot records a failed acquisition attempt.
func failedSnapshot(target string, start time.Time, cause error) *models.PageSnapshot {
	return &models.PageSnapshot{
		URL:              target,
		FetchedAt:        time.Now(),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		OK:               false,
		ErrorDetail:      cause.Error(),
	}
}

// categorizeError wraps raw errors into typed ScrapeErrors so callers can
// map them to appropriate failure modes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
