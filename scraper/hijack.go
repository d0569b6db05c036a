package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// configToProto maps human-readable config strings to Rod protocol resource types.
var configToProto = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// adDomains are well-known ad and tracking hosts. Requests to these (or any
// subdomain of them) are dropped: they never carry the content being
// extracted and they keep pages from ever going quiet.
var adDomains = []string{
	"doubleclick.net",
	"googlesyndication.com",
	"googleadservices.com",
	"google-analytics.com",
	"googletagmanager.com",
	"googletagservices.com",
	"connect.facebook.net",
	"adnxs.com",
	"adsrvr.org",
	"amazon-adsystem.com",
	"criteo.com",
	"criteo.net",
	"outbrain.com",
	"taboola.com",
	"moatads.com",
	"pubmatic.com",
	"rubiconproject.com",
	"scorecardresearch.com",
	"quantserve.com",
	"hotjar.com",
	"mixpanel.com",
	"segment.io",
	"chartbeat.com",
	"openx.net",
	"casalemedia.com",
	"demdex.net",
	"sharethis.com",
	"addthis.com",
}

// isAdDomain checks whether the host equals or is a subdomain of a known
// ad/tracking domain.
func isAdDomain(host string) bool {
	host = strings.ToLower(host)
	for _, d := range adDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// setupHijack installs a request interceptor on the page that blocks the
// configured resource types plus known ad/tracking domains. Ad-domain
// blocking is unconditional; an empty blockedTypes only means no resource
// type is filtered.
//
// Returns the running HijackRouter so the caller can defer router.Stop().
func setupHijack(page *rod.Page, blockedTypes []string) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := configToProto[name]; ok {
			blocked[rt] = struct{}{}
		}
	}

	router := page.HijackRequests()

	// Pattern "*" + empty resourceType = intercept ALL requests, then
	// decide per-request whether to block or continue.
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if shouldBlockRequest(blocked, ctx.Request.Type(), ctx.Request.URL().String()) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks, so it must live in its own goroutine.
	// It will exit when router.Stop() is called.
	go router.Run()

	return router
}

// shouldBlockRequest is the per-request blocking decision: a filtered
// resource type, or any URL on an ad/tracking domain.
func shouldBlockRequest(blocked map[proto.NetworkResourceType]struct{}, resourceType proto.NetworkResourceType, rawURL string) bool {
	if _, hit := blocked[resourceType]; hit {
		return true
	}
	if u, err := url.Parse(rawURL); err == nil && isAdDomain(u.Hostname()) {
		return true
	}
	return false
}
