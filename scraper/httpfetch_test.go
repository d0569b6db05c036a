package scraper

import (
	"strings"
	"testing"
)

func TestNeedsBrowser_EmptySPAShell(t *testing.T) {
	body := []byte(`<html><head><title>App</title></head><body><div id="root"></div></body></html>`)
	if !needsBrowser(body) {
		t.Error("empty #root shell should require a browser")
	}
}

func TestNeedsBrowser_ServerRenderedContent(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><head><title>Shop</title></head><body><main>`)
	for i := 0; i < 40; i++ {
		b.WriteString(`<p>Widget number with a price tag and a longer product description here.</p>`)
	}
	b.WriteString(`</main></body></html>`)

	if needsBrowser([]byte(b.String())) {
		t.Error("server-rendered page with substantial text should not require a browser")
	}
}

func TestNeedsBrowser_NoscriptWarning(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><body><noscript>Please enable JavaScript to continue</noscript>`)
	for i := 0; i < 40; i++ {
		b.WriteString(`<p>Some filler text so the length heuristic does not trigger first.</p>`)
	}
	b.WriteString(`</body></html>`)

	if !needsBrowser([]byte(b.String())) {
		t.Error("noscript JS warning should require a browser")
	}
}

func TestNeedsBrowser_ChallengeBody(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><head><title>Just a moment...</title></head><body>`)
	b.WriteString(`<p>Checking your browser before accessing the site.</p>`)
	for i := 0; i < 20; i++ {
		b.WriteString(`<p>Ray ID and other interstitial furniture padding the page out.</p>`)
	}
	b.WriteString(`</body></html>`)

	if !needsBrowser([]byte(b.String())) {
		t.Error("challenge interstitial should escalate to the browser path")
	}
}

func TestStaticTitle(t *testing.T) {
	body := []byte(`<html><head><title> Product Catalog </title></head><body></body></html>`)
	if got := staticTitle(body); got != "Product Catalog" {
		t.Errorf("staticTitle = %q, want %q", got, "Product Catalog")
	}
}

func TestStaticVisibleText_SkipsScriptAndStyle(t *testing.T) {
	body := []byte(`<html><body><p>visible</p><script>var hidden = 1;</script><style>.x{}</style><p>also visible</p></body></html>`)
	got := staticVisibleText(body)
	if !strings.Contains(got, "visible") || !strings.Contains(got, "also visible") {
		t.Errorf("visible text missing: %q", got)
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("script content leaked into visible text: %q", got)
	}
}

func TestIsAdDomain(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"pagead2.googlesyndication.com", true},
		{"shop.example.com", false},
		{"notdoubleclick.net", false},
	}
	for _, tt := range tests {
		if got := isAdDomain(tt.host); got != tt.want {
			t.Errorf("isAdDomain(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
