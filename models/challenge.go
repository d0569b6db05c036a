package models

import "strings"

// challengeSignatures are title/body substrings that identify anti-automation
// interstitials (Cloudflare and friends). Matching is case-insensitive.
// Both the acquirer (extra settle wait) and the extractor (sufficiency gate)
// consult this list.
var challengeSignatures = []string{
	"just a moment",
	"checking your browser",
	"verifying you are human",
	"verify you are human",
	"attention required",
	"access denied",
	"enable javascript and cookies",
	"ddos protection by",
}

// IsChallengeText reports whether the text contains a known challenge-page
// signature. A best-effort heuristic, not a bypass mechanism.
func IsChallengeText(text string) bool {
	lower := strings.ToLower(text)
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
