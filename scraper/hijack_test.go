package scraper

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestShouldBlockRequest(t *testing.T) {
	blocked := map[proto.NetworkResourceType]struct{}{
		proto.NetworkResourceTypeImage: {},
	}

	tests := []struct {
		name    string
		blocked map[proto.NetworkResourceType]struct{}
		rt      proto.NetworkResourceType
		url     string
		want    bool
	}{
		{"filtered type", blocked, proto.NetworkResourceTypeImage, "https://cdn.example.com/a.png", true},
		{"unfiltered type", blocked, proto.NetworkResourceTypeDocument, "https://shop.example.com/", false},
		{"ad domain", blocked, proto.NetworkResourceTypeScript, "https://pagead2.googlesyndication.com/tag.js", true},
		{"ad domain with no type filter", nil, proto.NetworkResourceTypeScript, "https://static.doubleclick.net/tag.js", true},
		{"clean request with no type filter", nil, proto.NetworkResourceTypeImage, "https://shop.example.com/a.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldBlockRequest(tt.blocked, tt.rt, tt.url); got != tt.want {
				t.Errorf("shouldBlockRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}
