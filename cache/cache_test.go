package cache

import (
	"testing"

	"github.com/m-dehghani/AI-scraper-using-mcp/models"
)

func TestCacheGetSet(t *testing.T) {
	c := New(10)
	key := Key("https://example.com", []string{"title", "price"}, "browser")

	if _, hit := c.Get(key, 60000); hit {
		t.Fatal("hit on an empty cache")
	}

	resp := &models.ExtractResponse{Success: true, Title: "Products"}
	c.Set(key, resp)

	got, hit := c.Get(key, 60000)
	if !hit {
		t.Fatal("miss after Set")
	}
	if got.Title != "Products" {
		t.Errorf("Title = %q, want Products", got.Title)
	}
}

func TestCacheZeroMaxAgeSkipsLookup(t *testing.T) {
	c := New(10)
	key := Key("https://example.com", []string{"title"}, "browser")
	c.Set(key, &models.ExtractResponse{Success: true})

	if _, hit := c.Get(key, 0); hit {
		t.Error("hit with maxAge 0, want lookup skipped")
	}
}

func TestCacheKeyDiscriminates(t *testing.T) {
	base := Key("https://example.com", []string{"title", "price"}, "browser")
	tests := []struct {
		name string
		key  string
	}{
		{"different url", Key("https://example.org", []string{"title", "price"}, "browser")},
		{"different fields", Key("https://example.com", []string{"title"}, "browser")},
		{"different field order", Key("https://example.com", []string{"price", "title"}, "browser")},
		{"different mode", Key("https://example.com", []string{"title", "price"}, "http")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key == base {
				t.Error("key collision")
			}
		})
	}
}

func TestCacheEvictsAtCapacity(t *testing.T) {
	c := New(2)
	c.Set("a", &models.ExtractResponse{})
	c.Set("b", &models.ExtractResponse{})
	c.Set("c", &models.ExtractResponse{})

	hits := 0
	for _, key := range []string{"a", "b", "c"} {
		if _, hit := c.Get(key, 60000); hit {
			hits++
		}
	}
	if hits != 2 {
		t.Errorf("got %d live entries, want capacity of 2", hits)
	}
}
