package promptparse

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantTarget string
		wantFields []string
	}{
		{
			name:       "products with prices",
			text:       "scrape all products with titles and prices",
			wantTarget: "products",
			wantFields: []string{"title", "price"},
		},
		{
			name:       "field order follows text order",
			text:       "get the price, title and description from these listings",
			wantTarget: "listings",
			wantFields: []string{"price", "title", "description"},
		},
		{
			name:       "aliases collapse to one canonical field",
			text:       "collect the name and title of the articles",
			wantTarget: "articles",
			wantFields: []string{"title"},
		},
		{
			name:       "vague request gets default fields",
			text:       "grab everything useful from this page",
			wantTarget: "items",
			wantFields: []string{"title", "description", "link"},
		},
		{
			name:       "word boundary prevents substring hits",
			text:       "list all costume shops",
			wantTarget: "items",
			wantFields: []string{"title", "description", "link"},
		},
		{
			name:       "jobs with locations",
			text:       "find jobs with title, location and date posted",
			wantTarget: "jobs",
			wantFields: []string{"title", "location", "date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if got.Target != tt.wantTarget {
				t.Errorf("Target = %q, want %q", got.Target, tt.wantTarget)
			}
			if !reflect.DeepEqual(got.Fields, tt.wantFields) {
				t.Errorf("Fields = %v, want %v", got.Fields, tt.wantFields)
			}
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	text := "products with prices, ratings, images and links"
	first := Parse(text)
	for i := 0; i < 10; i++ {
		if got := Parse(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("Parse() varied between calls: %v vs %v", got, first)
		}
	}
}
