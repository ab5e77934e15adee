package search

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/hyperjump/hubsearch/internal/models"
)

func TestGenerateSuggestions(t *testing.T) {
	results := []*models.SearchResult{
		{Tags: []string{"gemini-cli", "release", "Gem"}, Category: "news"},
		{Tags: []string{"GEMINI-CLI"}, Category: "news"},
	}
	got := GenerateSuggestions("Gemini", results, "en")
	want := []string{"gemini-cli", "Gem", "news", "GEMINI-CLI", "Gemini CLI"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestGenerateSuggestions_Cap(t *testing.T) {
	var results []*models.SearchResult
	for i := 0; i < 8; i++ {
		results = append(results, &models.SearchResult{Category: fmt.Sprintf("cat%d", i)})
	}
	got := GenerateSuggestions("x", results, "en")
	if len(got) != MaxSuggestions {
		t.Fatalf("len = %d, want %d", len(got), MaxSuggestions)
	}
	if got[0] != "cat0" || got[4] != "cat4" {
		t.Errorf("expected discovery order, got %v", got)
	}
}

func TestGenerateSuggestions_OnlyTopTen(t *testing.T) {
	var results []*models.SearchResult
	for i := 0; i < 10; i++ {
		results = append(results, &models.SearchResult{})
	}
	results = append(results, &models.SearchResult{Tags: []string{"zeta"}, Category: "late"})
	if got := GenerateSuggestions("zeta", results, "en"); len(got) != 0 {
		t.Errorf("results past the tenth must be ignored, got %v", got)
	}
}

func TestGenerateSuggestions_PopularTermsByLocale(t *testing.T) {
	if got := GenerateSuggestions("mcp", nil, "en"); !reflect.DeepEqual(got, []string{"MCP servers"}) {
		t.Errorf("en: got %v", got)
	}
	if got := GenerateSuggestions("mcp", nil, "zh"); !reflect.DeepEqual(got, []string{"MCP 服务器"}) {
		t.Errorf("zh: got %v", got)
	}
}

func TestPopularSearchTerms(t *testing.T) {
	en := PopularSearchTerms("en")
	zh := PopularSearchTerms("zh-TW")
	if len(en) != 11 || len(zh) != 11 {
		t.Fatalf("expected 11 terms each, got %d and %d", len(en), len(zh))
	}
	if en[1] == zh[1] {
		t.Error("locales should differ")
	}
	en[0] = "mutated"
	if PopularSearchTerms("en")[0] == "mutated" {
		t.Error("returned slice must be a copy")
	}
}
