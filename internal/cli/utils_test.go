package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/hubsearch/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query:     "gemini",
		QueryTime: 42,
		Total:     3,
		HasMore:   true,
		Results: []*models.SearchResult{
			{
				ID:          "google-gemini/gemini-cli",
				Title:       "google-gemini/gemini-cli",
				Description: "An open-source AI agent\nthat brings Gemini to your terminal.",
				URL:         "https://github.com/google-gemini/gemini-cli",
				Type:        models.TypeGitHub,
				Category:    "TypeScript",
				Tags:        []string{},
				Score:       450,
				CreatedAt:   time.Date(2025, 4, 17, 0, 0, 0, 0, time.UTC),
				Metadata:    &models.ResultMetadata{StarCount: 50000},
			},
			{
				ID:        "what-is-gemini-cli",
				Title:     "What is Gemini CLI?",
				URL:       "/faq#what-is-gemini-cli",
				Type:      models.TypeFAQ,
				Tags:      []string{},
				Score:     320,
				CreatedAt: time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
			},
		},
		Suggestions:   []string{"Gemini CLI", "Gemini API"},
		FailedSources: []models.ResultType{models.TypeNews},
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": OutputText, "text": OutputText, "JSON": OutputJSON, "compact": OutputCompact} {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != response.Query || decoded.Total != response.Total {
		t.Errorf("decoded query=%q total=%d", decoded.Query, decoded.Total)
	}
	if len(decoded.Results) != 2 || decoded.Results[0].Metadata.StarCount != 50000 {
		t.Errorf("decoded results: %+v", decoded.Results)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`Found 3 results for "gemini" in 42ms (showing 2)`,
		"Unavailable sources: news",
		"1. [github] google-gemini/gemini-cli (score 450.0)",
		"TypeScript · 50000 stars",
		"An open-source AI agent that brings Gemini to your terminal.",
		"2. [faq] What is Gemini CLI?",
		"Related: Gemini CLI | Gemini API",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "github") || !strings.HasSuffix(lines[0], "https://github.com/google-gemini/gemini-cli") {
		t.Errorf("line 0: %q", lines[0])
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No search history") {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	if err := WriteHistory(&buf, []string{"mcp", "install"}, OutputText); err != nil {
		t.Fatal(err)
	}
	if buf.String() != " 1. mcp\n 2. install\n" {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	if err := WriteHistory(&buf, []string{"mcp"}, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var out map[string][]string
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil || out["queries"][0] != "mcp" {
		t.Errorf("json history: %s (%v)", buf.String(), err)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{0: "0 B", 1023: "1023 B", 1024: "1.0 KiB", 1536: "1.5 KiB", 5 << 20: "5.0 MiB"}
	for n, want := range cases {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
