// Package cli formats command output for the hubsearch CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat parses s. Empty means OutputText.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact:
		return OutputCompact, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
}

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%-6s %8.1f  %s  %s\n", r.Type, r.Score, utils.Truncate(utils.SingleLine(r.Title), 60), r.URL)
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results for %q in %dms", response.Total, response.Query, response.QueryTime)
	if response.HasMore {
		fmt.Fprintf(w, " (showing %d)", len(response.Results))
	}
	fmt.Fprintln(w)
	if len(response.FailedSources) > 0 {
		names := make([]string, len(response.FailedSources))
		for i, t := range response.FailedSources {
			names[i] = string(t)
		}
		fmt.Fprintf(w, "Unavailable sources: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintln(w)
	for i, result := range response.Results {
		writeOneResult(w, i+1, result)
	}
	if len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Related: %s\n", strings.Join(response.Suggestions, " | "))
	}
}

func writeOneResult(w io.Writer, rank int, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%d. [%s] %s (score %.1f)\n", rank, result.Type, result.Title, result.Score)
	if result.URL != "" {
		fmt.Fprintf(w, "   %s\n", result.URL)
	}
	var facets []string
	if result.Category != "" {
		facets = append(facets, result.Category)
	}
	if result.Author != "" {
		facets = append(facets, "by "+result.Author)
	}
	if m := result.Metadata; m != nil {
		if m.Rating > 0 {
			facets = append(facets, fmt.Sprintf("rating %.1f", m.Rating))
		}
		if m.StarCount > 0 {
			facets = append(facets, fmt.Sprintf("%d stars", m.StarCount))
		}
	}
	if len(facets) > 0 {
		fmt.Fprintf(w, "   %s\n", strings.Join(facets, " · "))
	}
	if result.Description != "" {
		fmt.Fprintf(w, "\n   %s\n", utils.Truncate(utils.SingleLine(result.Description), 200))
	}
	fmt.Fprintln(w)
}

// WriteHistory writes recent queries, most recent first.
func WriteHistory(w io.Writer, queries []string, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, map[string][]string{"queries": queries})
	}
	if len(queries) == 0 {
		fmt.Fprintln(w, "No search history.")
		return nil
	}
	for i, q := range queries {
		if format == OutputCompact {
			fmt.Fprintln(w, q)
			continue
		}
		fmt.Fprintf(w, "%2d. %s\n", i+1, q)
	}
	return nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatBytes renders n bytes with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
