package content

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/hubsearch/internal/models"
)

// ParseToolsXLSX reads tools from the first sheet of a workbook. The first
// row holds column names matching the YAML keys; list columns separate
// values with ";".
func ParseToolsXLSX(path string) ([]*models.Tool, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []*models.Tool{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []*models.Tool{}, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("sheet %q: missing name column", sheets[0])
	}

	var tools []*models.Tool
	for n, row := range rows[1:] {
		cell := func(col string) string {
			i, ok := columns[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		tool := &models.Tool{
			ID:          cell("id"),
			Name:        cell("name"),
			Description: cell("description"),
			Developer:   cell("developer"),
			Category:    cell("category"),
			Features:    splitList(cell("features")),
			Tags:        splitList(cell("tags")),
			Pros:        splitList(cell("pros")),
			Cons:        splitList(cell("cons")),
			Logo:        cell("logo"),
			Website:     cell("website"),
		}
		if v := cell("rating"); v != "" {
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid rating %q", n+2, v)
			}
			tool.Rating = rating
		}
		if v := cell("created_at"); v != "" {
			t, err := parseDate(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", n+2, err)
			}
			tool.CreatedAt = t
		}
		if v := cell("updated_at"); v != "" {
			t, err := parseDate(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", n+2, err)
			}
			tool.UpdatedAt = &t
		}
		tools = append(tools, tool)
	}
	return normalizeTools(tools), nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "01-02-06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
