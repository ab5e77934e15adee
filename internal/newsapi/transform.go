package newsapi

import (
	"strings"
	"time"

	"github.com/hyperjump/hubsearch/internal/content"
	"github.com/hyperjump/hubsearch/internal/models"
)

// removedMarker is the title NewsAPI gives to withdrawn articles.
const removedMarker = "[Removed]"

type response struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// Article is one entry of the /v2/everything response.
type Article struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

// tagKeywords maps a tag to the lowercase phrases that imply it.
var tagKeywords = []struct {
	tag      string
	keywords []string
}{
	{"gemini", []string{"gemini"}},
	{"cli", []string{"cli", "command line", "command-line", "terminal"}},
	{"ai", []string{" ai ", "ai-", "artificial intelligence", "llm"}},
	{"google", []string{"google"}},
	{"open-source", []string{"open source", "open-source", "github"}},
	{"agent", []string{"agent", "agentic"}},
	{"developer", []string{"developer", "coding", "programming"}},
}

// Transform converts API articles to news items. Removed or untitled articles are dropped.
func Transform(articles []Article) []*models.NewsItem {
	items := make([]*models.NewsItem, 0, len(articles))
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == removedMarker || a.URL == "https://removed.com" {
			continue
		}
		key := a.URL
		if key == "" {
			key = title
		}
		items = append(items, &models.NewsItem{
			ID:          content.NewsID(key),
			Title:       title,
			Description: strings.TrimSpace(a.Description),
			Content:     a.Content,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			Source:      a.Source.Name,
			Author:      a.Author,
			Category:    category(a.Source.Name),
			Tags:        Tags(title + " " + a.Description),
			PublishedAt: a.PublishedAt,
		})
	}
	return items
}

// Tags returns the known tags whose keywords occur in text.
func Tags(text string) []string {
	lower := " " + strings.ToLower(text) + " "
	tags := []string{}
	for _, tk := range tagKeywords {
		for _, kw := range tk.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, tk.tag)
				break
			}
		}
	}
	return tags
}

func category(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return "News"
	}
	return source
}
