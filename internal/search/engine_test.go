package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/hyperjump/hubsearch/internal/models"
)

type fakeTools struct {
	tools []*models.Tool
	err   error
}

func (f *fakeTools) ListTools(context.Context) ([]*models.Tool, error) { return f.tools, f.err }

type fakeRepos struct {
	repos []*models.Repository
	err   error
}

func (f *fakeRepos) Repositories(context.Context) ([]*models.Repository, error) {
	return f.repos, f.err
}

type fakeBlog struct {
	posts []*models.BlogPost
	err   error
}

func (f *fakeBlog) SearchBlogPosts(context.Context, string) ([]*models.BlogPost, error) {
	return f.posts, f.err
}

type panicSource struct{ t models.ResultType }

func (p panicSource) Type() models.ResultType { return p.t }
func (p panicSource) Search(context.Context, string, string) ([]*models.SearchResult, error) {
	panic("boom")
}

type countingSource struct {
	t     models.ResultType
	calls atomic.Int32
}

func (c *countingSource) Type() models.ResultType { return c.t }
func (c *countingSource) Search(context.Context, string, string) ([]*models.SearchResult, error) {
	c.calls.Add(1)
	return nil, nil
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithPoolSize(4)}, opts...)
	e, err := NewEngine(opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func releaseNews() []*models.NewsItem {
	return []*models.NewsItem{{
		ID:          "n1",
		Title:       "Gemini CLI 2.0 Released",
		Tags:        []string{"release", "gemini"},
		PublishedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func TestEngine_SearchAll_EmptyQuery(t *testing.T) {
	tools := &countingSource{t: models.TypeTools}
	e := newTestEngine(t, WithSource(tools))

	for _, q := range []string{"", "   ", "\t\n"} {
		resp, err := e.SearchAll(context.Background(), models.SearchOptions{Query: q}, releaseNews(), "en")
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Results) != 0 || resp.Total != 0 || resp.HasMore || len(resp.Suggestions) != 0 {
			t.Errorf("query %q: expected empty response, got %+v", q, resp)
		}
		if resp.Results == nil || resp.Suggestions == nil {
			t.Errorf("query %q: slices must be non-nil", q)
		}
	}
	if n := tools.calls.Load(); n != 0 {
		t.Errorf("sources must not be invoked for an empty query, got %d calls", n)
	}
}

func TestEngine_SearchAll_NewsEndToEnd(t *testing.T) {
	e := newTestEngine(t)
	resp, err := e.SearchAll(context.Background(), models.SearchOptions{
		Query: "gemini", Type: models.TypeNews, SortBy: models.SortRelevance,
	}, releaseNews(), "en")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Total != 1 {
		t.Fatalf("expected exactly one result, got %d (total %d)", len(resp.Results), resp.Total)
	}
	r := resp.Results[0]
	if r.Type != models.TypeNews || r.Score <= 0 {
		t.Errorf("got type %q score %v", r.Type, r.Score)
	}
	// title: substring 50 + token 20, x3; tag "gemini": 100+50+20, x1.5
	if r.Score != 465 {
		t.Errorf("score = %v, want 465", r.Score)
	}
	if r.URL != "/news/n1" {
		t.Errorf("url = %q", r.URL)
	}
	if resp.Query != "gemini" || resp.HasMore {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestEngine_SearchAll_MultiSourceMerge(t *testing.T) {
	e := newTestEngine(t,
		WithSource(NewToolSource(&fakeTools{tools: []*models.Tool{
			{ID: "t1", Name: "Gemini Helper", CreatedAt: time.Now()},
			{ID: "t2", Name: "Unrelated", CreatedAt: time.Now()},
		}}, nil)),
		WithSource(NewBlogSource(&fakeBlog{posts: []*models.BlogPost{
			{Slug: "gemini", Title: "Gemini", PublishedAt: time.Now()},
		}}, nil)),
		WithSource(NewFAQSource([]*models.FAQItem{}, nil)),
	)

	resp, err := e.SearchAll(context.Background(), models.SearchOptions{Query: "gemini"}, nil, "en")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	if resp.Results[0].Type != models.TypeBlog || resp.Results[1].Type != models.TypeTools {
		t.Errorf("expected blog (510) before tools (210), got %s, %s", resp.Results[0].Type, resp.Results[1].Type)
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i-1].Score < resp.Results[i].Score {
			t.Errorf("results not sorted by score at %d", i)
		}
	}
	if len(resp.FailedSources) != 0 {
		t.Errorf("unexpected failed sources: %v", resp.FailedSources)
	}
}

func TestEngine_SearchAll_SourceFailureIsIsolated(t *testing.T) {
	e := newTestEngine(t,
		WithSource(NewToolSource(&fakeTools{err: errors.New("catalog offline")}, nil)),
		WithSource(panicSource{t: models.TypeBlog}),
		WithSource(NewGitHubSource(&fakeRepos{repos: []*models.Repository{
			{ID: 7, Name: "gemini-cli", FullName: "google-gemini/gemini-cli", HTMLURL: "https://github.com/google-gemini/gemini-cli"},
		}}, nil)),
	)

	resp, err := e.SearchAll(context.Background(), models.SearchOptions{Query: "gemini"}, releaseNews(), "en")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected news and github results to survive, total = %d", resp.Total)
	}
	want := []models.ResultType{models.TypeTools, models.TypeBlog}
	if fmt.Sprint(resp.FailedSources) != fmt.Sprint(want) {
		t.Errorf("FailedSources = %v, want %v", resp.FailedSources, want)
	}
}

func TestEngine_SearchAll_TypeFilter(t *testing.T) {
	tools := &countingSource{t: models.TypeTools}
	e := newTestEngine(t, WithSource(tools), WithSource(NewFAQSource(nil, nil)))

	resp, err := e.SearchAll(context.Background(), models.SearchOptions{
		Query: "install", Type: models.TypeFAQ,
	}, releaseNews(), "en")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total == 0 {
		t.Fatal("expected FAQ results")
	}
	for _, r := range resp.Results {
		if r.Type != models.TypeFAQ {
			t.Errorf("unexpected type %q", r.Type)
		}
	}
	if tools.calls.Load() != 0 {
		t.Error("tools source must not run for type=faq")
	}
}

func TestEngine_SearchAll_Pagination(t *testing.T) {
	var news []*models.NewsItem
	for i := 0; i < 5; i++ {
		news = append(news, &models.NewsItem{
			ID:          fmt.Sprintf("n%d", i),
			Title:       fmt.Sprintf("Gemini update %d", i),
			PublishedAt: time.Date(2025, 1, i+1, 0, 0, 0, 0, time.UTC),
		})
	}
	e := newTestEngine(t)

	tests := []struct {
		limit, offset int
		wantLen       int
		wantMore      bool
	}{
		{2, 0, 2, true},
		{2, 2, 2, true},
		{2, 3, 2, false},
		{2, 4, 1, false},
		{2, 10, 0, false},
		{5, 0, 5, false},
		{2, math.MaxInt, 0, false},
		{100, math.MaxInt - 50, 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit=%d,offset=%d", tt.limit, tt.offset), func(t *testing.T) {
			resp, err := e.SearchAll(context.Background(), models.SearchOptions{
				Query: "gemini", Limit: tt.limit, Offset: tt.offset,
			}, news, "en")
			if err != nil {
				t.Fatal(err)
			}
			if resp.Total != 5 {
				t.Errorf("total = %d, want 5", resp.Total)
			}
			if len(resp.Results) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(resp.Results), tt.wantLen)
			}
			if resp.HasMore != tt.wantMore {
				t.Errorf("hasMore = %v, want %v", resp.HasMore, tt.wantMore)
			}
		})
	}
}

func TestEngine_SearchAll_InvalidOptions(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.SearchAll(context.Background(), models.SearchOptions{Query: "x", SortBy: "popularity"}, nil, "en"); err == nil {
		t.Error("expected error for unknown sort order")
	}
	if _, err := e.SearchAll(context.Background(), models.SearchOptions{Query: "x", Type: "videos"}, nil, "en"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestEngine_SingleSourceFailureReturnsEmpty(t *testing.T) {
	e := newTestEngine(t,
		WithSource(NewToolSource(&fakeTools{err: errors.New("offline")}, nil)),
		WithSource(panicSource{t: models.TypeGitHub}),
	)
	ctx := context.Background()

	if got := e.SearchTools(ctx, "gemini", "en"); got == nil || len(got) != 0 {
		t.Errorf("SearchTools = %v, want empty non-nil", got)
	}
	if got := e.SearchGitHub(ctx, "gemini", "en"); got == nil || len(got) != 0 {
		t.Errorf("SearchGitHub = %v, want empty non-nil", got)
	}
	if got := e.SearchBlog(ctx, "gemini", "en"); got == nil || len(got) != 0 {
		t.Errorf("SearchBlog without a source = %v, want empty non-nil", got)
	}
	if got := e.SearchNews(ctx, "gemini", releaseNews(), "en"); len(got) != 1 {
		t.Errorf("SearchNews returned %d results", len(got))
	}
}

func TestEngine_WithSourceIgnoresNews(t *testing.T) {
	e := newTestEngine(t, WithSource(NewNewsSource(nil, nil)))
	if _, ok := e.Source(models.TypeNews); ok {
		t.Error("news source must not be registered")
	}
}
