// Package search fans a query out to the content sources and merges their results.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/ranking"
)

// DefaultPoolSize bounds concurrent source calls across all searches.
const DefaultPoolSize = 32

// Engine runs aggregated searches over the registered sources.
type Engine struct {
	sources      map[models.ResultType]Source
	boosts       *ranking.Boosts
	pool         *ants.Pool
	poolSize     int
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource registers src under its type, replacing any earlier one.
// News is never registered; it is passed to SearchAll per call.
func WithSource(src Source) Option {
	return func(e *Engine) {
		if src != nil && src.Type() != models.TypeNews {
			e.sources[src.Type()] = src
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBoosts sets the field boosts used for the per-call news source.
func WithBoosts(b *ranking.Boosts) Option {
	return func(e *Engine) {
		if b != nil {
			e.boosts = b
		}
	}
}

// WithPoolSize sets the worker pool size.
func WithPoolSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.poolSize = n
		}
	}
}

// WithLimits sets the default and maximum page size.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(e *Engine) {
		e.defaultLimit = defaultLimit
		e.maxLimit = maxLimit
	}
}

// NewEngine creates an engine. Call Close to release its worker pool.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		sources:      make(map[models.ResultType]Source),
		boosts:       ranking.DefaultBoosts(),
		poolSize:     DefaultPoolSize,
		defaultLimit: models.DefaultLimit,
		maxLimit:     models.MaxLimit,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	pool, err := ants.NewPool(e.poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search worker pool: %w", err)
	}
	e.pool = pool
	return e, nil
}

// Close releases the worker pool.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Source returns the registered source for t.
func (e *Engine) Source(t models.ResultType) (Source, bool) {
	src, ok := e.sources[t]
	return src, ok
}

// SearchAll searches every source matching opts.Type, merges the results,
// sorts them by opts.SortBy and returns the requested page.
// A failing source is logged and reported in FailedSources; the others still contribute.
// The only error is an invalid opts.
func (e *Engine) SearchAll(ctx context.Context, opts models.SearchOptions, news []*models.NewsItem, locale string) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := opts.Normalize(e.defaultLimit, e.maxLimit); err != nil {
		return nil, err
	}
	if opts.Query == "" {
		return models.EmptyResponse(opts.Query), nil
	}

	var sources []Source
	for _, t := range models.ResultTypes {
		if !t.Matches(opts.Type) {
			continue
		}
		if t == models.TypeNews {
			sources = append(sources, NewNewsSource(news, e.boosts))
			continue
		}
		if src, ok := e.sources[t]; ok {
			sources = append(sources, src)
		}
	}

	var (
		perSource = make([][]*models.SearchResult, len(sources))
		errs      = make([]error, len(sources))
		wg        sync.WaitGroup
	)
	for i, src := range sources {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			perSource[i], errs[i] = runSource(ctx, src, opts.Query, locale)
		}
		if err := e.pool.Submit(task); err != nil {
			e.logger.Debug("worker pool unavailable, searching inline", zap.Error(err))
			task()
		}
	}
	wg.Wait()

	var (
		merged []*models.SearchResult
		failed []models.ResultType
	)
	for i, src := range sources {
		if errs[i] != nil {
			e.logger.Warn("search source failed",
				zap.String("source", string(src.Type())),
				zap.String("query", opts.Query),
				zap.Error(errs[i]))
			failed = append(failed, src.Type())
			continue
		}
		merged = append(merged, perSource[i]...)
	}

	SortResults(merged, opts.SortBy, locale)

	total := len(merged)
	start := min(opts.Offset, total)
	// compared against the remainder so a huge offset or limit cannot overflow
	end := total
	if opts.Limit < total-start {
		end = start + opts.Limit
	}
	page := make([]*models.SearchResult, end-start)
	copy(page, merged[start:end])

	return &models.SearchResponse{
		Results:       page,
		Total:         total,
		HasMore:       opts.Offset < total && opts.Limit < total-opts.Offset,
		Query:         opts.Query,
		Suggestions:   GenerateSuggestions(opts.Query, merged, locale),
		QueryTime:     time.Since(startTime).Milliseconds(),
		FailedSources: failed,
	}, nil
}

// runSource calls src and turns a panic into an error.
func runSource(ctx context.Context, src Source, query, locale string) (results []*models.SearchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("%s source panicked: %v", src.Type(), r)
		}
	}()
	return src.Search(ctx, query, locale)
}

// SearchNews searches news alone. Failures are logged and yield no results.
func (e *Engine) SearchNews(ctx context.Context, query string, news []*models.NewsItem, locale string) []*models.SearchResult {
	return e.searchOne(ctx, NewNewsSource(news, e.boosts), query, locale)
}

// SearchTools searches the tool catalog alone.
func (e *Engine) SearchTools(ctx context.Context, query, locale string) []*models.SearchResult {
	return e.searchOne(ctx, e.sources[models.TypeTools], query, locale)
}

// SearchFAQ searches the FAQ alone.
func (e *Engine) SearchFAQ(ctx context.Context, query, locale string) []*models.SearchResult {
	return e.searchOne(ctx, e.sources[models.TypeFAQ], query, locale)
}

// SearchGitHub searches tracked repositories alone.
func (e *Engine) SearchGitHub(ctx context.Context, query, locale string) []*models.SearchResult {
	return e.searchOne(ctx, e.sources[models.TypeGitHub], query, locale)
}

// SearchBlog searches blog posts alone.
func (e *Engine) SearchBlog(ctx context.Context, query, locale string) []*models.SearchResult {
	return e.searchOne(ctx, e.sources[models.TypeBlog], query, locale)
}

func (e *Engine) searchOne(ctx context.Context, src Source, query, locale string) []*models.SearchResult {
	if src == nil {
		return []*models.SearchResult{}
	}
	results, err := runSource(ctx, src, query, locale)
	if err != nil {
		e.logger.Warn("search source failed",
			zap.String("source", string(src.Type())),
			zap.String("query", query),
			zap.Error(err))
		return []*models.SearchResult{}
	}
	if results == nil {
		return []*models.SearchResult{}
	}
	return results
}
