package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/hubsearch/internal/cache"
	"github.com/hyperjump/hubsearch/internal/config"
	"github.com/hyperjump/hubsearch/internal/content"
	"github.com/hyperjump/hubsearch/internal/github"
	"github.com/hyperjump/hubsearch/internal/history"
	"github.com/hyperjump/hubsearch/internal/keyword"
	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/newsapi"
	"github.com/hyperjump/hubsearch/internal/search"
	"github.com/hyperjump/hubsearch/internal/storage"
)

// Components holds initialized services.
type Components struct {
	Storage   *storage.SQLiteStorage
	BlogIndex *keyword.BleveIndex
	Loader    *content.Loader
	Engine    *search.Engine
	GitHub    *github.Client
	RepoCache *cache.TTLCache[*models.Repository]
	News      *newsapi.Client
	NewsCache *cache.TTLCache[[]*models.NewsItem]
	History   *history.BadgerStore
}

// Close releases every opened resource.
func (c *Components) Close() {
	if c.Engine != nil {
		c.Engine.Close()
	}
	if c.History != nil {
		_ = c.History.Close()
	}
	if c.BlogIndex != nil {
		_ = c.BlogIndex.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// componentOptions selects optional components.
type componentOptions struct {
	history bool
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, opts componentOptions) (_ *Components, err error) {
	c := &Components{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	c.Storage, err = storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.BlogIndex, err = keyword.NewBleveIndex(cfg.Storage.BlogIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blog index: %w", err)
	}
	c.Loader = content.NewLoader(cfg.Content.Directory, c.Storage, c.BlogIndex,
		content.WithLogger(logger),
		content.WithBlogExtensions(cfg.Content.Extensions))

	c.RepoCache = cache.New[*models.Repository](len(cfg.GitHub.Repositories))
	c.GitHub, err = github.NewClient(cfg.GitHub.Token, cfg.GitHub.BaseURL, cfg.GitHub.Repositories,
		github.WithCache(c.RepoCache),
		github.WithCacheTTL(cfg.GitHub.CacheTTL),
		github.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GitHub client: %w", err)
	}

	c.NewsCache = cache.New[[]*models.NewsItem](1)
	c.News = newsapi.NewClient(newsapi.Config{
		APIKey:   cfg.News.APIKey,
		BaseURL:  cfg.News.BaseURL,
		Query:    cfg.News.Query,
		Language: cfg.News.Language,
		PageSize: cfg.News.PageSize,
		Timeout:  cfg.News.Timeout,
		CacheTTL: cfg.News.CacheTTL,
	},
		newsapi.WithCache(c.NewsCache),
		newsapi.WithFallback(c.Storage),
		newsapi.WithLogger(logger))

	boosts := cfg.Search.Boosts
	c.Engine, err = search.NewEngine(
		search.WithSource(search.NewToolSource(c.Storage, boosts)),
		search.WithSource(search.NewFAQSource(nil, boosts)),
		search.WithSource(search.NewGitHubSource(c.GitHub, boosts)),
		search.WithSource(search.NewBlogSource(keyword.NewBlogCatalog(c.BlogIndex, c.Storage, 0), boosts)),
		search.WithBoosts(boosts),
		search.WithPoolSize(cfg.Search.PoolSize),
		search.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		search.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	if opts.history {
		c.History, err = history.OpenBadgerStore(cfg.Storage.HistoryPath, logger)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ensureBlogIndex rebuilds the blog index from stored posts when it is empty,
// e.g. after the index directory was removed.
func (c *Components) ensureBlogIndex(ctx context.Context, logger *zap.Logger) error {
	n, err := c.BlogIndex.DocCount()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	posts, err := c.Storage.ListBlogPosts(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, p := range posts {
		if err := c.BlogIndex.Index(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", p.Slug, err))
		}
	}
	if len(posts) > 0 {
		logger.Info("rebuilt blog index", zap.Int("posts", len(posts)))
	}
	return errors.Join(errs...)
}
