package config

import (
	"time"

	"github.com/hyperjump/hubsearch/internal/ranking"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/hubsearch/data/db/catalog.db"
	}
	if cfg.Storage.BlogIndexPath == "" {
		cfg.Storage.BlogIndexPath = "/usr/local/var/hubsearch/data/indices/blog"
	}
	if cfg.Storage.HistoryPath == "" {
		cfg.Storage.HistoryPath = "/usr/local/var/hubsearch/data/history"
	}
	if cfg.Content.Directory == "" {
		cfg.Content.Directory = "/usr/local/var/hubsearch/content"
	}
	if cfg.Content.Extensions == nil {
		cfg.Content.Extensions = []string{".md", ".markdown"}
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 20
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.DefaultLimit > cfg.Search.MaxLimit {
		cfg.Search.DefaultLimit = cfg.Search.MaxLimit
	}
	if cfg.Search.PoolSize == 0 {
		cfg.Search.PoolSize = 32
	}
	if cfg.Search.Boosts == nil {
		cfg.Search.Boosts = ranking.DefaultBoosts()
	} else {
		cfg.Search.Boosts.ApplyDefaults()
	}
	if cfg.GitHub.Repositories == nil {
		cfg.GitHub.Repositories = []string{"google-gemini/gemini-cli"}
	}
	if cfg.GitHub.CacheTTL == 0 {
		cfg.GitHub.CacheTTL = 10 * time.Minute
	}
	if cfg.News.BaseURL == "" {
		cfg.News.BaseURL = "https://newsapi.org"
	}
	if cfg.News.Query == "" {
		cfg.News.Query = `"gemini cli" OR "gemini-cli"`
	}
	if cfg.News.Language == "" {
		cfg.News.Language = "en"
	}
	if cfg.News.PageSize == 0 {
		cfg.News.PageSize = 20
	}
	if cfg.News.CacheTTL == 0 {
		cfg.News.CacheTTL = 30 * time.Minute
	}
	if cfg.News.Timeout == 0 {
		cfg.News.Timeout = 10 * time.Second
	}
}
