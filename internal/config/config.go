// Package config provides configuration loading and structs for the hub search server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/hubsearch/internal/ranking"
)

// Environment variables that override secrets from the config file.
const (
	EnvGitHubToken = "HUBSEARCH_GITHUB_TOKEN"
	EnvNewsAPIKey  = "HUBSEARCH_NEWS_API_KEY"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Content ContentConfig `yaml:"content"`
	Search  SearchConfig  `yaml:"search"`
	GitHub  GitHubConfig  `yaml:"github"`
	News    NewsConfig    `yaml:"news"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the catalog database, blog index and history store.
type StorageConfig struct {
	DatabasePath  string `yaml:"database_path"`
	BlogIndexPath string `yaml:"blog_index_path"`
	HistoryPath   string `yaml:"history_path"`
}

// ContentConfig holds the content directory settings.
type ContentConfig struct {
	Directory  string   `yaml:"directory"`
	Extensions []string `yaml:"extensions"`
	Watch      *bool    `yaml:"watch"`
}

// WatchOrDefault returns whether to watch the content directory; defaults to true when unset.
func (c *ContentConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return true
}

// SearchConfig holds search limits and field boosts.
type SearchConfig struct {
	DefaultLimit int             `yaml:"default_limit"`
	MaxLimit     int             `yaml:"max_limit"`
	PoolSize     int             `yaml:"pool_size"`
	Boosts       *ranking.Boosts `yaml:"boosts"`
}

// GitHubConfig holds the repository stats client settings.
type GitHubConfig struct {
	Token        string        `yaml:"token"`
	Repositories []string      `yaml:"repositories"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	BaseURL      string        `yaml:"base_url"`
}

// NewsConfig holds the NewsAPI client settings.
type NewsConfig struct {
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Query    string        `yaml:"query"`
	Language string        `yaml:"language"`
	PageSize int           `yaml:"page_size"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Load reads and parses the config file at path, applies defaults and
// environment overrides, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	ApplyEnv(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BlogIndexPath = expandPath(cfg.Storage.BlogIndexPath, configDir)
	cfg.Storage.HistoryPath = expandPath(cfg.Storage.HistoryPath, configDir)
	cfg.Content.Directory = expandPath(cfg.Content.Directory, configDir)

	return &cfg, nil
}

// Default returns a config with every default applied, for running without a config file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	ApplyEnv(&cfg)
	return &cfg
}

// ApplyEnv overrides secrets with their environment variables when set.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvGitHubToken)); v != "" {
		cfg.GitHub.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvNewsAPIKey)); v != "" {
		cfg.News.APIKey = v
	}
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
