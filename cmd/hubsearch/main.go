// Package main is the hubsearch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/hubsearch/internal/cli"
	"github.com/hyperjump/hubsearch/internal/config"
	"github.com/hyperjump/hubsearch/internal/history"
	"github.com/hyperjump/hubsearch/internal/models"
	"github.com/hyperjump/hubsearch/internal/server"
	"github.com/hyperjump/hubsearch/internal/storage"
	"github.com/hyperjump/hubsearch/internal/watcher"
	"github.com/hyperjump/hubsearch/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/hubsearch/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// loadConfig loads config from path. When path is the default, a config.yaml in
// the current directory takes precedence, and a missing default file yields the
// built-in defaults. Returns the config and the path that was loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "load":
		runLoad()
	case "history":
		runHistory()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("hubsearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// setupCLI loads config and a stderr logger for one-shot commands.
func setupCLI(configPath string) (*config.Config, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	return cfg, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, componentOptions{history: true})
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats, err := components.Loader.LoadAll(ctx)
	if err != nil {
		logger.Warn("content load failed", zap.String("dir", cfg.Content.Directory), zap.Error(err))
	} else {
		logger.Info("content loaded",
			zap.Int("tools", stats.Tools),
			zap.Int("blog_posts", stats.BlogPosts),
			zap.Int("news", stats.News),
			zap.Int("failed", stats.Failed))
	}
	if err := components.ensureBlogIndex(ctx, logger); err != nil {
		logger.Warn("blog index rebuild failed", zap.Error(err))
	}

	if cfg.Content.WatchOrDefault() {
		loader := components.Loader
		watchSvc := watcher.NewWatcher(
			loader.Dir(),
			func(path string) {
				if err := loader.LoadFile(context.Background(), path); err != nil {
					logger.Warn("content reload failed", zap.String("path", path), zap.Error(err))
				}
			},
			func(path string) {
				if err := loader.RemoveFile(context.Background(), path); err != nil {
					logger.Warn("content remove failed", zap.String("path", path), zap.Error(err))
				}
			},
			watcher.WithFilter(loader.Handles),
			watcher.WithLogger(logger),
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start content watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(
		components.Engine,
		components.News,
		components.Storage,
		components.History,
		cfg,
		logger,
		server.WithCache("github", components.RepoCache),
		server.WithCache("news", components.NewsCache),
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: hubsearch search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  hubsearch search mcp server
  hubsearch search --type tools --sort rating code assistant
  hubsearch search --locale zh 安装
  hubsearch search --output json "gemini cli"
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// searchRequest is the POST /api/v1/search body.
type searchRequest struct {
	models.SearchOptions
	Locale string `json:"locale,omitempty"`
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = search the local catalog directly)")
	resultType := fs.String("type", "all", "result type: all, news, tools, faq, github or blog")
	sortBy := fs.String("sort", "relevance", "sort order: relevance, latest, oldest, rating or alphabetical")
	limit := fs.Int("limit", 10, "number of results")
	offset := fs.Int("offset", 0, "number of results to skip")
	locale := fs.String("locale", "en", "locale: en or zh")
	outputFormat := fs.String("output", "text", "output format: text, compact or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fatalf("%v", err)
	}

	req := searchRequest{
		SearchOptions: models.SearchOptions{
			Query:  queryStr,
			Type:   models.ResultType(*resultType),
			SortBy: models.SortBy(*sortBy),
			Limit:  *limit,
			Offset: *offset,
		},
		Locale: *locale,
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, req)
	} else {
		response, err = searchDirect(*configPath, req)
	}
	if err != nil {
		fatalf("Search failed: %v", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func searchDirect(configPath string, req searchRequest) (*models.SearchResponse, error) {
	cfg, logger := setupCLI(configPath)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, componentOptions{history: true})
	if err != nil {
		return nil, err
	}
	defer components.Close()

	ctx := context.Background()
	var news []*models.NewsItem
	if models.TypeNews.Matches(req.Type) {
		if news, err = components.News.News(ctx); err != nil {
			logger.Warn("news unavailable", zap.Error(err))
		}
	}
	response, err := components.Engine.SearchAll(ctx, req.SearchOptions, news, req.Locale)
	if err != nil {
		return nil, err
	}
	history.New(components.History, history.WithLogger(logger)).Save(response.Query)
	return response, nil
}

func searchViaHTTP(serverURL string, req searchRequest) (*models.SearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var response models.SearchResponse
	if err := doJSON(http.MethodPost, serverURL+"/api/v1/search", bytes.NewReader(body), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// doJSON sends a request to the server and decodes a JSON response into out.
func doJSON(method, url string, body io.Reader, out interface{}) error {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runLoad() {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dir := fs.String("dir", "", "content directory (default from config)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setupCLI(*configPath)
	defer logger.Sync()
	if *dir != "" {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			fatalf("Invalid directory: %v", err)
		}
		cfg.Content.Directory = abs
	}

	components, err := initializeComponents(cfg, logger, componentOptions{})
	if err != nil {
		fatalf("Failed to initialize: %v", err)
	}
	defer components.Close()

	stats, err := components.Loader.LoadAll(context.Background())
	if err != nil {
		fatalf("Load failed: %v", err)
	}
	fmt.Printf("Loaded %d tools, %d blog posts, %d news items from %s", stats.Tools, stats.BlogPosts, stats.News, cfg.Content.Directory)
	if stats.Failed > 0 {
		fmt.Printf(" (%d files failed)", stats.Failed)
	}
	fmt.Println()
}

func runHistory() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: hubsearch history <list|clear> [flags]")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("history "+sub, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use the local history store)")
	clientID := fs.String("client", "", "client ID of a per-client history")
	outputFormat := fs.String("output", "text", "output format: text, compact or json")
	_ = fs.Parse(os.Args[3:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fatalf("%v", err)
	}

	switch sub {
	case "list":
		var queries []string
		if *serverURL != "" {
			var out struct {
				Queries []string `json:"queries"`
			}
			err = doHistoryRequest(*serverURL, http.MethodGet, *clientID, &out)
			queries = out.Queries
		} else {
			err = withHistory(*configPath, *clientID, func(h *history.History) { queries = h.Get() })
		}
		if err != nil {
			fatalf("History failed: %v", err)
		}
		if err := cli.WriteHistory(os.Stdout, queries, format); err != nil {
			fatalf("Output failed: %v", err)
		}
	case "clear":
		if *serverURL != "" {
			err = doHistoryRequest(*serverURL, http.MethodDelete, *clientID, nil)
		} else {
			err = withHistory(*configPath, *clientID, func(h *history.History) { h.Clear() })
		}
		if err != nil {
			fatalf("History failed: %v", err)
		}
		fmt.Println("Search history cleared.")
	default:
		fmt.Printf("Unknown history subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func doHistoryRequest(serverURL, method, clientID string, out interface{}) error {
	req, err := http.NewRequest(method, serverURL+"/api/v1/history", nil)
	if err != nil {
		return err
	}
	if clientID != "" {
		req.Header.Set(server.ClientIDHeader, clientID)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func withHistory(configPath, clientID string, fn func(*history.History)) error {
	cfg, logger := setupCLI(configPath)
	defer logger.Sync()
	store, err := history.OpenBadgerStore(cfg.Storage.HistoryPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	fn(history.New(store, history.WithNamespace(clientID), history.WithLogger(logger)))
	return nil
}

// statusResponse is the subset of GET /api/v1/status the CLI prints.
type statusResponse struct {
	UptimeSeconds  int64                  `json:"uptime_seconds,omitempty"`
	Sources        []models.ResultType    `json:"sources,omitempty"`
	Catalog        *storage.Counts        `json:"catalog,omitempty"`
	Caches         map[string]int         `json:"caches,omitempty"`
	DiskUsage      []storage.Usage        `json:"disk_usage,omitempty"`
	DiskUsageBytes int64                  `json:"disk_usage_bytes"`
	Config         map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the local catalog)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fatalf("%v", err)
	}

	var status statusResponse
	if *serverURL != "" {
		if err := doJSON(http.MethodGet, *serverURL+"/api/v1/status", nil, &status); err != nil {
			fatalf("Status failed: %v", err)
		}
	} else {
		status, err = statusDirect(*configPath)
		if err != nil {
			fatalf("Status failed: %v", err)
		}
	}

	if format == cli.OutputJSON {
		if err := cli.WriteJSON(os.Stdout, status); err != nil {
			fatalf("Output failed: %v", err)
		}
		return
	}
	writeStatusText(os.Stdout, &status)
}

func statusDirect(configPath string) (statusResponse, error) {
	cfg, logger := setupCLI(configPath)
	defer logger.Sync()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return statusResponse{}, err
	}
	defer store.Close()
	counts, err := store.Counts(context.Background())
	if err != nil {
		return statusResponse{}, err
	}
	usage, total, err := storage.DiskUsage(map[string]string{
		"database":   cfg.Storage.DatabasePath,
		"blog_index": cfg.Storage.BlogIndexPath,
		"history":    cfg.Storage.HistoryPath,
	})
	if err != nil {
		return statusResponse{}, err
	}
	return statusResponse{
		Catalog:        counts,
		DiskUsage:      usage,
		DiskUsageBytes: total,
		Config: map[string]interface{}{
			"content_dir":  cfg.Content.Directory,
			"github_repos": cfg.GitHub.Repositories,
		},
	}, nil
}

func writeStatusText(w io.Writer, s *statusResponse) {
	if s.UptimeSeconds > 0 {
		fmt.Fprintf(w, "Uptime:      %s\n", (time.Duration(s.UptimeSeconds) * time.Second).String())
	}
	if len(s.Sources) > 0 {
		names := make([]string, len(s.Sources))
		for i, t := range s.Sources {
			names[i] = string(t)
		}
		fmt.Fprintf(w, "Sources:     %s\n", strings.Join(names, ", "))
	}
	if s.Catalog != nil {
		fmt.Fprintf(w, "Tools:       %d\n", s.Catalog.Tools)
		fmt.Fprintf(w, "Blog posts:  %d\n", s.Catalog.BlogPosts)
		fmt.Fprintf(w, "News:        %d\n", s.Catalog.News)
	}
	for name, n := range s.Caches {
		fmt.Fprintf(w, "Cache %-6s %d entries\n", name+":", n)
	}
	for _, u := range s.DiskUsage {
		fmt.Fprintf(w, "Disk %-11s %s (%s)\n", u.Name+":", cli.FormatBytes(u.Bytes), u.Path)
	}
	fmt.Fprintf(w, "Disk total:  %s\n", cli.FormatBytes(s.DiskUsageBytes))
}

func printUsage() {
	fmt.Println(`hubsearch - Search across Gemini CLI news, tools, FAQ, GitHub and blog

Usage:
  hubsearch server [flags]              Start the HTTP server
  hubsearch search [flags] <query>      Search every source
  hubsearch load [flags]                Load the content directory into the catalog
  hubsearch history <list|clear>        Show or clear recent searches
  hubsearch status [flags]              Show catalog, cache and disk status
  hubsearch version                     Show version
  hubsearch help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/hubsearch/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to search the local catalog directly.
  --type string      all, news, tools, faq, github or blog (default: all)
  --sort string      relevance, latest, oldest, rating or alphabetical (default: relevance)
  --limit int        Number of results (default: 10)
  --offset int       Results to skip (default: 0)
  --locale string    en or zh (default: en)
  --output string    text, compact or json (default: text)

Load Flags:
  --config string    Config file path
  --dir string       Content directory (default from config)

History Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" for the local store.
  --client string    Per-client history ID
  --output string    text, compact or json

Examples:
  hubsearch server
  hubsearch load --dir ./content
  hubsearch search mcp servers
  hubsearch search --type github --sort rating gemini
  hubsearch search --output json "install"
  hubsearch history list
  hubsearch status --output json`)
}
