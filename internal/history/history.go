package history

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

const (
	// StorageKey is the key the query list is stored under.
	StorageKey = "gemini-cli-search-history"
	// MaxEntries is the number of queries kept.
	MaxEntries = 10
)

// History is a most-recent-first list of search queries.
// Every operation is best-effort: store errors are logged, never returned.
// A History with a nil store is valid and does nothing.
type History struct {
	store  KeyValueStore
	key    string
	logger *zap.Logger
}

// Option configures a History.
type Option func(*History)

// WithLogger sets the logger used for store failures.
func WithLogger(l *zap.Logger) Option {
	return func(h *History) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithNamespace keeps a separate list under StorageKey + ":" + ns.
// An empty ns keeps the shared list.
func WithNamespace(ns string) Option {
	return func(h *History) {
		if ns != "" {
			h.key = StorageKey + ":" + ns
		}
	}
}

// New returns a History over store.
func New(store KeyValueStore, opts ...Option) *History {
	h := &History{
		store:  store,
		key:    StorageKey,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Get returns the stored queries, most recent first.
// Returns an empty list when nothing is stored or the stored value is unreadable.
func (h *History) Get() []string {
	if h == nil || h.store == nil {
		return []string{}
	}
	raw, ok, err := h.store.Get(h.key)
	if err != nil {
		h.logger.Warn("failed to read search history", zap.String("key", h.key), zap.Error(err))
		return []string{}
	}
	return h.decode(raw, ok)
}

// decode parses a stored list. Missing or unreadable values decode as empty.
func (h *History) decode(raw string, ok bool) []string {
	if !ok || raw == "" {
		return []string{}
	}
	var queries []string
	if err := json.Unmarshal([]byte(raw), &queries); err != nil {
		h.logger.Warn("failed to parse search history", zap.String("key", h.key), zap.Error(err))
		return []string{}
	}
	if queries == nil {
		return []string{}
	}
	return queries
}

// Save moves query to the front of the list, removing any earlier occurrence,
// and keeps the MaxEntries most recent queries. Blank queries are ignored.
// The read and write happen in one store Update, so concurrent saves all land.
func (h *History) Save(query string) {
	if h == nil || h.store == nil {
		return
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	err := h.store.Update(h.key, func(old string, ok bool) (string, error) {
		queries := make([]string, 0, MaxEntries)
		queries = append(queries, query)
		for _, q := range h.decode(old, ok) {
			if q != query {
				queries = append(queries, q)
			}
		}
		if len(queries) > MaxEntries {
			queries = queries[:MaxEntries]
		}
		data, err := json.Marshal(queries)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		h.logger.Warn("failed to save search history", zap.String("key", h.key), zap.Error(err))
	}
}

// Clear removes the stored list.
func (h *History) Clear() {
	if h == nil || h.store == nil {
		return
	}
	if err := h.store.Delete(h.key); err != nil {
		h.logger.Warn("failed to clear search history", zap.String("key", h.key), zap.Error(err))
	}
}
