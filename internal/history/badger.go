package history

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"
)

// BadgerStore is a KeyValueStore backed by BadgerDB.
type BadgerStore struct {
	db *badger.DB
	// mu serializes Update within the process; conflicts with plain Set or
	// Delete are retried.
	mu sync.Mutex
}

// maxUpdateRetries bounds retries of an Update that hit a transaction conflict.
const maxUpdateRetries = 10

// zapBadgerLogger adapts a zap logger to badger.Logger.
type zapBadgerLogger struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*zapBadgerLogger)(nil)

func (l *zapBadgerLogger) Errorf(msg string, args ...any)   { l.s.Errorf(msg, args...) }
func (l *zapBadgerLogger) Warningf(msg string, args ...any) { l.s.Warnf(msg, args...) }
func (l *zapBadgerLogger) Infof(msg string, args ...any)    { l.s.Debugf(msg, args...) }
func (l *zapBadgerLogger) Debugf(msg string, args ...any)   { l.s.Debugf(msg, args...) }

// OpenBadgerStore opens (or creates) a Badger database in dir.
// An empty dir opens an in-memory database. logger may be nil.
func OpenBadgerStore(dir string, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &zapBadgerLogger{s: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Get(key string) (string, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

func (b *BadgerStore) Set(key, value string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (b *BadgerStore) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *BadgerStore) Update(key string, fn func(old string, ok bool) (string, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err = b.db.Update(func(txn *badger.Txn) error {
			var (
				old string
				ok  bool
			)
			item, getErr := txn.Get([]byte(key))
			switch {
			case getErr == nil:
				raw, copyErr := item.ValueCopy(nil)
				if copyErr != nil {
					return copyErr
				}
				old, ok = string(raw), true
			case !errors.Is(getErr, badger.ErrKeyNotFound):
				return getErr
			}
			value, fnErr := fn(old, ok)
			if fnErr != nil {
				return fnErr
			}
			return txn.Set([]byte(key), []byte(value))
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// Close closes the database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
