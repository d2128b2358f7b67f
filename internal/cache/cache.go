// Package cache keeps submitted assessment answer maps in a local BadgerDB
// so reports do not refetch them from the object store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/answerkey"
)

// KeySuffix is appended to the assessment id to form the cache key.
const KeySuffix = "_assessmentData"

// Config configures the cache database.
type Config struct {
	Dir      string `mapstructure:"dir"`
	InMemory bool   `mapstructure:"in_memory"`
}

// Loader fetches an assessment's answer map from the object store.
type Loader func(ctx context.Context, assessmentID string) (*answerkey.StorageData, error)

// Cache is a read-through cache of answer maps. Entries never expire; call
// Invalidate when the stored data changes.
type Cache struct {
	db     *badger.DB
	load   Loader
	logger *zap.Logger
}

type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.logger.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Debugf(format, args...) }

// Open opens the cache database described by cfg.
func Open(cfg Config, load Loader, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("cache dir is required for a persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Cache{db: db, load: load, logger: logger}, nil
}

// OpenInMemory opens a cache that lives only for the process.
func OpenInMemory(load Loader, logger *zap.Logger) (*Cache, error) {
	return Open(Config{InMemory: true}, load, logger)
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(assessmentID string) []byte {
	return []byte(assessmentID + KeySuffix)
}

// FetchAssessmentData returns the answer map for assessmentID, loading and
// storing it on a miss.
func (c *Cache) FetchAssessmentData(ctx context.Context, assessmentID string) (*answerkey.StorageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cacheKey(assessmentID)

	var cached []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		cached, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case err == nil:
		data := answerkey.NewStorageData()
		if err := json.Unmarshal(cached, data); err == nil {
			c.logger.Debug("assessment data cache hit", zap.String("assessment_id", assessmentID))
			return data, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("assessment_id", assessmentID))
	case !errors.Is(err, badger.ErrKeyNotFound):
		return nil, fmt.Errorf("read cache: %w", err)
	}

	data, err := c.load(ctx, assessmentID)
	if err != nil || data == nil {
		return data, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode assessment data: %w", err)
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, raw)
	}); err != nil {
		c.logger.Warn("failed to cache assessment data", zap.String("assessment_id", assessmentID), zap.Error(err))
	}
	c.logger.Debug("assessment data cache miss", zap.String("assessment_id", assessmentID))
	return data, nil
}

// Invalidate drops the cached entry for assessmentID.
func (c *Cache) Invalidate(assessmentID string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cacheKey(assessmentID))
	})
}
