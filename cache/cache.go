// Package cache provides the persistent translation cache.
//
// The whole cache lives in a single JSON record under one key of a
// store.Store, mapping derived cache keys to entries. Entries expire after a
// fixed period and the record is capped at a maximum number of entries,
// evicting the least recently written ones first.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/bearchat"
	"github.com/ZaguanLabs/bearchat/store"
)

const (
	// StorageKey is the well-known store key holding the cache record.
	StorageKey = "bearchat-translations"

	// DefaultExpiration is how long an entry stays valid after being written.
	DefaultExpiration = 24 * time.Hour

	// DefaultMaxItems is the maximum number of entries kept.
	DefaultMaxItems = 100
)

// Entry is a cached translation. Timestamp is the write time in epoch
// milliseconds and is never modified after the write.
type Entry struct {
	Translation string `json:"translation"`
	Timestamp   int64  `json:"timestamp"`
	Model       string `json:"model"`
}

// Cache is the persistent translation cache. It is safe for concurrent use
// within a process; separate Cache values sharing a store are
// last-writer-wins.
type Cache struct {
	store      store.Store
	storageKey string
	expiration time.Duration
	maxItems   int
	now        func() time.Time
	logger     *zap.Logger

	mu sync.Mutex // Serialises read-modify-write of the record
}

// Option configures a Cache.
type Option func(*Cache)

// WithExpiration sets how long entries remain valid.
func WithExpiration(d time.Duration) Option {
	return func(c *Cache) {
		c.expiration = d
	}
}

// WithMaxItems sets the maximum number of entries kept after a write.
func WithMaxItems(n int) Option {
	return func(c *Cache) {
		c.maxItems = n
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger used to report absorbed storage failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithStorageKey overrides the store key holding the record.
func WithStorageKey(key string) Option {
	return func(c *Cache) {
		c.storageKey = key
	}
}

// New creates a cache persisted in s.
func New(s store.Store, opts ...Option) *Cache {
	c := &Cache{
		store:      s,
		storageKey: StorageKey,
		expiration: DefaultExpiration,
		maxItems:   DefaultMaxItems,
		now:        time.Now,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxItems <= 0 {
		c.maxItems = DefaultMaxItems
	}
	if c.expiration <= 0 {
		c.expiration = DefaultExpiration
	}

	return c
}

// Get returns the cached translation, or false if there is no entry, the
// entry was produced by a different model, or it has expired.
func (c *Cache) Get(ctx context.Context, text string, from, to bearchat.Language, model string) (string, bool) {
	record := c.load(ctx)

	entry, ok := record[bearchat.CacheKey(text, from, to)]
	if !ok {
		return "", false
	}

	if entry.Model != model || c.isExpired(entry) {
		return "", false
	}

	return entry.Translation, true
}

// Set stores a translation, replacing any entry with the same key, then
// drops expired entries and evicts the oldest ones beyond the capacity.
// Persistence failures are absorbed: the cache is best-effort.
func (c *Cache) Set(ctx context.Context, text string, from, to bearchat.Language, translation, model string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record := c.load(ctx)
	record[bearchat.CacheKey(text, from, to)] = Entry{
		Translation: translation,
		Timestamp:   c.now().UnixMilli(),
		Model:       model,
	}

	c.save(ctx, c.cleanup(record))
}

// Merge writes entries verbatim, timestamps included, then applies the
// usual cleanup. Used by cache import.
func (c *Cache) Merge(ctx context.Context, entries map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	record := c.load(ctx)
	for key, entry := range entries {
		record[strings.ToLower(key)] = entry
	}

	c.save(ctx, c.cleanup(record))
}

// Clear removes all entries.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, c.storageKey); err != nil {
		c.logger.Warn("clearing translation cache failed",
			zap.Error(&bearchat.StorageError{Op: "delete", Key: c.storageKey, Cause: err}))
	}
}

// Len returns the number of persisted entries, expired ones included.
func (c *Cache) Len(ctx context.Context) int {
	return len(c.load(ctx))
}

// Entries returns a copy of all non-expired entries keyed by cache key.
func (c *Cache) Entries(ctx context.Context) map[string]Entry {
	record := c.load(ctx)
	result := make(map[string]Entry, len(record))

	for key, entry := range record {
		if c.isExpired(entry) {
			continue
		}
		result[key] = entry
	}

	return result
}

// MaxItems returns the configured capacity.
func (c *Cache) MaxItems() int {
	return c.maxItems
}

func (c *Cache) isExpired(e Entry) bool {
	age := c.now().Sub(time.UnixMilli(e.Timestamp))
	return age > c.expiration
}

// load reads the record. A missing, unreadable or corrupt record is an
// empty cache.
func (c *Cache) load(ctx context.Context) map[string]Entry {
	record := make(map[string]Entry)

	data, err := c.store.Get(ctx, c.storageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("reading translation cache failed",
				zap.Error(&bearchat.StorageError{Op: "read", Key: c.storageKey, Cause: err}))
		}
		return record
	}

	if err := json.Unmarshal(data, &record); err != nil {
		c.logger.Warn("discarding corrupt translation cache", zap.Error(err))
		return make(map[string]Entry)
	}

	return record
}

// save persists record. On failure it compacts the record to half the
// capacity and retries once; a second failure drops the write.
func (c *Cache) save(ctx context.Context, record map[string]Entry) {
	err := c.write(ctx, record)
	if err == nil {
		return
	}

	c.logger.Warn("writing translation cache failed, compacting",
		zap.Error(err),
		zap.Int("entries", len(record)),
		zap.Int("keep", c.maxItems/2))

	if err := c.write(ctx, newest(record, c.maxItems/2)); err != nil {
		c.logger.Warn("dropping translation cache write", zap.Error(err))
	}
}

func (c *Cache) write(ctx context.Context, record map[string]Entry) error {
	data, err := json.Marshal(record)
	if err != nil {
		return &bearchat.StorageError{Op: "write", Key: c.storageKey, Cause: err}
	}
	if err := c.store.Set(ctx, c.storageKey, data); err != nil {
		return &bearchat.StorageError{Op: "write", Key: c.storageKey, Cause: err}
	}
	return nil
}

// cleanup drops expired entries, then keeps the maxItems most recently
// written ones.
func (c *Cache) cleanup(record map[string]Entry) map[string]Entry {
	valid := make(map[string]Entry, len(record))
	for key, entry := range record {
		if !c.isExpired(entry) {
			valid[key] = entry
		}
	}
	return newest(valid, c.maxItems)
}

// newest returns the n entries with the latest timestamps. Ties are broken
// by key so the result is deterministic.
func newest(record map[string]Entry, n int) map[string]Entry {
	if len(record) <= n {
		return record
	}

	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ta, tb := record[a].Timestamp, record[b].Timestamp
		switch {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})

	kept := make(map[string]Entry, max(n, 0))
	for _, key := range keys[:max(n, 0)] {
		kept[key] = record[key]
	}
	return kept
}

// Verify Cache implements bearchat.TranslationCache
var _ bearchat.TranslationCache = (*Cache)(nil)
