package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Cache provides LRU caching for pipeline results
type Cache struct {
	storage    map[string]*Entry
	maxEntries int
	totalRows  int
	lru        *lruList
	mutex      sync.RWMutex
	logger     Logger

	// Performance counters
	pipelineHits int64
	stageHits    int64
	misses       int64
	evictions    int64
}

// NewCache creates a new cache holding at most maxEntries results
func NewCache(maxEntries int) *Cache {
	return NewCacheWithLogger(maxEntries, nil)
}

// NewCacheWithLogger creates a new cache with a logger
func NewCacheWithLogger(maxEntries int, logger Logger) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Cache{
		storage:    make(map[string]*Entry),
		maxEntries: maxEntries,
		lru:        newLRUList(),
		logger:     logger,
	}
}

// SetLogger sets the logger for the cache
func (c *Cache) SetLogger(logger Logger) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.logger = logger
}

func (c *Cache) logf(level, format string, args ...any) {
	if c.logger != nil {
		c.logger.Log(level, fmt.Sprintf(format, args...))
	}
}

// Get retrieves a cache entry and marks it as recently used
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.storage[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		c.logf("debug", "[CACHE_MISS] Key: %s", key)
		return nil, false
	}

	if entry.Kind == KindStage {
		atomic.AddInt64(&c.stageHits, 1)
		c.logf("debug", "[CACHE_HIT_STAGE] Key: %s, Rows: %d", key, entry.Rows)
	} else {
		atomic.AddInt64(&c.pipelineHits, 1)
		c.logf("debug", "[CACHE_HIT_PIPELINE] Key: %s, Rows: %d", key, entry.Rows)
	}

	entry.AccessTime = time.Now().Unix()
	c.lru.touch(key)

	return entry, true
}

// Store adds or replaces an entry, evicting least recently used entries to
// stay within the entry bound.
func (c *Cache) Store(key string, value any, rows int, kind EntryKind) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, exists := c.storage[key]; exists {
		c.totalRows -= existing.Rows
		delete(c.storage, key)
		c.lru.remove(key)
	}

	for len(c.storage) >= c.maxEntries {
		if !c.evictOldest() {
			break
		}
	}

	now := time.Now()
	c.storage[key] = &Entry{
		Value:      value,
		Rows:       rows,
		Kind:       kind,
		AccessTime: now.Unix(),
		CreateTime: now,
	}
	c.totalRows += rows
	c.lru.addToFront(key)

	c.logf("debug", "[CACHE_STORE_%s] Key: %s, Rows: %d, Entries: %d/%d",
		upperKind(kind), key, rows, len(c.storage), c.maxEntries)
}

func upperKind(kind EntryKind) string {
	if kind == KindStage {
		return "STAGE"
	}
	return "PIPELINE"
}

// evictOldest drops the least recently used entry. Caller holds the lock.
func (c *Cache) evictOldest() bool {
	oldestKey, ok := c.lru.removeOldest()
	if !ok {
		return false
	}
	if entry, exists := c.storage[oldestKey]; exists {
		delete(c.storage, oldestKey)
		c.totalRows -= entry.Rows
		atomic.AddInt64(&c.evictions, 1)
		c.logf("debug", "[CACHE_EVICT] Evicted entry: %s, Rows: %d", oldestKey, entry.Rows)
	}
	return true
}

// InvalidatePrefix removes every entry whose key starts with the
// segment-aligned prefix, e.g. all results computed from one snapshot.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var keysToRemove []string
	for key := range c.storage {
		if IsCacheKeyPrefix(prefix, key) {
			keysToRemove = append(keysToRemove, key)
		}
	}

	for _, key := range keysToRemove {
		if entry, exists := c.storage[key]; exists {
			delete(c.storage, key)
			c.totalRows -= entry.Rows
			c.lru.remove(key)
		}
	}

	if len(keysToRemove) > 0 {
		c.logf("debug", "[CACHE_INVALIDATE] Prefix: %s, Removed: %d", prefix, len(keysToRemove))
	}
	return len(keysToRemove)
}

// GetCacheStats returns detailed cache statistics
func (c *Cache) GetCacheStats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := Stats{
		TotalEntries: len(c.storage),
		TotalRows:    c.totalRows,
		MaxEntries:   c.maxEntries,
		UsagePercent: float64(len(c.storage)) / float64(c.maxEntries) * 100,
		StageStats:   make(map[string]StageStats),
		PipelineHits: atomic.LoadInt64(&c.pipelineHits),
		StageHits:    atomic.LoadInt64(&c.stageHits),
		Misses:       atomic.LoadInt64(&c.misses),
		Evictions:    atomic.LoadInt64(&c.evictions),
	}

	total := stats.PipelineHits + stats.StageHits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.PipelineHits+stats.StageHits) / float64(total)
		stats.StageHitRate = float64(stats.StageHits) / float64(total)
	}

	for key, entry := range c.storage {
		stageName := ExtractStageNameFromKey(key)
		if stageName != "" {
			stageStats := stats.StageStats[stageName]
			stageStats.EntryCount++
			stageStats.TotalRows += entry.Rows
			stats.StageStats[stageName] = stageStats
		}
	}

	return stats
}
