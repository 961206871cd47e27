package cache

import (
	"strings"
	"sync"
	"testing"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Log(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+message)
}

func (l *recordingLogger) contains(tag string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, tag) {
			return true
		}
	}
	return false
}

func TestCache_GetStore(t *testing.T) {
	c := NewCache(4)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Store("a", []int{1, 2}, 2, KindPipeline)
	entry, ok := c.Get("a")
	if !ok {
		t.Fatal("expected hit after store")
	}
	if got := entry.Value.([]int); len(got) != 2 {
		t.Errorf("unexpected value %v", got)
	}

	stats := c.GetCacheStats()
	if stats.PipelineHits != 1 || stats.Misses != 1 {
		t.Errorf("hits=%d misses=%d, expected 1 and 1", stats.PipelineHits, stats.Misses)
	}
	if stats.TotalRows != 2 {
		t.Errorf("TotalRows = %d, expected 2", stats.TotalRows)
	}
}

func TestCache_LRUEviction(t *testing.T) {
	logger := &recordingLogger{}
	c := NewCacheWithLogger(2, logger)

	c.Store("a", 1, 1, KindPipeline)
	c.Store("b", 2, 1, KindPipeline)
	c.Get("a") // a is now most recently used
	c.Store("c", 3, 1, KindPipeline)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if c.GetCacheStats().TotalEntries != 2 {
		t.Errorf("EntryCount = %d, expected 2", c.GetCacheStats().TotalEntries)
	}
	if keys := c.lru.keys(); len(keys) != 2 || keys[0] != "c" || keys[1] != "a" {
		t.Errorf("LRU order = %v, expected [c a]", keys)
	}
	if !logger.contains("[CACHE_EVICT]") {
		t.Error("eviction was not logged")
	}
	if got := c.GetCacheStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, expected 1", got)
	}
}

func TestCache_StoreReplaces(t *testing.T) {
	c := NewCache(2)
	c.Store("a", 1, 5, KindPipeline)
	c.Store("a", 2, 3, KindPipeline)

	entry, _ := c.Get("a")
	if entry.Value != 2 {
		t.Errorf("Value = %v, expected 2", entry.Value)
	}
	if got := c.GetCacheStats().TotalRows; got != 3 {
		t.Errorf("TotalRows = %d, expected 3", got)
	}
	if c.GetCacheStats().TotalEntries != 1 {
		t.Errorf("EntryCount = %d, expected 1", c.GetCacheStats().TotalEntries)
	}
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c := NewCache(8)
	c.Store("table:t|snapshot:gen-1|search:\"\"", 1, 1, KindStage)
	c.Store("table:t|snapshot:gen-1|search:\"\"|filter:[]|sort:none", 1, 1, KindPipeline)
	c.Store("table:t|snapshot:gen-10|search:\"\"|filter:[]|sort:none", 1, 1, KindPipeline)

	removed := c.InvalidatePrefix("table:t|snapshot:gen-1")
	if removed != 2 {
		t.Errorf("removed = %d, expected 2", removed)
	}
	if c.GetCacheStats().TotalEntries != 1 {
		t.Errorf("EntryCount = %d, expected 1", c.GetCacheStats().TotalEntries)
	}
}

func TestCache_StageStats(t *testing.T) {
	c := NewCache(8)
	c.Store("table:t|snapshot:s|search:\"x\"", 1, 4, KindStage)
	c.Store("table:t|snapshot:s|search:\"x\"|filter:[]", 1, 2, KindStage)
	c.Get("table:t|snapshot:s|search:\"x\"")

	stats := c.GetCacheStats()
	if stats.StageHits != 1 {
		t.Errorf("StageHits = %d, expected 1", stats.StageHits)
	}
	if stats.StageStats["search"].TotalRows != 4 || stats.StageStats["filter"].TotalRows != 2 {
		t.Errorf("unexpected stage stats %+v", stats.StageStats)
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (i+j)%20))
				c.Store(key, j, 1, KindPipeline)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.GetCacheStats().TotalEntries > 16 {
		t.Errorf("EntryCount = %d exceeds bound", c.GetCacheStats().TotalEntries)
	}
}

func TestKeys(t *testing.T) {
	if !IsCacheKeyPrefix("a|b", "a|b|c") || !IsCacheKeyPrefix("a|b", "a|b") {
		t.Error("expected segment-aligned prefix match")
	}
	if IsCacheKeyPrefix("a|b", "a|bc") {
		t.Error("partial segment must not match")
	}
	if got := ExtractStageNameFromKey("table:t|snapshot:s|sort:\"age\":asc"); got != "sort" {
		t.Errorf("ExtractStageNameFromKey = %q, expected sort", got)
	}
	if got := JoinKey("", "a:1"); got != "a:1" {
		t.Errorf("JoinKey = %q", got)
	}
}
