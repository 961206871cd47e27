package query

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"gridview/app/cache"
)

// Run executes search, filter and sort over records. It is pure: the input is
// never modified, and an empty state returns records itself.
func Run[R any](records []R, schema *Schema[R], state QueryState) ([]R, error) {
	if err := schema.Validate(state); err != nil {
		return nil, err
	}

	current := records
	for _, stage := range StagesFor(schema, state) {
		next, err := stage.Execute(current)
		if err != nil {
			return nil, fmt.Errorf("stage %s failed: %w", stage.Name(), err)
		}
		current = next
	}
	return current, nil
}

// Snapshot is an immutable record set plus the key memoized results are
// stored under. Two snapshots with the same key must hold the same records.
type Snapshot[R any] struct {
	Key     string
	Records []R
}

var snapshotGeneration atomic.Uint64

// NewSnapshot wraps records under a process-unique generation key.
func NewSnapshot[R any](records []R) Snapshot[R] {
	return Snapshot[R]{
		Key:     "gen-" + strconv.FormatUint(snapshotGeneration.Add(1), 10),
		Records: records,
	}
}

// NewKeyedSnapshot wraps records under a caller-chosen key, e.g. a content
// hash, so that reloading identical data reuses cached results.
func NewKeyedSnapshot[R any](key string, records []R) Snapshot[R] {
	if key == "" {
		return NewSnapshot(records)
	}
	return Snapshot[R]{Key: key, Records: records}
}

// QueryResult is the output of one pipeline execution
type QueryResult[R any] struct {
	Records []R
	Total   int
	Key     string // Full pipeline cache key
	Cached  bool   // Served from the pipeline cache
}

// QueryPipeline runs Run with memoization. Results are stored in a shared
// cache under keys namespaced by the owning table, so several pipelines may
// share one cache.
type QueryPipeline[R any] struct {
	schema      *Schema[R]
	cache       *cache.Cache
	namespace   string
	cacheConfig CacheConfig
	logger      cache.Logger
}

// NewQueryPipeline creates a new query pipeline. A nil cache disables
// memoization entirely.
func NewQueryPipeline[R any](schema *Schema[R], c *cache.Cache, namespace string, config CacheConfig) *QueryPipeline[R] {
	return &QueryPipeline[R]{
		schema:      schema,
		cache:       c,
		namespace:   namespace,
		cacheConfig: config,
	}
}

// SetLogger sets the logger used for cache decisions
func (p *QueryPipeline[R]) SetLogger(logger cache.Logger) {
	p.logger = logger
}

// Schema returns the schema the pipeline validates against
func (p *QueryPipeline[R]) Schema() *Schema[R] {
	return p.schema
}

func (p *QueryPipeline[R]) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Log("debug", fmt.Sprintf(format, args...))
	}
}

// Execute runs the pipeline over snap for state. Memoized results are
// returned as stored; callers must treat result records as read-only.
func (p *QueryPipeline[R]) Execute(snap Snapshot[R], state QueryState) (*QueryResult[R], error) {
	if err := p.schema.Validate(state); err != nil {
		return nil, err
	}

	stages := StagesFor(p.schema, state)
	pipelineKey := BuildCacheKey(p.namespace, snap.Key, stages)

	// Check if we can use cached results (full pipeline cache)
	if p.cache != nil && p.cacheConfig.EnablePipelineCache {
		if entry, found := p.cache.Get(pipelineKey); found {
			if records, ok := entry.Value.([]R); ok {
				p.logf("[CACHE_HIT] Using cached result for key: %s (%d rows)", pipelineKey, len(records))
				return &QueryResult[R]{Records: records, Total: len(records), Key: pipelineKey, Cached: true}, nil
			}
		}
	}

	// Execute stages sequentially with incremental caching. The last stage's
	// output is the pipeline result and is only stored under the pipeline key.
	current := snap.Records
	executed := make([]PipelineStage[R], 0, len(stages))
	useStageCache := p.cache != nil && p.cacheConfig.EnableStageCache

	// A cached prefix lets us skip the stages it covers.
	start := 0
	if useStageCache {
		for i := len(stages) - 2; i >= 0; i-- {
			stageKey := BuildCacheKey(p.namespace, snap.Key, stages[:i+1])
			entry, found := p.cache.Get(stageKey)
			if !found {
				continue
			}
			if records, ok := entry.Value.([]R); ok {
				p.logf("[CACHE_HIT_STAGE] Using cached result for stage %s: %s (%d rows)",
					stages[i].Name(), stageKey, len(records))
				current = records
				executed = append(executed, stages[:i+1]...)
				start = i + 1
				break
			}
		}
	}

	for i := start; i < len(stages); i++ {
		stage := stages[i]
		next, err := stage.Execute(current)
		if err != nil {
			return nil, fmt.Errorf("stage %s failed: %w", stage.Name(), err)
		}
		current = next
		executed = append(executed, stage)

		if useStageCache && stage.CanCache() && i < len(stages)-1 {
			stageKey := BuildCacheKey(p.namespace, snap.Key, executed)
			p.cache.Store(stageKey, current, len(current), cache.KindStage)
		}
	}

	if current == nil {
		current = []R{}
	}

	result := &QueryResult[R]{Records: current, Total: len(current), Key: pipelineKey}

	if p.cache != nil && p.cacheConfig.EnablePipelineCache && p.canCacheResult(stages) {
		p.cache.Store(pipelineKey, current, len(current), cache.KindPipeline)
	}

	return result, nil
}

// canCacheResult determines if the pipeline result should be cached
func (p *QueryPipeline[R]) canCacheResult(stages []PipelineStage[R]) bool {
	// Only cache if all stages support caching
	for _, stage := range stages {
		if !stage.CanCache() {
			return false
		}
	}
	return true
}

// Invalidate drops every cached result computed from the snapshot with key
// snapshotKey.
func (p *QueryPipeline[R]) Invalidate(snapshotKey string) int {
	if p.cache == nil {
		return 0
	}
	return p.cache.InvalidatePrefix(SnapshotCacheKey(p.namespace, snapshotKey))
}
