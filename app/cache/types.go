package cache

import "time"

// Logger interface for cache logging
type Logger interface {
	Log(level, message string)
}

// EntryKind tells pipeline results apart from intermediate stage results.
type EntryKind int

const (
	KindPipeline EntryKind = iota
	KindStage
)

// String returns the string representation of EntryKind
func (k EntryKind) String() string {
	if k == KindStage {
		return "stage"
	}
	return "pipeline"
}

// Entry is one memoized result
type Entry struct {
	Value      any
	Rows       int // Number of records held by Value, for stats only
	Kind       EntryKind
	AccessTime int64
	CreateTime time.Time
}

// Stats contains detailed cache statistics
type Stats struct {
	TotalEntries int
	TotalRows    int
	MaxEntries   int
	UsagePercent float64
	StageStats   map[string]StageStats

	PipelineHits int64   // Full pipeline cache hits
	StageHits    int64   // Individual stage cache hits
	Misses       int64   // Total cache misses
	Evictions    int64   // Entries dropped by LRU
	HitRate      float64 // Overall hit rate
	StageHitRate float64 // Stage-level hit rate
}

// StageStats contains statistics for a specific stage type
type StageStats struct {
	EntryCount int
	TotalRows  int
}

// DefaultMaxEntries is used when a cache is created with a non-positive bound
const DefaultMaxEntries = 8
